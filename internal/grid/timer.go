package grid

import "time"

// Timer is a pending deferred call.
type Timer interface {
	// Stop cancels the call and reports whether it was still pending.
	Stop() bool
}

// Scheduler runs f after d on the grid's event thread. Hyperlink
// disambiguation and auto-scroll repeat are built on it.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// NewScheduler returns a Scheduler backed by time.AfterFunc. post marshals
// the callback back onto the event thread; nil runs it on the timer
// goroutine, which only suits hosts that serialize access themselves.
func NewScheduler(post func(func())) Scheduler {
	return realScheduler{post: post}
}

type realScheduler struct {
	post func(func())
}

func (s realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	if s.post == nil {
		return time.AfterFunc(d, f)
	}
	return time.AfterFunc(d, func() { s.post(f) })
}

// deferred wraps a Timer so the callback becomes a no-op once stopped, even
// if the host already queued it.
type deferred struct {
	t       Timer
	stopped bool
}

func (g *Grid) schedule(d time.Duration, f func()) *deferred {
	dt := &deferred{}
	dt.t = g.sched.AfterFunc(d, func() {
		if dt.stopped {
			return
		}
		dt.stopped = true
		f()
	})
	return dt
}

func (dt *deferred) stop() {
	if dt == nil || dt.stopped {
		return
	}
	dt.stopped = true
	dt.t.Stop()
}

func (dt *deferred) pending() bool { return dt != nil && !dt.stopped }
