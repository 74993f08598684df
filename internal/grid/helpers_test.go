package grid

import (
	"fmt"
	"sort"
	"testing"
	"time"
)

// fakeSource is an in-memory data source. editable maps column IDs to edit
// types; reject makes CommitControl refuse the value.
type fakeSource struct {
	rows     int64
	editable map[int]EditType
	values   map[[2]int64]string
	reject   bool
	commits  int
	fills    int
}

func newFakeSource(rows int64) *fakeSource {
	return &fakeSource{rows: rows, editable: map[int]EditType{}, values: map[[2]int64]string{}}
}

func (s *fakeSource) RowCount() int64 { return s.rows }

func (s *fakeSource) IsCellEditable(row int64, colID int) EditType { return s.editable[colID] }

func (s *fakeSource) FillControl(row int64, colID int, c Control) {
	s.fills++
	c.SetData(s.CellDisplayValue(row, colID))
}

func (s *fakeSource) CommitControl(row int64, colID int, c Control) bool {
	s.commits++
	if s.reject {
		return false
	}
	s.values[[2]int64{row, int64(colID)}] = c.Data()
	return true
}

func (s *fakeSource) CellDisplayValue(row int64, colID int) string {
	if v, ok := s.values[[2]int64{row, int64(colID)}]; ok {
		return v
	}
	return fmt.Sprintf("r%dc%d", row, colID)
}

// fakeControl records what the grid asks of it.
type fakeControl struct {
	data      string
	changed   func()
	bounds    Rect
	visible   bool
	focused   bool
	wantClick bool
	clicks    []Point
	hides     int
}

func (c *fakeControl) ClearData()                      { c.data = "" }
func (c *fakeControl) SetData(s string)                { c.data = s }
func (c *fakeControl) Data() string                    { return c.data }
func (c *fakeControl) SetContentsChangedFunc(f func()) { c.changed = f }
func (c *fakeControl) WantsInitialClick() bool         { return c.wantClick }
func (c *fakeControl) SetBounds(r Rect)                { c.bounds = r }
func (c *fakeControl) Show(focus bool)                 { c.visible, c.focused = true, focus }
func (c *fakeControl) Hide()                           { c.visible, c.focused = false, false; c.hides++ }
func (c *fakeControl) HandleInitialClick(p Point)      { c.clicks = append(c.clicks, p) }

// type types the text and fires the change notification.
func (c *fakeControl) typeText(s string) {
	c.data = s
	if c.changed != nil {
		c.changed()
	}
}

// fakeScheduler fires timers only when the test advances its clock.
type fakeScheduler struct {
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{at: s.now + d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// advance moves the clock and fires due timers in order, including timers
// scheduled by the callbacks themselves.
func (s *fakeScheduler) advance(d time.Duration) {
	end := s.now + d
	for {
		sort.SliceStable(s.timers, func(i, j int) bool { return s.timers[i].at < s.timers[j].at })
		var next *fakeTimer
		for _, t := range s.timers {
			if !t.stopped && !t.fired && t.at <= end {
				next = t
				break
			}
		}
		if next == nil {
			break
		}
		s.now = next.at
		next.fired = true
		next.f()
	}
	s.now = end
}

func (s *fakeScheduler) pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// testColumns builds n resizable text columns of the given width with IDs
// equal to their starting positions.
func testColumns(n int, width int32) []Column {
	cols := make([]Column, n)
	for i := range cols {
		cols[i] = Column{ID: i, Title: fmt.Sprintf("C%d", i), Width: width, Resizable: true}
	}
	return cols
}

// testOptions uses small round numbers: rows are 10px with a 1px line,
// the header is 10px, and there is no cell padding.
func testOptions() Options {
	o := DefaultOptions()
	o.CellHeight = 10
	o.HeaderHeight = 10
	o.ColumnLineWidth = 1
	o.RowLineWidth = 1
	o.CellPadding = 0
	o.DragThreshold = 3
	o.ResizeTolerance = 1
	o.HeaderButtonWidth = 5
	o.AverageCharWidth = 4
	o.Measurer = CellWidthMeasurer{CharWidth: 4}
	return o
}

type testGrid struct {
	*Grid
	src   *fakeSource
	sched *fakeScheduler
	sel   [][]CellBlock
	errs  []error
}

// newTestGrid lays out a grid at (0, 0) with the given size.
func newTestGrid(t *testing.T, rows int64, cols []Column, opts Options, w, h int32) *testGrid {
	t.Helper()
	tg := &testGrid{src: newFakeSource(rows), sched: &fakeScheduler{}}
	opts.Scheduler = tg.sched
	g, err := New(tg.src, cols, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g.SetRect(Rect{W: w, H: h})
	g.SetSelectionChangedFunc(func(b []CellBlock) { tg.sel = append(tg.sel, b) })
	g.SetErrorFunc(func(err error) { tg.errs = append(tg.errs, err) })
	tg.Grid = g
	return tg
}

// center returns the middle of a cell's on-screen rectangle.
func (tg *testGrid) center(t *testing.T, row int64, col int32) Point {
	t.Helper()
	r := tg.CellRect(row, col)
	if r.Empty() {
		t.Fatalf("cell (%d, %d) is not on screen", row, col)
	}
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

func (tg *testGrid) click(p Point, mods Modifiers) {
	ev := PointerEvent{X: p.X, Y: p.Y, Button: ButtonLeft, Mods: mods}
	tg.PointerDown(ev)
	tg.PointerUp(ev)
}

func down(p Point, mods Modifiers) PointerEvent {
	return PointerEvent{X: p.X, Y: p.Y, Button: ButtonLeft, Mods: mods}
}

func at(x, y int32) PointerEvent {
	return PointerEvent{X: x, Y: y, Button: ButtonLeft}
}
