package main

import (
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
)

// BreadcrumbType is the category of a recorded user event.
type BreadcrumbType string

const (
	BreadcrumbKeyboard  BreadcrumbType = "keyboard"
	BreadcrumbGesture   BreadcrumbType = "gesture"
	BreadcrumbSelection BreadcrumbType = "selection"
	BreadcrumbDatabase  BreadcrumbType = "database"
)

// BreadcrumbEntry is a single recorded event.
type BreadcrumbEntry struct {
	Type      BreadcrumbType
	Message   string
	Data      map[string]any
	Timestamp time.Time
	Level     sentry.Level
}

// BreadcrumbBuffer is a thread-safe ring buffer of breadcrumbs. Repeats of
// the same event are folded into one entry with a count.
type BreadcrumbBuffer struct {
	mu      sync.Mutex
	entries []BreadcrumbEntry
	next    int
	count   int
	now     func() time.Time
}

func NewBreadcrumbBuffer(maxSize int) *BreadcrumbBuffer {
	return &BreadcrumbBuffer{
		entries: make([]BreadcrumbEntry, max(maxSize, 1)),
		now:     time.Now,
	}
}

func (b *BreadcrumbBuffer) add(typ BreadcrumbType, level sentry.Level, message string, data map[string]any) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	entry := BreadcrumbEntry{Type: typ, Message: message, Data: data, Timestamp: b.now(), Level: level}
	if b.count > 0 {
		last := &b.entries[(b.next-1+len(b.entries))%len(b.entries)]
		if last.Type == entry.Type && last.Message == entry.Message &&
			entry.Timestamp.Sub(last.Timestamp) <= time.Second {
			n, _ := last.Data["count"].(int)
			last.Data = maps.Clone(last.Data)
			if last.Data == nil {
				last.Data = map[string]any{}
			}
			last.Data["count"] = max(n, 1) + 1
			last.Timestamp = entry.Timestamp
			return
		}
	}
	b.entries[b.next] = entry
	b.next = (b.next + 1) % len(b.entries)
	if b.count < len(b.entries) {
		b.count++
	}
}

// RecordKey records a key press.
func (b *BreadcrumbBuffer) RecordKey(name string) {
	b.add(BreadcrumbKeyboard, sentry.LevelDebug, "Key: "+name, map[string]any{"key": name})
}

// RecordGesture records the pointer gesture a press started.
func (b *BreadcrumbBuffer) RecordGesture(area string, row int64, col int32) {
	b.add(BreadcrumbGesture, sentry.LevelDebug, "Press: "+area,
		map[string]any{"area": area, "row": row, "col": col})
}

// RecordSelection records the block count after a selection change.
func (b *BreadcrumbBuffer) RecordSelection(blocks int) {
	b.add(BreadcrumbSelection, sentry.LevelDebug, fmt.Sprintf("Selection: %d blocks", blocks),
		map[string]any{"blocks": blocks})
}

// RecordDatabase records a database operation.
func (b *BreadcrumbBuffer) RecordDatabase(operation string) {
	b.add(BreadcrumbDatabase, sentry.LevelInfo, "DB: "+operation, map[string]any{"operation": operation})
}

// Entries returns the buffered entries, oldest first.
func (b *BreadcrumbBuffer) Entries() []BreadcrumbEntry {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]BreadcrumbEntry, 0, b.count)
	start := (b.next - b.count + len(b.entries)) % len(b.entries)
	for i := range b.count {
		out = append(out, b.entries[(start+i)%len(b.entries)])
	}
	return out
}

// Flush moves the buffered entries onto the Sentry scope and empties the
// buffer.
func (b *BreadcrumbBuffer) Flush() {
	entries := b.Entries()
	if len(entries) == 0 {
		return
	}
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		for _, e := range entries {
			message := e.Message
			if n, ok := e.Data["count"].(int); ok {
				message = fmt.Sprintf("%s (x%d)", e.Message, n)
			}
			scope.AddBreadcrumb(&sentry.Breadcrumb{
				Message:   message,
				Category:  string(e.Type),
				Data:      e.Data,
				Timestamp: e.Timestamp,
				Level:     e.Level,
			}, 100)
		}
	})

	b.mu.Lock()
	b.next, b.count = 0, 0
	b.mu.Unlock()
}

// breadcrumbs is the process-wide buffer. Recording on the nil buffer is a
// no-op, so telemetry can stay off.
var breadcrumbs *BreadcrumbBuffer

func InitBreadcrumbs(maxSize int) {
	breadcrumbs = NewBreadcrumbBuffer(maxSize)
}
