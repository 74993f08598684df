package main

import (
	"testing"
	"time"
)

func fixedClock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := times[min(i, len(times)-1)]
		i++
		return t
	}
}

func TestBreadcrumbFolding(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	b := NewBreadcrumbBuffer(10)
	b.now = fixedClock(base, base.Add(200*time.Millisecond), base.Add(400*time.Millisecond), base.Add(5*time.Second))

	b.RecordKey("Down")
	b.RecordKey("Down")
	b.RecordKey("Down")
	b.RecordKey("Down")

	entries := b.Entries()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if n, _ := entries[0].Data["count"].(int); n != 3 {
		t.Errorf("folded count = %d, want 3", n)
	}
	if _, ok := entries[1].Data["count"]; ok {
		t.Error("a press after the window was folded")
	}
}

func TestBreadcrumbRingWraps(t *testing.T) {
	b := NewBreadcrumbBuffer(3)
	for _, op := range []string{"a", "b", "c", "d", "e"} {
		b.RecordDatabase(op)
	}
	entries := b.Entries()
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i, want := range []string{"DB: c", "DB: d", "DB: e"} {
		if entries[i].Message != want {
			t.Errorf("entry %d = %q, want %q", i, entries[i].Message, want)
		}
	}
}

func TestBreadcrumbNilBuffer(t *testing.T) {
	var b *BreadcrumbBuffer
	b.RecordKey("x")
	b.RecordGesture("cell", 1, 2)
	b.RecordSelection(3)
	if b.Entries() != nil {
		t.Error("nil buffer returned entries")
	}
}
