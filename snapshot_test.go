package main

import (
	"context"
	"strings"
	"testing"

	"vgrid/internal/grid"
)

func TestSnapshotRelation(t *testing.T) {
	_, rel, _ := newTasksSource(t)
	settings := &Settings{}
	opts, err := settings.gridOptions()
	if err != nil {
		t.Fatal(err)
	}

	out, err := snapshotRelation(context.Background(), rel, opts, settings.columnWidth(), 80, 6)
	if err != nil {
		t.Fatalf("snapshotRelation: %v", err)
	}
	for _, want := range []string{"title", "done", "task 1", "task 5", "[x]", "[ ]"} {
		if !strings.Contains(out, want) {
			t.Errorf("snapshot lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "task 7") {
		t.Errorf("snapshot shows rows below the page:\n%s", out)
	}
}

func TestGridSnapshotRows(t *testing.T) {
	_, rel, source := newTasksSource(t)
	s := &gridSnapshot{source: source}
	opts, _ := (&Settings{}).gridOptions()
	g, err := grid.New(source, buildColumns(rel, 12, source.RowCount()), opts)
	if err != nil {
		t.Fatal(err)
	}
	g.SetRect(grid.Rect{W: 60, H: 4})
	g.Paint(s)

	if len(s.rows) != 3 {
		t.Fatalf("collected %d rows, want 3", len(s.rows))
	}
	if s.rows[0][0].text != "1" || s.rows[2][0].text != "3" {
		t.Errorf("line numbers = %q, %q", s.rows[0][0].text, s.rows[2][0].text)
	}
	if s.headers[0] != "#" {
		t.Errorf("first header = %q", s.headers[0])
	}
}
