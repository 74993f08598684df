package main

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"vgrid/internal/grid"
)

// newTasksView lays the tasks table out in a view drawn on a simulation
// screen of the given size.
func newTasksView(t *testing.T, settings *Settings, width, height int) (*GridView, tcell.SimulationScreen) {
	t.Helper()
	_, rel, source := newTasksSource(t)
	opts, err := settings.gridOptions()
	if err != nil {
		t.Fatalf("gridOptions: %v", err)
	}
	g, err := grid.New(source, buildColumns(rel, settings.columnWidth(), source.RowCount()), opts)
	if err != nil {
		t.Fatalf("grid.New: %v", err)
	}
	gv := NewGridView(g, source)
	if err := gv.RegisterDefaultEditors(); err != nil {
		t.Fatalf("RegisterDefaultEditors: %v", err)
	}

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen.Init: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(width, height)
	gv.SetRect(0, 0, width, height)
	gv.Draw(screen)
	return gv, screen
}

func screenLine(screen tcell.Screen, y int) string {
	width, _ := screen.Size()
	var sb strings.Builder
	for x := 0; x < width; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		sb.WriteRune(r)
	}
	return sb.String()
}

func noFocus(tview.Primitive) {}

func mouse(gv *GridView, action tview.MouseAction, x, y int, buttons tcell.ButtonMask, mods tcell.ModMask) {
	gv.MouseHandler()(action, tcell.NewEventMouse(x, y, buttons, mods), noFocus)
}

func key(gv *GridView, k tcell.Key, r rune, mods tcell.ModMask) {
	gv.InputHandler()(tcell.NewEventKey(k, r, mods), noFocus)
}

func TestGridViewDraw(t *testing.T) {
	gv, screen := newTasksView(t, &Settings{}, 80, 10)

	header := screenLine(screen, 0)
	for _, title := range []string{"#", "id", "title", "done"} {
		if !strings.Contains(header, title) {
			t.Errorf("header %q lacks %q", header, title)
		}
	}
	if !strings.ContainsRune(header, '↕') {
		t.Errorf("header %q lacks a sort button", header)
	}

	first := screenLine(screen, 1)
	if !strings.Contains(first, "task 1") || !strings.Contains(first, "[x]") {
		t.Errorf("first row = %q", first)
	}
	second := screenLine(screen, 2)
	if !strings.Contains(second, "task 2") || !strings.Contains(second, "[ ]") {
		t.Errorf("second row = %q", second)
	}

	// Scrolling redraws from a later row.
	gv.grid.ScrollRows(10)
	gv.Draw(screen)
	if line := screenLine(screen, 1); !strings.Contains(line, "task 11") {
		t.Errorf("after scroll first row = %q", line)
	}
}

func TestGridViewClickEditCommit(t *testing.T) {
	gv, _ := newTasksView(t, &Settings{}, 80, 10)
	db := gv.source.(*relationSource).rel.DB

	rect := gv.grid.CellRect(2, 2)
	x, y := int(rect.X)+2, int(rect.Y)
	mouse(gv, tview.MouseLeftDown, x, y, tcell.Button1, tcell.ModNone)
	mouse(gv, tview.MouseLeftUp, x, y, tcell.ButtonNone, tcell.ModNone)

	if !gv.grid.Editing() {
		t.Fatal("click on an editable cell did not start an edit")
	}
	ed, ok := gv.activeEditor().(*textControl)
	if !ok {
		t.Fatalf("active editor = %T", gv.activeEditor())
	}
	if got := ed.field.GetText(); got != "task 3" {
		t.Errorf("editor text = %q", got)
	}

	ed.field.SetText("renamed")
	key(gv, tcell.KeyEnter, 0, tcell.ModNone)

	var title string
	if err := db.QueryRow("SELECT title FROM tasks WHERE id = 3").Scan(&title); err != nil {
		t.Fatal(err)
	}
	if title != "renamed" {
		t.Errorf("database title = %q after commit", title)
	}
}

func TestGridViewEscapeCancelsEdit(t *testing.T) {
	gv, _ := newTasksView(t, &Settings{}, 80, 10)
	source := gv.source.(*relationSource)

	rect := gv.grid.CellRect(0, 2)
	mouse(gv, tview.MouseLeftDown, int(rect.X)+1, int(rect.Y), tcell.Button1, tcell.ModNone)
	mouse(gv, tview.MouseLeftUp, int(rect.X)+1, int(rect.Y), tcell.ButtonNone, tcell.ModNone)
	ed, ok := gv.activeEditor().(*textControl)
	if !ok {
		t.Fatalf("active editor = %T", gv.activeEditor())
	}
	ed.field.SetText("discarded")
	key(gv, tcell.KeyEscape, 0, tcell.ModNone)

	if gv.grid.Editing() {
		t.Error("Escape left the edit open")
	}
	if got := source.CellDisplayValue(0, 2); got != "task 1" {
		t.Errorf("value after cancel = %q", got)
	}
}

func TestGridViewCtrlClickSelects(t *testing.T) {
	gv, _ := newTasksView(t, &Settings{SelectionMode: "cell-blocks"}, 80, 10)

	for _, row := range []int64{1, 4} {
		rect := gv.grid.CellRect(row, 2)
		mouse(gv, tview.MouseLeftDown, int(rect.X)+1, int(rect.Y), tcell.Button1, tcell.ModCtrl)
		mouse(gv, tview.MouseLeftUp, int(rect.X)+1, int(rect.Y), tcell.ButtonNone, tcell.ModCtrl)
	}

	if gv.grid.Editing() {
		t.Error("Ctrl+click started an edit")
	}
	sel := gv.grid.Selection()
	if sel.Len() != 2 {
		t.Fatalf("selection has %d blocks, want 2", sel.Len())
	}
	for _, row := range []int64{1, 4} {
		if !sel.IsCellSelected(row, 2) {
			t.Errorf("row %d not selected", row)
		}
	}
	if sel.IsCellSelected(2, 2) {
		t.Error("row 2 selected")
	}
}

func TestGridViewKeyboardNavigation(t *testing.T) {
	off := false
	gv, _ := newTasksView(t, &Settings{EditOnNavigate: &off}, 80, 10)

	key(gv, tcell.KeyDown, 0, tcell.ModNone)
	key(gv, tcell.KeyDown, 0, tcell.ModNone)
	row, _ := gv.grid.Selection().CurrentCell()
	if row != 1 {
		t.Errorf("current row = %d, want 1", row)
	}
	if gv.grid.Editing() {
		t.Error("navigation opened an editor")
	}

	key(gv, tcell.KeyCtrlA, 0, tcell.ModCtrl)
	if !gv.grid.Selection().IsCellSelected(99, 3) {
		t.Error("Ctrl+A did not select everything")
	}
}

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		name  string
		event *tcell.EventKey
		want  grid.KeyEvent
		ok    bool
	}{
		{"arrow", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), grid.KeyEvent{Key: grid.KeyUp}, true},
		{"shift arrow", tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModShift), grid.KeyEvent{Key: grid.KeyRight, Mods: grid.ModShift}, true},
		{"page down", tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone), grid.KeyEvent{Key: grid.KeyPageDown}, true},
		{"space", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), grid.KeyEvent{Key: grid.KeySpace}, true},
		{"letter", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), grid.KeyEvent{Key: grid.KeyRune, Rune: 'q'}, true},
		{"ctrl letter", tcell.NewEventKey(tcell.KeyCtrlA, 0, tcell.ModCtrl), grid.KeyEvent{Key: grid.KeyRune, Rune: 'a', Mods: grid.ModCtrl}, true},
		{"f2", tcell.NewEventKey(tcell.KeyF2, 0, tcell.ModNone), grid.KeyEvent{Key: grid.KeyF2}, true},
		{"unmapped", tcell.NewEventKey(tcell.KeyF12, 0, tcell.ModNone), grid.KeyEvent{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := translateKey(tt.event)
			if ok != tt.ok || got != tt.want {
				t.Errorf("translateKey = %+v, %v; want %+v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
