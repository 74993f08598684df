package grid

import (
	"errors"
	"testing"
)

func editGrid(t *testing.T) (*testGrid, *fakeControl) {
	t.Helper()
	tg := pointerGrid(t, nil)
	ctl := &fakeControl{}
	if err := tg.RegisterControl(1, ctl); err != nil {
		t.Fatalf("RegisterControl: %v", err)
	}
	return tg, ctl
}

func TestStartEdit(t *testing.T) {
	tg, ctl := editGrid(t)
	if !tg.StartEdit(2, 1, 1, EditFocus) {
		t.Fatal("StartEdit failed")
	}
	if want := (Rect{X: 41, Y: 32, W: 40, H: 10}); ctl.bounds != want {
		t.Errorf("bounds = %+v, want %+v", ctl.bounds, want)
	}
	if ctl.data != "r2c1" || !ctl.visible || !ctl.focused {
		t.Errorf("control = %+v", ctl)
	}
	got, err := tg.ActiveControl()
	if err != nil || got != Control(ctl) {
		t.Errorf("ActiveControl = %v, %v", got, err)
	}
	if s := tg.EditSession(); s.Row != 2 || s.ColID != 1 || s.Type != 1 {
		t.Errorf("session = %+v", s)
	}
}

func TestStartEditFailures(t *testing.T) {
	tg, _ := editGrid(t)
	tests := []struct {
		name  string
		row   int64
		col   int32
		typ   EditType
		flags EditFlags
	}{
		{"unregistered type", 0, 1, 5, EditFocus},
		{"not editable", 0, 1, NotEditable, EditFocus},
		{"off screen", 50, 1, 1, EditFocus},
		{"row out of range", 100, 1, 1, EditForceVisible},
		{"column out of range", 0, 4, 1, EditForceVisible},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tg.StartEdit(tt.row, tt.col, tt.typ, tt.flags) {
				t.Error("StartEdit succeeded")
			}
			if tg.Editing() {
				t.Error("session opened")
			}
		})
	}
}

func TestStartEditForceVisible(t *testing.T) {
	tg, ctl := editGrid(t)
	if !tg.StartEdit(50, 1, 1, EditFocus|EditForceVisible) {
		t.Fatal("StartEdit failed")
	}
	if first := tg.Viewport().FirstVisibleRow(); first != 41 {
		t.Errorf("FirstVisibleRow = %d, want 41", first)
	}
	if ctl.bounds != tg.CellRect(50, 1) || ctl.bounds.Empty() {
		t.Errorf("bounds = %+v", ctl.bounds)
	}
}

func TestActiveControlWithoutSession(t *testing.T) {
	tg, _ := editGrid(t)
	if _, err := tg.ActiveControl(); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("error = %v, want ErrInvalidOperation", err)
	}
}

func TestCommitEditRejected(t *testing.T) {
	tg, ctl := editGrid(t)
	tg.StartEdit(2, 1, 1, 0)
	if ctl.focused {
		t.Fatal("control focused without EditFocus")
	}

	tg.src.reject = true
	ctl.data = "bad"
	if tg.CommitEdit() {
		t.Fatal("CommitEdit = true for a rejected value")
	}
	if !tg.Editing() {
		t.Fatal("rejected commit closed the session")
	}
	if !ctl.visible || !ctl.focused {
		t.Error("control not refocused after rejection")
	}
	if _, ok := tg.src.values[[2]int64{2, 1}]; ok {
		t.Error("rejected value stored")
	}

	tg.src.reject = false
	ctl.data = "good"
	if !tg.CommitEdit() {
		t.Fatal("CommitEdit = false")
	}
	if tg.Editing() || ctl.visible {
		t.Error("session still open after commit")
	}
	if v := tg.src.values[[2]int64{2, 1}]; v != "good" {
		t.Errorf("stored %q", v)
	}
	if tg.src.commits != 2 {
		t.Errorf("commits = %d, want 2", tg.src.commits)
	}
	if !tg.CommitEdit() {
		t.Error("CommitEdit without a session = false")
	}
}

func TestCancelEdit(t *testing.T) {
	tg, ctl := editGrid(t)
	tg.StartEdit(2, 1, 1, EditFocus)
	ctl.data = "discard"
	tg.CancelEdit()
	if tg.Editing() || ctl.visible {
		t.Error("session still open")
	}
	if tg.src.commits != 0 {
		t.Errorf("commits = %d", tg.src.commits)
	}
	tg.CancelEdit()
}

func TestStartEditCommitsPrevious(t *testing.T) {
	tg, ctl := editGrid(t)
	tg.StartEdit(2, 1, 1, EditFocus)
	ctl.data = "first"
	if !tg.StartEdit(3, 1, 1, EditFocus) {
		t.Fatal("second StartEdit failed")
	}
	if v := tg.src.values[[2]int64{2, 1}]; v != "first" {
		t.Errorf("previous value = %q", v)
	}
	if ctl.data != "r3c1" {
		t.Errorf("control refilled with %q", ctl.data)
	}

	tg.src.reject = true
	if tg.StartEdit(4, 1, 1, EditFocus) {
		t.Error("StartEdit succeeded while the open value is rejected")
	}
	if s := tg.EditSession(); s == nil || s.Row != 3 {
		t.Errorf("session = %+v, want row 3", s)
	}
}

func TestEditorFollowsScroll(t *testing.T) {
	tg, ctl := editGrid(t)
	tg.StartEdit(2, 1, 1, EditFocus)

	tg.SetVScrollPos(5)
	if ctl.visible || ctl.hides != 1 {
		t.Errorf("control visible = %v, hides = %d after scrolling its row away", ctl.visible, ctl.hides)
	}
	if !tg.Editing() {
		t.Fatal("scrolling ended the session")
	}

	tg.SetVScrollPos(1)
	if !ctl.visible || !ctl.focused {
		t.Error("control not shown again")
	}
	if ctl.bounds != tg.CellRect(2, 1) {
		t.Errorf("bounds = %+v, want %+v", ctl.bounds, tg.CellRect(2, 1))
	}
	if want := (Rect{X: 41, Y: 21, W: 40, H: 10}); ctl.bounds != want {
		t.Errorf("bounds = %+v, want %+v", ctl.bounds, want)
	}
}

func TestEditorContentsChanged(t *testing.T) {
	tg, ctl := editGrid(t)
	var got []string
	tg.SetControlContentsChangedFunc(func(row int64, colID int, c Control) {
		if row != 2 || colID != 1 {
			t.Errorf("change at (%d, %d)", row, colID)
		}
		got = append(got, c.Data())
	})
	tg.StartEdit(2, 1, 1, EditFocus)
	ctl.typeText("a")
	ctl.typeText("ab")
	tg.CancelEdit()
	ctl.typeText("abc")
	if len(got) != 2 || got[1] != "ab" {
		t.Errorf("changes = %v", got)
	}
}

func TestInitialClickForwarded(t *testing.T) {
	tg, ctl := editGrid(t)
	ctl.wantClick = true
	tg.src.editable[1] = 1
	p := tg.center(t, 1, 1)
	tg.click(p, 0)
	if len(ctl.clicks) != 1 || ctl.clicks[0] != p {
		t.Errorf("clicks = %v", ctl.clicks)
	}

	// Clicks inside the open editor belong to the control.
	tg.click(p, 0)
	if len(ctl.clicks) != 1 || !tg.Editing() {
		t.Errorf("clicks = %v, editing = %v", ctl.clicks, tg.Editing())
	}
}

func TestStructuralChangesEndEdit(t *testing.T) {
	tests := []struct {
		name   string
		change func(tg *testGrid) error
		open   bool
	}{
		{"delete edited column", func(tg *testGrid) error { return tg.DeleteColumn(1) }, false},
		{"delete other column", func(tg *testGrid) error { return tg.DeleteColumn(3) }, true},
		{"shrink past row", func(tg *testGrid) error { return tg.SetRowCount(2) }, false},
		{"shrink keeping row", func(tg *testGrid) error { return tg.SetRowCount(3) }, true},
		{"move edited column", func(tg *testGrid) error { return tg.MoveColumn(1, 3) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tg, ctl := editGrid(t)
			tg.StartEdit(2, 1, 1, EditFocus)
			if err := tt.change(tg); err != nil {
				t.Fatal(err)
			}
			if tg.Editing() != tt.open {
				t.Errorf("Editing = %v, want %v", tg.Editing(), tt.open)
			}
			if tt.open && ctl.bounds != tg.CellRect(2, mustPosition(t, tg, 1)) {
				t.Errorf("bounds = %+v not moved with the cell", ctl.bounds)
			}
			if tg.src.commits != 0 {
				t.Errorf("commits = %d", tg.src.commits)
			}
		})
	}
}

func TestRowCountShrinkTrimsSelection(t *testing.T) {
	tg := pointerGrid(t, nil)
	tg.SetSelectionMode(RowBlocks)
	tg.Selection().StartNewBlock(0, 0)
	tg.Selection().UpdateCurrentBlock(15, 0)
	tg.Selection().StartNewBlock(20, 0)
	events := len(tg.sel)

	tg.src.rows = 5
	if err := tg.Refresh(); err != nil {
		t.Fatal(err)
	}
	got := tg.Selection().Blocks()
	if len(got) != 1 || got[0].RowStart != 0 || got[0].RowEnd != 4 || got[0].AnchorRow != 0 {
		t.Errorf("blocks = %v, want one block rows[0..4]", got)
	}
	if tg.Selection().IsCellSelected(12, 0) {
		t.Error("row past the end still selected")
	}
	if r, _ := tg.Selection().CurrentCell(); r != -1 {
		t.Errorf("focus row %d past the end kept", r)
	}
	if len(tg.sel) != events+1 {
		t.Fatalf("selection observers notified %d times", len(tg.sel)-events)
	}
	for _, b := range tg.sel[len(tg.sel)-1] {
		if b.RowEnd >= 5 {
			t.Errorf("observer saw %v", b)
		}
	}

	// Growing back leaves the selection alone.
	tg.src.rows = 100
	if err := tg.Refresh(); err != nil {
		t.Fatal(err)
	}
	if len(tg.sel) != events+1 {
		t.Error("growing the row count notified observers")
	}
}

func TestRegisterControl(t *testing.T) {
	tg, _ := editGrid(t)
	if err := tg.RegisterControl(NotEditable, &fakeControl{}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("type 0 error = %v", err)
	}
	tg.StartEdit(0, 1, 1, EditFocus)
	if err := tg.RegisterControl(1, &fakeControl{}); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("replace while editing error = %v", err)
	}
	tg.CancelEdit()
	if err := tg.RegisterControl(1, nil); err != nil {
		t.Fatal(err)
	}
	if tg.StartEdit(0, 1, 1, EditFocus) {
		t.Error("StartEdit with an unregistered control succeeded")
	}
}

// panickySource blows up when asked to store a value.
type panickySource struct {
	*fakeSource
}

func (panickySource) CommitControl(int64, int, Control) bool { panic("storage unavailable") }

func TestCommitEditPanic(t *testing.T) {
	src := panickySource{newFakeSource(10)}
	g, err := New(src, testColumns(2, 40), testOptions())
	if err != nil {
		t.Fatal(err)
	}
	g.SetRect(Rect{W: 100, H: 100})
	var errs []error
	g.SetErrorFunc(func(err error) { errs = append(errs, err) })
	_ = g.RegisterControl(1, &fakeControl{})

	g.StartEdit(0, 0, 1, EditFocus)
	if g.CommitEdit() {
		t.Error("CommitEdit = true after a panic")
	}
	if !g.Editing() {
		t.Error("session dropped")
	}
	if len(errs) != 1 || !errors.Is(errs[0], ErrCallbackPanic) {
		t.Errorf("errors = %v", errs)
	}
}

func mustPosition(t *testing.T, tg *testGrid, id int) int32 {
	t.Helper()
	col, ok := tg.ColumnPosition(id)
	if !ok {
		t.Fatalf("column %d missing", id)
	}
	return col
}
