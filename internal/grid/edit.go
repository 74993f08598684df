package grid

import (
	"fmt"
	"log/slog"
)

// EditType selects the embedded control used to edit a cell. Zero means the
// cell is read-only.
type EditType int

const NotEditable EditType = 0

// Control is an embedded editor owned by the host. The grid binds one
// control to one cell for the length of an edit session.
type Control interface {
	ClearData()
	SetData(string)
	Data() string
	SetContentsChangedFunc(func())

	// WantsInitialClick reports whether the click that started the session
	// should be forwarded to the control.
	WantsInitialClick() bool

	SetBounds(Rect)
	Show(focus bool)
	Hide()
}

// InitialClickHandler is implemented by controls that consume the click
// that opened them, e.g. to drop a list down or place a caret.
type InitialClickHandler interface {
	HandleInitialClick(p Point)
}

// ControlRegistry maps edit types to their embedded controls.
type ControlRegistry map[EditType]Control

// DataSource supplies cell values and accepts edits. colID is the column's
// storage ID, not its UI position.
type DataSource interface {
	RowCount() int64
	IsCellEditable(row int64, colID int) EditType
	FillControl(row int64, colID int, c Control)
	// CommitControl stores the control's value. Returning false rejects
	// the value and keeps the session open.
	CommitControl(row int64, colID int, c Control) bool
	CellDisplayValue(row int64, colID int) string
}

// BitmapSource is implemented by data sources with bitmap columns.
type BitmapSource interface {
	CellBitmap(row int64, colID int) string
}

// ButtonStateSource is implemented by data sources with button or checkbox
// columns.
type ButtonStateSource interface {
	CellButtonState(row int64, colID int) bool
}

// EditFlags tune StartEdit.
type EditFlags uint8

const (
	// EditFocus gives the control keyboard focus.
	EditFocus EditFlags = 1 << iota
	// EditForceVisible scrolls the cell into view first.
	EditForceVisible
)

// EditSession binds a control to one cell.
type EditSession struct {
	Row     int64
	ColID   int
	Type    EditType
	Control Control
	focus   bool
	hidden  bool
}

// Editing reports whether an edit session is open.
func (g *Grid) Editing() bool { return g.edit != nil }

// EditSession returns the open session, or nil.
func (g *Grid) EditSession() *EditSession { return g.edit }

// ActiveControl returns the control of the open session.
func (g *Grid) ActiveControl() (Control, error) {
	if g.edit == nil {
		return nil, fmt.Errorf("active control: no edit session: %w", ErrInvalidOperation)
	}
	return g.edit.Control, nil
}

// RegisterControl binds a control to an edit type.
func (g *Grid) RegisterControl(t EditType, c Control) error {
	if t == NotEditable {
		return fmt.Errorf("register control for edit type 0: %w", ErrInvalidArgument)
	}
	if g.edit != nil && g.edit.Type == t {
		return fmt.Errorf("register control for edit type %d while it is editing: %w", t, ErrInvalidOperation)
	}
	if c == nil {
		delete(g.controls, t)
		return nil
	}
	g.controls[t] = c
	return nil
}

// StartEdit opens an edit session at (row, col) using the control registered
// for t. It fails when an open session cannot be committed, t has no control,
// or the cell is not on screen.
func (g *Grid) StartEdit(row int64, col int32, t EditType, flags EditFlags) (ok bool) {
	defer g.guard("start edit", func() { ok = false })
	return g.startEdit(row, col, t, flags, nil)
}

func (g *Grid) startEdit(row int64, col int32, t EditType, flags EditFlags, click *Point) bool {
	if row < 0 || row >= g.vp.RowCount() || !g.cols.Valid(col) {
		return false
	}
	if g.edit != nil && !g.commitEdit() {
		return false
	}
	c, ok := g.controls[t]
	if !ok || t == NotEditable {
		g.log.Debug("no control for edit type", slog.Int("type", int(t)))
		return false
	}
	if flags&EditForceVisible != 0 && g.vp.EnsureCellIsVisible(row, col, true) {
		g.viewportChanged()
	}
	rect := g.vp.CellRect(row, col)
	if rect.Empty() {
		return false
	}

	id := g.cols.ID(col)
	c.ClearData()
	g.source.FillControl(row, id, c)
	s := &EditSession{Row: row, ColID: id, Type: t, Control: c, focus: flags&EditFocus != 0}
	c.SetContentsChangedFunc(func() {
		if g.edit == s && g.onContentsChanged != nil {
			g.onContentsChanged(s.Row, s.ColID, c)
		}
	})
	g.edit = s
	c.SetBounds(rect)
	c.Show(s.focus)
	if click != nil && c.WantsInitialClick() {
		if h, ok := c.(InitialClickHandler); ok {
			h.HandleInitialClick(*click)
		}
	}
	g.log.Debug("edit started", slog.Int64("row", row), slog.Int("col", id), slog.Int("type", int(t)))
	g.invalidate(rect)
	return true
}

// CommitEdit stores the open session's value through the data source. A
// rejected value keeps the session open with the control focused. With no
// open session it returns true.
func (g *Grid) CommitEdit() (ok bool) {
	defer g.guard("commit edit", func() { ok = false })
	return g.commitEdit()
}

func (g *Grid) commitEdit() bool {
	s := g.edit
	if s == nil {
		return true
	}
	if !g.source.CommitControl(s.Row, s.ColID, s.Control) {
		g.log.Debug("edit rejected", slog.Int64("row", s.Row), slog.Int("col", s.ColID))
		s.focus = true
		if !s.hidden {
			s.Control.Show(true)
		}
		return false
	}
	g.endEdit()
	return true
}

// CancelEdit closes the open session without storing its value.
func (g *Grid) CancelEdit() {
	if g.edit != nil {
		g.log.Debug("edit cancelled", slog.Int64("row", g.edit.Row), slog.Int("col", g.edit.ColID))
	}
	g.endEdit()
}

func (g *Grid) endEdit() {
	s := g.edit
	if s == nil {
		return
	}
	g.edit = nil
	s.Control.SetContentsChangedFunc(nil)
	s.Control.Hide()
	if col, ok := g.cols.Position(s.ColID); ok {
		g.invalidate(g.vp.CellRect(s.Row, col))
	}
}

// repositionEditor moves the open control after the viewport changed,
// hiding it while its cell is off screen.
func (g *Grid) repositionEditor() {
	s := g.edit
	if s == nil {
		return
	}
	col, ok := g.cols.Position(s.ColID)
	if !ok || s.Row >= g.vp.RowCount() {
		g.CancelEdit()
		return
	}
	rect := g.vp.CellRect(s.Row, col)
	if rect.Empty() {
		if !s.hidden {
			s.hidden = true
			s.Control.Hide()
		}
		return
	}
	s.Control.SetBounds(rect)
	if s.hidden {
		s.hidden = false
		s.Control.Show(s.focus)
	}
}
