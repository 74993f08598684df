package grid

import "fmt"

// HandleKey applies a key press and reports whether the grid consumed it.
// While an edit session is open only the keys that leave the editor are
// consumed; everything else belongs to the control.
func (g *Grid) HandleKey(ev KeyEvent) (handled bool) {
	defer g.guard("key", func() { handled = true })
	if ev.Key == KeyTab && ev.Mods.Has(ModShift) {
		ev.Key = KeyBacktab
	}
	if g.edit != nil {
		return g.editKey(ev)
	}

	switch ev.Key {
	case KeyEscape:
		if g.capture.Active() {
			g.CancelGesture()
			return true
		}
		return false
	case KeyEnter, KeyF2:
		return g.editCurrent(nil)
	case KeySpace:
		if g.pressCurrentButton() {
			return true
		}
		r := ' '
		return g.editCurrent(&r)
	case KeyRune:
		if ev.Mods.Has(ModCtrl) {
			if ev.Rune == 'a' || ev.Rune == 'A' {
				return g.SelectAll()
			}
			return false
		}
		return g.editCurrent(&ev.Rune)
	}

	if g.vp.RowCount() == 0 || g.cols.Len() == 0 {
		return false
	}
	extend := ev.Mods.Has(ModShift) && ev.Key != KeyBacktab
	if extend {
		row, col := g.sel.LastUpdatedCell()
		if row < 0 || col < 0 {
			return false
		}
		r, c, ok := g.navTarget(row, col, ev)
		if !ok {
			return false
		}
		g.extendTo(r, c)
		return true
	}

	row, col := g.sel.CurrentCell()
	if row < 0 || col < 0 || row >= g.vp.RowCount() || !g.cols.Valid(col) {
		if !g.isNavKey(ev.Key) {
			return false
		}
		g.moveTo(max(min(g.vp.FirstVisibleRow(), g.vp.RowCount()-1), 0), g.focusColumn())
		return true
	}
	r, c, ok := g.navTarget(row, col, ev)
	if !ok {
		return false
	}
	g.moveTo(r, c)
	return true
}

func (g *Grid) isNavKey(k Key) bool {
	switch k {
	case KeyUp, KeyDown, KeyLeft, KeyRight, KeyHome, KeyEnd, KeyPageUp, KeyPageDown, KeyTab, KeyBacktab:
		return true
	}
	return false
}

// navTarget returns the cell a navigation key moves to from (row, col).
func (g *Grid) navTarget(row int64, col int32, ev KeyEvent) (int64, int32, bool) {
	first, last := g.firstDataColumn(), g.cols.Len()-1
	if col >= 0 && col < first {
		first = col
	}
	rows := g.vp.RowCount()
	page := g.vp.RowPageSize()
	if page <= 0 {
		page = 1
	}

	switch ev.Key {
	case KeyUp:
		row--
	case KeyDown:
		row++
	case KeyLeft:
		col--
	case KeyRight:
		col++
	case KeyHome:
		col = first
		if ev.Mods.Has(ModCtrl) {
			row = 0
		}
	case KeyEnd:
		col = last
		if ev.Mods.Has(ModCtrl) {
			row = rows - 1
		}
	case KeyPageUp:
		row -= page
	case KeyPageDown:
		row += page
	case KeyTab:
		col++
		if col > last && row < rows-1 {
			col, row = first, row+1
		}
	case KeyBacktab:
		col--
		if col < first && row > 0 {
			col, row = last, row-1
		}
	default:
		return 0, 0, false
	}
	return clampInt64(row, 0, rows-1), clampInt32(col, first, last), true
}

// moveTo focuses (row, col) with a fresh 1x1 block, or opens its editor
// first when navigation edits and the cell is editable.
func (g *Grid) moveTo(row int64, col int32) {
	g.EnsureCellIsVisible(row, col, true)
	g.sel.Clear(false)
	g.sel.SetCurrentCell(row, col)
	if g.opts.EditOnNavigate {
		if t := g.source.IsCellEditable(row, g.cols.ID(col)); t != NotEditable {
			g.startEdit(row, col, t, EditFocus|EditForceVisible, nil)
		}
	}
	g.sel.StartNewBlock(row, col)
	g.selectionChanged()
}

// FocusCell moves the focus to (row, col) with a fresh 1x1 block and
// scrolls it into view. Unlike navigation it never opens an editor; an open
// session is committed first.
func (g *Grid) FocusCell(row int64, col int32) error {
	if row < 0 || row >= g.vp.RowCount() || !g.cols.Valid(col) {
		return fmt.Errorf("focus cell (%d, %d): %w", row, col, ErrInvalidArgument)
	}
	if g.edit != nil && !g.commitEdit() {
		return fmt.Errorf("focus cell: edit rejected: %w", ErrInvalidOperation)
	}
	g.EnsureCellIsVisible(row, col, true)
	g.sel.Clear(false)
	g.sel.SetCurrentCell(row, col)
	g.sel.StartNewBlock(row, col)
	g.selectionChanged()
	return nil
}

// extendTo drags the current block's free corner to (row, col) and scrolls
// that edge into view.
func (g *Grid) extendTo(row int64, col int32) {
	g.sel.UpdateCurrentBlock(row, col)
	g.EnsureCellIsVisible(row, col, false)
	g.selectionChanged()
}

// editKey handles the keys that close or leave an open editor.
func (g *Grid) editKey(ev KeyEvent) bool {
	s := g.edit
	switch ev.Key {
	case KeyEscape:
		g.CancelEdit()
		return true
	case KeyEnter, KeyTab, KeyBacktab, KeyUp, KeyDown, KeyPageUp, KeyPageDown:
	default:
		return false
	}

	row, colID := s.Row, s.ColID
	if !g.commitEdit() {
		return true
	}
	col, ok := g.cols.Position(colID)
	if !ok {
		return true
	}
	if ev.Key == KeyEnter {
		ev.Key = KeyDown
	}
	r, c, ok := g.navTarget(row, col, ev)
	if ok && (r != row || c != col) {
		g.moveTo(r, c)
	}
	return true
}

// editCurrent opens the editor on the focus cell, optionally replacing its
// content with the typed rune.
func (g *Grid) editCurrent(initial *rune) bool {
	row, col := g.sel.CurrentCell()
	if row < 0 || !g.cols.Valid(col) || row >= g.vp.RowCount() {
		return false
	}
	t := g.source.IsCellEditable(row, g.cols.ID(col))
	if t == NotEditable {
		return false
	}
	if !g.startEdit(row, col, t, EditFocus|EditForceVisible, nil) {
		return false
	}
	if initial != nil {
		g.edit.Control.SetData(string(*initial))
	}
	return true
}

// pressCurrentButton clicks a button or checkbox cell under focus.
func (g *Grid) pressCurrentButton() bool {
	row, col := g.sel.CurrentCell()
	if row < 0 || !g.cols.Valid(col) || !g.cols.At(col).Type.IsButton() {
		return false
	}
	if g.onCellClicked != nil {
		g.onCellClicked(row, g.cols.ID(col), g.vp.CellRect(row, col), ButtonLeft)
	}
	g.invalidate(g.vp.CellRect(row, col))
	return true
}
