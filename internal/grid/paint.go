package grid

import "iter"

// CellState flags what the renderer should highlight.
type CellState uint8

const (
	StateSelected CellState = 1 << iota
	StateFocused
	StatePressed
	StateEditing
	StateFrozen
)

// Has reports whether every flag in f is set.
func (s CellState) Has(f CellState) bool { return s&f == f }

// PaintCell is one visible cell handed to the renderer. Rect is the clipped
// on-screen area; Bounds is the full cell, which may extend past the clip.
type PaintCell struct {
	Row    int64
	Col    int32
	ColID  int
	Type   ColumnType
	Rect   Rect
	Bounds Rect
	State  CellState
}

// PaintHeader is one visible header. A merged run is reported once, at its
// first column, with Rect covering the run.
type PaintHeader struct {
	Col    int32
	ColID  int
	Title  string
	Rect   Rect
	Button Rect
	Span   int32
	State  CellState
}

// Renderer paints what the grid enumerates.
type Renderer interface {
	RenderHeader(h PaintHeader)
	RenderCell(c PaintCell)
}

// Paint walks the visible headers and cells into r.
func (g *Grid) Paint(r Renderer) {
	for h := range g.VisibleHeaders() {
		r.RenderHeader(h)
	}
	for c := range g.VisibleCells() {
		r.RenderCell(c)
	}
}

// visibleColumns yields frozen columns first, then the painted scrollable
// ones.
func (g *Grid) visibleColumns() iter.Seq[int32] {
	return func(yield func(int32) bool) {
		frozen := g.vp.FirstScrollableColumn()
		for c := int32(0); c < frozen; c++ {
			if !yield(c) {
				return
			}
		}
		for c := g.vp.FirstVisibleColumn(); c <= g.vp.LastPaintColumn(); c++ {
			if !yield(c) {
				return
			}
		}
	}
}

// visibleRows yields the frozen rows, then the painted scrollable ones.
func (g *Grid) visibleRows() iter.Seq[int64] {
	return func(yield func(int64) bool) {
		frozen := min(g.vp.FirstScrollableRow(), g.vp.RowCount())
		for r := int64(0); r < frozen; r++ {
			if _, ok := g.vp.rowY(r); !ok {
				return
			}
			if !yield(r) {
				return
			}
		}
		for r := g.vp.FirstVisibleRow(); r <= g.vp.LastPaintRow(); r++ {
			if !yield(r) {
				return
			}
		}
	}
}

// VisibleCells enumerates every cell with pixels on screen.
func (g *Grid) VisibleCells() iter.Seq[PaintCell] {
	return func(yield func(PaintCell) bool) {
		focusRow, focusCol := g.sel.CurrentCell()
		c := &g.capture
		for row := range g.visibleRows() {
			for col := range g.visibleColumns() {
				rect := g.vp.CellRect(row, col)
				if rect.Empty() {
					continue
				}
				meta := g.cols.At(col)
				pc := PaintCell{
					Row:    row,
					Col:    col,
					ColID:  meta.ID,
					Type:   meta.Type,
					Rect:   rect,
					Bounds: g.vp.CellBounds(row, col),
				}
				if g.sel.IsCellSelected(row, col) {
					pc.State |= StateSelected
				}
				if row == focusRow && col == focusCol {
					pc.State |= StateFocused
				}
				if c.Active() && c.Pressed && c.Hit.Area == HitButtonCell && c.Row == row && c.Col == col {
					pc.State |= StatePressed
				}
				if g.edit != nil && g.edit.Row == row && g.edit.ColID == meta.ID {
					pc.State |= StateEditing
				}
				if col < g.vp.FirstScrollableColumn() || row < g.vp.FirstScrollableRow() {
					pc.State |= StateFrozen
				}
				if !yield(pc) {
					return
				}
			}
		}
	}
}

// VisibleHeaders enumerates the on-screen headers, merging runs.
func (g *Grid) VisibleHeaders() iter.Seq[PaintHeader] {
	return func(yield func(PaintHeader) bool) {
		if g.vp.HeaderHeight() <= 0 {
			return
		}
		c := &g.capture
		done := int32(noIndex)
		for col := range g.visibleColumns() {
			if col <= done {
				continue
			}
			start, end := g.cols.MergedRun(col)
			done = end
			var rect Rect
			for i := start; i <= end; i++ {
				rect = rect.Union(g.vp.HeaderRect(i))
			}
			if rect.Empty() {
				continue
			}
			meta := g.cols.At(start)
			h := PaintHeader{
				Col:   start,
				ColID: meta.ID,
				Title: meta.Title,
				Rect:  rect,
				Span:  end - start + 1,
			}
			if g.cols.At(end).HeaderButton {
				h.Button = g.headerButtonRect(start, end)
				if c.Active() && c.Hit.Area == HitHeaderButton && c.Pressed && c.Hit.MergeStart == start {
					h.State |= StatePressed
				}
			}
			if g.sel.Mode().ColumnBased() {
				for i := start; i <= end; i++ {
					if g.sel.IsCellSelected(0, i) {
						h.State |= StateSelected
						break
					}
				}
			}
			if _, fc := g.sel.CurrentCell(); fc >= start && fc <= end {
				h.State |= StateFocused
			}
			if start < g.vp.FirstScrollableColumn() {
				h.State |= StateFrozen
			}
			if !yield(h) {
				return
			}
		}
	}
}
