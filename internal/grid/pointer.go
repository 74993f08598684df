package grid

import (
	"log/slog"
	"math"
)

// CustomCellPhase is the step of a gesture over a custom cell.
type CustomCellPhase int

const (
	CustomDown CustomCellPhase = iota
	CustomMove
	CustomUp
	CustomCancel
)

// CustomCellEvent is handed to the custom cell handler.
type CustomCellEvent struct {
	Phase   CustomCellPhase
	Row     int64
	ColID   int
	Type    ColumnType
	Rect    Rect
	Pointer PointerEvent
}

// PointerDown starts a gesture.
func (g *Grid) PointerDown(ev PointerEvent) {
	defer g.guard("pointer down", nil)
	if g.capture.Active() {
		g.CancelGesture()
	}
	hit := g.HitTest(ev.X, ev.Y)
	if hit.Area == HitNothing {
		g.resetCapture()
		return
	}
	g.capture.begin(hit, ev)

	switch ev.Button {
	case ButtonLeft:
	case ButtonRight:
		g.pressRight()
		return
	default:
		g.resetCapture()
		return
	}

	if g.edit != nil && !g.insideEditor(hit) && !g.commitEdit() {
		g.resetCapture()
		return
	}

	c := &g.capture
	switch hit.Area {
	case HitColumnResize:
		g.beginResize()
	case HitHeaderButton:
		c.Pressed = true
		g.invalidate(hit.Rect)
	case HitColumnOnly:
		g.pressHeader()
	case HitRowOnly:
		g.pressRowHeader()
	case HitButtonCell:
		if !g.cellClicking(ButtonLeft) {
			g.resetCapture()
			return
		}
		c.Pressed = true
		g.invalidate(hit.Rect)
	case HitHyperlinkCell:
		c.HyperlinkPending = true
		g.hyperlinkTimer = g.schedule(g.opts.HyperlinkDelay, g.hyperlinkTimeout)
	case HitCustomCell:
		if err := g.dispatchCustom(CustomDown, ev); err != nil {
			g.abortGesture(err)
		}
	default:
		g.pressCell()
	}
}

// PointerMove continues the captured gesture. Moves without a capture are
// ignored.
func (g *Grid) PointerMove(ev PointerEvent) {
	defer g.guard("pointer move", nil)
	c := &g.capture
	if !c.Active() || c.Button != ButtonLeft {
		return
	}
	p := ev.Point()
	c.LastPoint = p

	switch c.Hit.Area {
	case HitColumnResize:
		g.dragResize(ev.X)
	case HitHeaderButton, HitButtonCell:
		g.trackPressed(p)
	case HitColumnOnly:
		if c.Drag == DragReady && c.pastThreshold(p, g.opts.DragThreshold) {
			c.Drag = DragStarted
			g.log.Debug("column drag started", slog.Int("col", int(c.Col)))
		}
		if c.Drag == DragStarted {
			g.trackReorder(ev.X)
			return
		}
		if c.Selecting {
			g.extendSelection(p)
		}
	case HitCustomCell:
		if err := g.dispatchCustom(CustomMove, ev); err != nil {
			g.abortGesture(err)
		}
	case HitHyperlinkCell:
		if c.HyperlinkPending {
			if g.linkRect(c.Row, c.Col).Contains(p.X, p.Y) && !c.pastThreshold(p, g.opts.DragThreshold) {
				return
			}
			g.convertHyperlink()
		}
		fallthrough
	default:
		if !c.Active() {
			return
		}
		if c.Drag == DragReady && c.pastThreshold(p, g.opts.DragThreshold) {
			c.Drag = DragStarted
			c.Selecting = true
		}
		if c.Selecting {
			g.extendSelection(p)
		}
	}
}

// PointerUp finishes the captured gesture.
func (g *Grid) PointerUp(ev PointerEvent) {
	defer g.guard("pointer up", nil)
	c := &g.capture
	if !c.Active() {
		return
	}
	g.autoScrollTimer.stop()
	p := ev.Point()

	if c.Button == ButtonRight {
		if c.CellRect.Contains(p.X, p.Y) {
			g.cellClicked(ButtonRight)
		}
		g.resetCapture()
		return
	}

	switch c.Hit.Area {
	case HitColumnResize:
		g.endResize(p)
	case HitHeaderButton:
		if c.Pressed && c.Hit.Rect.Contains(p.X, p.Y) && g.onHeaderButton != nil {
			g.onHeaderButton(g.cols.ID(c.Hit.MergeEnd), c.Button, c.Hit.Rect)
		}
	case HitButtonCell:
		if c.Pressed && c.CellRect.Contains(p.X, p.Y) {
			g.cellClicked(ButtonLeft)
		}
	case HitColumnOnly:
		if c.Drag == DragStarted {
			g.endReorder()
		}
	case HitCustomCell:
		if err := g.dispatchCustom(CustomUp, ev); err != nil {
			g.abortGesture(err)
			return
		}
	case HitHyperlinkCell:
		if c.HyperlinkPending && g.linkRect(c.Row, c.Col).Contains(p.X, p.Y) {
			g.hyperlinkTimer.stop()
			if g.onHyperlink != nil {
				id := g.cols.ID(c.Col)
				g.onHyperlink(c.Row, id, g.source.CellDisplayValue(c.Row, id))
			}
			break
		}
		if c.HyperlinkPending {
			// Released off the link text: an ordinary cell click.
			g.convertHyperlink()
			if !c.Active() {
				break
			}
		}
		g.releaseCell(p)
	default:
		g.releaseCell(p)
	}
	g.resetCapture()
}

// CancelGesture abandons the gesture in flight, restoring any column
// widths a resize changed.
func (g *Grid) CancelGesture() {
	defer g.guard("cancel gesture", nil)
	c := &g.capture
	if !c.Active() {
		return
	}
	if c.Hit.Area == HitCustomCell {
		ev := PointerEvent{X: c.LastPoint.X, Y: c.LastPoint.Y, Button: c.Button, Mods: c.Mods}
		if err := g.dispatchCustom(CustomCancel, ev); err != nil {
			g.log.Debug("custom cell cancel failed", slog.Any("error", err))
		}
	}
	g.restoreResize()
	g.resetCapture()
	g.invalidate(Rect{})
}

// resetCapture returns to idle and stops gesture timers.
func (g *Grid) resetCapture() {
	g.hyperlinkTimer.stop()
	g.hyperlinkTimer = nil
	g.autoScrollTimer.stop()
	g.autoScrollTimer = nil
	pressed, rect := g.capture.Pressed, g.capture.CellRect
	reorder := g.capture.Drag == DragStarted && g.capture.Hit.Area == HitColumnOnly
	g.capture.Reset()
	if reorder {
		g.invalidate(Rect{})
	} else if pressed {
		g.invalidate(rect)
	}
}

// insideEditor reports whether the hit lands on the open editor's cell.
func (g *Grid) insideEditor(h HitResult) bool {
	return h.Area.IsCell() && g.edit != nil && g.edit.Row == h.Row && g.edit.ColID == g.cols.ID(h.Col)
}

func (g *Grid) cellClicking(b MouseButton) bool {
	if g.onCellClicking == nil {
		return true
	}
	c := &g.capture
	return g.onCellClicking(c.Row, g.cols.ID(c.Col), c.CellRect, b)
}

func (g *Grid) cellClicked(b MouseButton) {
	if g.onCellClicked == nil {
		return
	}
	c := &g.capture
	g.onCellClicked(c.Row, g.cols.ID(c.Col), c.CellRect, b)
}

// selectWithMods applies the click rules shared by cells and headers and
// reports whether the pointer now drags the current block's corner.
func (g *Grid) selectWithMods(row int64, col int32, mods Modifiers) bool {
	switch {
	case mods.Has(ModShift):
		g.sel.UpdateCurrentBlock(row, col)
		return true
	case mods.Has(ModCtrl):
		return g.sel.StartNewBlockOrExcludeCell(row, col)
	default:
		g.sel.Clear(false)
		g.sel.StartNewBlock(row, col)
		return true
	}
}

// pressCell handles a left press on a text or bitmap cell.
func (g *Grid) pressCell() {
	c := &g.capture
	row, col := c.Row, c.Col
	if !g.cellClicking(ButtonLeft) {
		g.resetCapture()
		return
	}
	if g.insideEditor(c.Hit) {
		// The control owns presses inside its own cell.
		g.resetCapture()
		return
	}

	plain := !c.Mods.Has(ModShift) && !c.Mods.Has(ModCtrl)
	editType := g.source.IsCellEditable(row, g.cols.ID(col))
	switch {
	case plain && g.sel.IsSoleSelection(row, col):
		g.sel.SetCurrentCell(row, col)
		c.Drag = DragReady
	case plain && editType != NotEditable:
		g.sel.Clear(false)
		g.sel.StartNewBlock(row, col)
		g.selectionChanged()
		p := c.Point
		g.startEdit(row, col, editType, EditFocus|EditForceVisible, &p)
		c.LastRow, c.LastCol = row, col
		return
	default:
		c.Selecting = g.selectWithMods(row, col, c.Mods)
	}
	c.BlockIndex = g.sel.CurrentBlockIndex()
	c.LastRow, c.LastCol = g.sel.LastUpdatedCell()
	if c.LastRow < 0 {
		c.LastRow, c.LastCol = row, col
	}
	g.EnsureCellIsVisible(row, col, false)
	g.selectionChanged()
}

// releaseCell finishes a press on a cell or row header.
func (g *Grid) releaseCell(p Point) {
	c := &g.capture
	if c.Drag == DragReady && c.Hit.Area.IsCell() {
		// A press on the sole selected cell that never became a drag
		// opens its editor.
		id := g.cols.ID(c.Col)
		if t := g.source.IsCellEditable(c.Row, id); t != NotEditable {
			g.startEdit(c.Row, c.Col, t, EditFocus|EditForceVisible, &c.Point)
		}
	}
	if c.Hit.Area.IsCell() && c.CellRect.Contains(p.X, p.Y) {
		g.cellClicked(ButtonLeft)
	}
}

// pressRight selects an unselected cell before a context action.
func (g *Grid) pressRight() {
	c := &g.capture
	if !c.Hit.Area.IsCell() {
		g.resetCapture()
		return
	}
	if !g.cellClicking(ButtonRight) {
		g.resetCapture()
		return
	}
	if !g.sel.IsCellSelected(c.Row, c.Col) {
		g.sel.Clear(false)
		g.sel.StartNewBlock(c.Row, c.Col)
		g.selectionChanged()
	}
}

// pressHeader selects the column in column modes and arms a reorder drag
// for draggable headers.
func (g *Grid) pressHeader() {
	c := &g.capture
	if g.sel.Mode().ColumnBased() {
		row := g.focusRow()
		start, end := c.Hit.MergeStart, c.Hit.MergeEnd
		last := end
		switch {
		case c.Mods.Has(ModShift):
			// Extend to the edge of the run away from the anchor.
			if _, anchor := g.sel.CurrentCell(); anchor > start {
				last = start
			}
			c.Selecting = g.selectWithMods(row, last, c.Mods)
		default:
			c.Selecting = g.selectWithMods(row, start, c.Mods)
			if c.Selecting {
				if end > start {
					g.sel.UpdateCurrentBlock(row, end)
				}
			} else {
				// A merged header toggles as one unit.
				for col := start + 1; col <= end; col++ {
					if g.sel.IsCellSelected(row, col) {
						g.sel.StartNewBlockOrExcludeCell(row, col)
					}
				}
			}
		}
		c.LastRow, c.LastCol = row, last
		g.selectionChanged()
	}
	if g.draggable(c.Hit) {
		c.Drag = DragReady
		c.Selecting = false
	}
}

// pressRowHeader selects the row in row modes, or the whole row as a block
// in cell mode.
func (g *Grid) pressRowHeader() {
	c := &g.capture
	row := c.Row
	switch mode := g.sel.Mode(); {
	case mode.RowBased():
		col := g.focusColumn()
		c.Selecting = g.selectWithMods(row, col, c.Mods)
		c.LastRow, c.LastCol = row, col
	case mode == CellBlocks:
		last := g.cols.Len() - 1
		c.Selecting = g.selectWithMods(row, 0, c.Mods)
		if c.Selecting {
			g.sel.UpdateCurrentBlock(row, last)
		}
		g.sel.SetCurrentCell(row, g.focusColumn())
		c.LastRow, c.LastCol = row, last
	default:
		return
	}
	g.EnsureCellIsVisible(row, noIndex, false)
	g.selectionChanged()
}

// focusRow is the row header and column selections anchor to.
func (g *Grid) focusRow() int64 {
	row, _ := g.sel.CurrentCell()
	if row < 0 || row >= g.vp.RowCount() {
		return max(min(g.vp.FirstVisibleRow(), g.vp.RowCount()-1), 0)
	}
	return row
}

// focusColumn is the column row selections anchor to.
func (g *Grid) focusColumn() int32 {
	_, col := g.sel.CurrentCell()
	if !g.cols.Valid(col) || g.cols.At(col).Type == ColumnLineNumber {
		return g.firstDataColumn()
	}
	return col
}

// firstDataColumn is the leftmost column that is not a line number column.
func (g *Grid) firstDataColumn() int32 {
	for c := int32(0); c < g.cols.Len(); c++ {
		if g.cols.At(c).Type != ColumnLineNumber {
			return c
		}
	}
	return 0
}

// cellNear returns the cell under p after clamping p into the data region,
// so dragging past an edge selects the edge cell.
func (g *Grid) cellNear(p Point) (int64, int32) {
	r := g.vp.DataRegion()
	if r.Empty() || g.vp.RowCount() == 0 || g.cols.Len() == 0 {
		return noIndex, noIndex
	}
	x := clampInt32(p.X, r.X, r.Right()-1)
	y := clampInt32(p.Y, r.Y, r.Bottom()-1)
	col, _ := g.vp.ColumnAt(x)
	if col < 0 {
		col = g.cols.Len() - 1
	}
	row, _, _ := g.vp.RowAt(y)
	if row < 0 {
		row = g.vp.RowCount() - 1
	}
	return row, col
}

// extendSelection drags the current block's corner to the cell near p.
func (g *Grid) extendSelection(p Point) {
	c := &g.capture
	row, col := g.cellNear(p)
	switch c.Hit.Area {
	case HitRowOnly:
		col = c.LastCol
	case HitColumnOnly:
		row = c.LastRow
	}
	if row < 0 || col < 0 {
		return
	}
	if row != c.LastRow || col != c.LastCol {
		c.LastRow, c.LastCol = row, col
		g.sel.UpdateCurrentBlock(row, col)
		g.selectionChanged()
	}
	switch c.Hit.Area {
	case HitRowOnly:
		g.EnsureCellIsVisible(row, noIndex, false)
	case HitColumnOnly:
		g.EnsureCellIsVisible(noIndex, col, false)
	default:
		g.EnsureCellIsVisible(row, col, false)
	}
	g.scheduleAutoScroll(p)
}

// autoScrollDirection reports which way to scroll while p lies outside the
// scrolling region during a selection drag.
func (g *Grid) autoScrollDirection(p Point) (int64, int32) {
	s := g.vp.ScrollRegion()
	var dr int64
	var dc int32
	if g.capture.Hit.Area != HitColumnOnly {
		switch {
		case p.Y < s.Y:
			dr = -1
		case p.Y >= s.Bottom():
			dr = 1
		}
	}
	if g.capture.Hit.Area != HitRowOnly {
		switch {
		case p.X < s.X:
			dc = -1
		case p.X >= s.Right():
			dc = 1
		}
	}
	return dr, dc
}

func (g *Grid) scheduleAutoScroll(p Point) {
	dr, dc := g.autoScrollDirection(p)
	if dr == 0 && dc == 0 {
		g.autoScrollTimer.stop()
		g.autoScrollTimer = nil
		return
	}
	if g.autoScrollTimer.pending() {
		return
	}
	g.autoScrollTimer = g.schedule(g.opts.AutoScrollInterval, g.autoScrollTick)
}

// autoScrollTick scrolls one step toward the pointer and re-extends the
// selection, which schedules the next tick.
func (g *Grid) autoScrollTick() {
	defer g.guard("auto scroll", nil)
	c := &g.capture
	if !c.Active() || !c.Selecting {
		return
	}
	dr, dc := g.autoScrollDirection(c.LastPoint)
	moved := false
	if dr != 0 && g.vp.ScrollRowsBy(dr) {
		moved = true
	}
	if dc != 0 && g.vp.ScrollColumnsBy(dc) {
		moved = true
	}
	if !moved {
		return
	}
	g.viewportChanged()
	g.extendSelection(c.LastPoint)
}

// trackPressed toggles the pressed look of a captured button as the
// pointer leaves and re-enters it.
func (g *Grid) trackPressed(p Point) {
	c := &g.capture
	rect := c.CellRect
	if c.Hit.Area == HitHeaderButton {
		rect = c.Hit.Rect
	}
	if pressed := rect.Contains(p.X, p.Y); pressed != c.Pressed {
		c.Pressed = pressed
		g.invalidate(rect)
	}
}

// hyperlinkTimeout turns a press held on a link into a plain cell press.
func (g *Grid) hyperlinkTimeout() {
	defer g.guard("hyperlink timer", nil)
	if g.capture.Active() && g.capture.HyperlinkPending {
		g.convertHyperlink()
	}
}

func (g *Grid) convertHyperlink() {
	g.hyperlinkTimer.stop()
	g.hyperlinkTimer = nil
	g.capture.HyperlinkPending = false
	g.pressCell()
}

func (g *Grid) dispatchCustom(phase CustomCellPhase, ev PointerEvent) error {
	if g.customCell == nil {
		return nil
	}
	c := &g.capture
	col := g.cols.At(c.Col)
	return g.customCell(CustomCellEvent{
		Phase:   phase,
		Row:     c.Row,
		ColID:   col.ID,
		Type:    col.Type,
		Rect:    c.CellRect,
		Pointer: ev,
	})
}

// beginResize records the widths of the resized column and of every column
// merged into it from the left.
func (g *Grid) beginResize() {
	c := &g.capture
	end := c.Col
	start, _ := g.cols.MergedRun(end)
	if _, err := g.cols.mergedRunProportion(start, end); err != nil {
		g.abortGesture(err)
		return
	}
	c.ResizeStart = start
	c.OrigWidths = make([]int32, end-start+1)
	var total int32
	for i := start; i <= end; i++ {
		w := g.vp.ColumnWidth(i)
		c.OrigWidths[i-start] = w
		total += w
	}
	c.OrigWidth = total
	c.MinWidth = min(g.opts.AverageCharWidth, total)
}

// resizedWidths apportions a change of the run's combined width by each
// column's resize proportion; the last column absorbs the remainder.
func (g *Grid) resizedWidths(delta int32) []int32 {
	c := &g.capture
	out := make([]int32, len(c.OrigWidths))
	last := len(out) - 1
	var used int32
	for i := 0; i < last; i++ {
		share := g.cols.At(c.ResizeStart + int32(i)).ResizeProportion
		w := max(c.OrigWidths[i]+int32(math.Round(float64(delta)*share)), 0)
		out[i] = w
		used += w - c.OrigWidths[i]
	}
	out[last] = max(c.OrigWidths[last]+delta-used, 0)
	return out
}

func (g *Grid) dragResize(x int32) {
	c := &g.capture
	if c.ResizeStart < 0 {
		return
	}
	want := clampInt32(c.OrigWidth+x-c.Point.X, c.MinWidth, MaxColumnWidth)
	if g.applyWidths(g.resizedWidths(want - c.OrigWidth)) {
		g.viewportChanged()
	}
}

func (g *Grid) applyWidths(widths []int32) bool {
	c := &g.capture
	changed := false
	for i, w := range widths {
		col := c.ResizeStart + int32(i)
		if g.vp.ColumnWidth(col) == w {
			continue
		}
		if err := g.vp.SetColumnWidth(col, w); err != nil {
			continue
		}
		g.cols.setWidth(col, g.vp.ColumnWidth(col))
		changed = true
	}
	return changed
}

// endResize reports changed widths, or restores them when the pointer was
// released outside the grid.
func (g *Grid) endResize(p Point) {
	c := &g.capture
	if c.ResizeStart < 0 {
		return
	}
	if !g.vp.Rect().Contains(p.X, p.Y) {
		g.restoreResize()
		return
	}
	for i, orig := range c.OrigWidths {
		col := c.ResizeStart + int32(i)
		w := g.vp.ColumnWidth(col)
		if w == orig {
			continue
		}
		id := g.cols.ID(col)
		g.log.Debug("column resized", slog.Int("col", id), slog.Int("width", int(w)))
		if g.onColumnWidthChanged != nil {
			g.onColumnWidthChanged(id, w)
		}
	}
}

func (g *Grid) restoreResize() {
	c := &g.capture
	if c.Hit.Area != HitColumnResize || c.ResizeStart < 0 {
		return
	}
	if g.applyWidths(c.OrigWidths) {
		g.viewportChanged()
	}
}

func (g *Grid) draggable(h HitResult) bool {
	if g.columnDraggable == nil || h.MergeStart != h.MergeEnd {
		return false
	}
	return g.columnDraggable(g.cols.ID(h.Col))
}

// insertionPoint maps x to the column a dragged header would be inserted
// after. Columns only move within their own frozen or scrollable region.
func (g *Grid) insertionPoint(from, x int32) (int32, bool) {
	frozen := g.vp.FirstScrollableColumn()
	lo, hi := int32(0), frozen-1
	if from >= frozen {
		lo, hi = frozen, g.cols.Len()-1
	}
	if r := g.vp.Rect(); x < r.X || x >= r.Right() {
		return noIndex, false
	}
	col, _ := g.vp.ColumnAt(x)
	if col < 0 {
		if from >= frozen {
			return hi, true
		}
		return noIndex, false
	}
	if col < lo || col > hi {
		return noIndex, false
	}
	x0, _ := g.vp.columnX(col)
	if x < x0+g.vp.ColumnWidth(col)/2 {
		return col - 1, true
	}
	return col, true
}

func (g *Grid) trackReorder(x int32) {
	c := &g.capture
	after, ok := g.insertionPoint(c.Col, x)
	if after != c.InsertAfter || ok != c.InsertValid {
		c.InsertAfter, c.InsertValid = after, ok
		g.invalidate(Rect{})
	}
}

func (g *Grid) endReorder() {
	c := &g.capture
	if !c.InsertValid {
		g.log.Debug("column drag cancelled", slog.Int("col", int(c.Col)))
		return
	}
	from := c.Col
	to := c.InsertAfter + 1
	if to > from {
		to--
	}
	if to == from {
		return
	}
	if err := g.MoveColumn(from, to); err != nil {
		g.abortGesture(err)
	}
}

// InsertMarker returns the x of the insertion marker while a header is
// being dragged.
func (g *Grid) InsertMarker() (int32, bool) {
	c := &g.capture
	if !c.Active() || c.Hit.Area != HitColumnOnly || c.Drag != DragStarted || !c.InsertValid {
		return 0, false
	}
	frozen := g.vp.FirstScrollableColumn()
	if c.InsertAfter < 0 || (c.Col >= frozen && c.InsertAfter < frozen) {
		if c.Col >= frozen {
			return g.vp.ScrollRegion().X, true
		}
		return g.vp.Rect().X, true
	}
	x0, ok := g.vp.columnX(c.InsertAfter)
	if !ok {
		return 0, false
	}
	return x0 + g.vp.ColumnWidth(c.InsertAfter), true
}
