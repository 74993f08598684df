package grid

import "fmt"

// MaxColumnWidth is the widest a column may be dragged.
const MaxColumnWidth int32 = 0x4E20

// Viewport maps the logical row/column space onto the pixels of the grid's
// client rectangle. Rows share one height; columns carry their own widths.
// A frozen prefix of columns and rows is always drawn and never scrolls.
//
// Pixel convention: every cell is followed by a grid line of the axis' line
// width. A cell is fully visible when the cell and its trailing line fit in
// the scrolling region. Column positions are kept as offsets into the frozen
// region and the scrollable content respectively; the horizontal scroll
// position is a pixel offset into the scrollable content and the vertical
// scroll position is a row offset past the frozen rows.
type Viewport struct {
	rowCount     int64
	widths       []int32
	lefts        []int32
	cellHeight   int32
	headerHeight int32
	colLine      int32
	rowLine      int32
	frozenCols   int32
	frozenRows   int64
	rect         Rect

	hpos int32
	vpos int64

	frozenWidth  int32
	contentWidth int32

	firstVisibleCol       int32
	firstVisibleColOffset int32
	lastVisibleCol        int32
	lastPaintCol          int32

	firstVisibleRow       int64
	firstVisibleRowOffset int32
	lastVisibleRow        int64
	lastPaintRow          int64
}

// NewViewport creates an empty viewport.
func NewViewport(cellHeight, headerHeight, colLine, rowLine int32) *Viewport {
	v := &Viewport{
		cellHeight:   max(cellHeight, 1),
		headerHeight: max(headerHeight, 0),
		colLine:      max(colLine, 0),
		rowLine:      max(rowLine, 0),
	}
	v.recompute()
	return v
}

// RowCount returns the number of logical rows.
func (v *Viewport) RowCount() int64 { return v.rowCount }

// SetRowCount changes the number of rows, keeping the scroll position where
// possible.
func (v *Viewport) SetRowCount(n int64) error {
	if n < 0 {
		return fmt.Errorf("row count %d: %w", n, ErrInvalidArgument)
	}
	v.rowCount = n
	v.recompute()
	return nil
}

// ColumnCount returns the number of columns.
func (v *Viewport) ColumnCount() int32 { return int32(len(v.widths)) }

// ColumnWidth returns the width of a column, 0 when out of range.
func (v *Viewport) ColumnWidth(col int32) int32 {
	if col < 0 || int(col) >= len(v.widths) {
		return 0
	}
	return v.widths[col]
}

// SetColumnWidths replaces every column width. Widths above MaxColumnWidth
// are clamped.
func (v *Viewport) SetColumnWidths(widths []int32) error {
	for i, w := range widths {
		if w < 0 {
			return fmt.Errorf("column %d width %d: %w", i, w, ErrInvalidArgument)
		}
	}
	v.widths = v.widths[:0]
	for _, w := range widths {
		v.widths = append(v.widths, min(w, MaxColumnWidth))
	}
	v.frozenCols = min(v.frozenCols, int32(len(v.widths)))
	v.recompute()
	return nil
}

// SetColumnWidth resizes one column.
func (v *Viewport) SetColumnWidth(col, width int32) error {
	if err := v.checkCol(col); err != nil {
		return err
	}
	if width < 0 {
		return fmt.Errorf("column %d width %d: %w", col, width, ErrInvalidArgument)
	}
	v.widths[col] = min(width, MaxColumnWidth)
	v.recompute()
	return nil
}

// InsertColumn adds a column at UI position at (0..ColumnCount).
func (v *Viewport) InsertColumn(at, width int32) error {
	if at < 0 || int(at) > len(v.widths) {
		return fmt.Errorf("insert column at %d of %d: %w", at, len(v.widths), ErrInvalidArgument)
	}
	if width < 0 {
		return fmt.Errorf("column width %d: %w", width, ErrInvalidArgument)
	}
	v.widths = append(v.widths, 0)
	copy(v.widths[at+1:], v.widths[at:])
	v.widths[at] = min(width, MaxColumnWidth)
	if at < v.frozenCols {
		v.frozenCols++
	}
	v.recompute()
	return nil
}

// DeleteColumn removes the column at UI position at.
func (v *Viewport) DeleteColumn(at int32) error {
	if err := v.checkCol(at); err != nil {
		return err
	}
	v.widths = append(v.widths[:at], v.widths[at+1:]...)
	if at < v.frozenCols {
		v.frozenCols--
	}
	v.recompute()
	return nil
}

// MoveColumn relocates a column width so it ends up at UI position to.
func (v *Viewport) MoveColumn(from, to int32) error {
	if err := v.checkCol(from); err != nil {
		return err
	}
	if err := v.checkCol(to); err != nil {
		return err
	}
	w := v.widths[from]
	v.widths = append(v.widths[:from], v.widths[from+1:]...)
	v.widths = append(v.widths, 0)
	copy(v.widths[to+1:], v.widths[to:])
	v.widths[to] = w
	v.recompute()
	return nil
}

func (v *Viewport) checkCol(col int32) error {
	if col < 0 || int(col) >= len(v.widths) {
		return fmt.Errorf("column %d of %d: %w", col, len(v.widths), ErrInvalidArgument)
	}
	return nil
}

// CellHeight returns the shared row height.
func (v *Viewport) CellHeight() int32 { return v.cellHeight }

// SetCellHeight changes the shared row height.
func (v *Viewport) SetCellHeight(h int32) error {
	if h < 1 {
		return fmt.Errorf("cell height %d: %w", h, ErrInvalidArgument)
	}
	v.cellHeight = h
	v.recompute()
	return nil
}

// HeaderHeight returns the height of the column header band.
func (v *Viewport) HeaderHeight() int32 { return v.headerHeight }

// Rect returns the client rectangle.
func (v *Viewport) Rect() Rect { return v.rect }

// SetRect resizes the client rectangle.
func (v *Viewport) SetRect(r Rect) {
	r.W, r.H = max(r.W, 0), max(r.H, 0)
	v.rect = r
	v.recompute()
}

// FirstScrollableColumn returns the size of the frozen column prefix.
func (v *Viewport) FirstScrollableColumn() int32 { return v.frozenCols }

// SetFirstScrollableColumn changes the frozen column prefix and scrolls back
// to the start of the scrollable columns.
func (v *Viewport) SetFirstScrollableColumn(n int32) error {
	if n < 0 || int(n) > len(v.widths) {
		return fmt.Errorf("first scrollable column %d of %d: %w", n, len(v.widths), ErrInvalidArgument)
	}
	v.frozenCols = n
	v.hpos = 0
	v.recompute()
	return nil
}

// FirstScrollableRow returns the size of the frozen row prefix.
func (v *Viewport) FirstScrollableRow() int64 { return v.frozenRows }

// SetFirstScrollableRow changes the frozen row prefix and scrolls back to the
// first scrollable row.
func (v *Viewport) SetFirstScrollableRow(n int64) error {
	if n < 0 {
		return fmt.Errorf("first scrollable row %d: %w", n, ErrInvalidArgument)
	}
	v.frozenRows = n
	v.vpos = 0
	v.recompute()
	return nil
}

// FirstVisibleColumn returns the leftmost scrollable column on screen.
func (v *Viewport) FirstVisibleColumn() int32 { return v.firstVisibleCol }

// FirstVisibleColumnOffset is the pixel offset of the first visible column's
// left edge from the scrolling region; negative when partly scrolled off.
func (v *Viewport) FirstVisibleColumnOffset() int32 { return v.firstVisibleColOffset }

// LastVisibleColumn returns the last fully visible scrollable column.
func (v *Viewport) LastVisibleColumn() int32 { return v.lastVisibleCol }

// LastPaintColumn returns the last scrollable column with any pixel on screen.
func (v *Viewport) LastPaintColumn() int32 { return v.lastPaintCol }

// FirstVisibleRow returns the topmost scrollable row on screen.
func (v *Viewport) FirstVisibleRow() int64 { return v.firstVisibleRow }

// FirstVisibleRowOffset is the distance from the viewport top to the first
// scrollable row.
func (v *Viewport) FirstVisibleRowOffset() int32 { return v.firstVisibleRowOffset }

// LastVisibleRow returns the last fully visible row.
func (v *Viewport) LastVisibleRow() int64 { return v.lastVisibleRow }

// LastPaintRow returns the last row with any pixel on screen.
func (v *Viewport) LastPaintRow() int64 { return v.lastPaintRow }

// ContentWidth returns the pixel width of all scrollable columns.
func (v *Viewport) ContentWidth() int32 { return v.contentWidth }

func (v *Viewport) rowStride() int32 { return v.cellHeight + v.rowLine }

func (v *Viewport) dataTop() int32 { return v.rect.Y + v.headerHeight }

func (v *Viewport) frozenHeight() int32 {
	return int32(min(v.frozenRows, v.rowCount, int64(v.rect.H))) * v.rowStride()
}

// scrollTop is the y of the first scrollable row.
func (v *Viewport) scrollTop() int32 {
	return min(v.dataTop()+v.frozenHeight(), v.rect.Bottom())
}

// scrollLeft is the x of the scrolling column region.
func (v *Viewport) scrollLeft() int32 {
	return v.rect.X + min(v.frozenWidth, v.rect.W)
}

func (v *Viewport) scrollWidth() int32 {
	return max(v.rect.W-v.frozenWidth, 0)
}

func (v *Viewport) scrollHeight() int32 {
	return max(v.rect.Bottom()-v.scrollTop(), 0)
}

// RowPageSize returns how many scrollable rows fit fully, or -1 when not even
// one does. Callers treat a non-positive page as "move one row at a time".
func (v *Viewport) RowPageSize() int64 {
	stride := v.rowStride()
	if stride <= 0 {
		return -1
	}
	n := int64(v.scrollHeight() / stride)
	if n <= 0 {
		return -1
	}
	return n
}

func (v *Viewport) scrollableRows() int64 {
	return max(v.rowCount-v.frozenRows, 0)
}

// HScroll returns the horizontal scrollbar state in pixels.
func (v *Viewport) HScroll() ScrollRange {
	return ScrollRange{
		Max:  int64(v.contentWidth),
		Page: int64(v.scrollWidth()),
		Pos:  int64(v.hpos),
	}
}

// VScroll returns the vertical scrollbar state in rows.
func (v *Viewport) VScroll() ScrollRange {
	return ScrollRange{
		Max:  v.scrollableRows(),
		Page: max(v.RowPageSize(), 0),
		Pos:  v.vpos,
	}
}

// ScrollTo sets the horizontal pixel position. It reports whether the
// visible window changed.
func (v *Viewport) ScrollTo(pos int64) bool {
	pos = v.HScroll().Clamp(pos)
	if int32(pos) == v.hpos {
		return false
	}
	v.hpos = int32(pos)
	v.recompute()
	return true
}

// ScrollRowsTo sets the vertical row position.
func (v *Viewport) ScrollRowsTo(pos int64) bool {
	pos = v.VScroll().Clamp(pos)
	if pos == v.vpos {
		return false
	}
	v.vpos = pos
	v.recompute()
	return true
}

// ScrollRowsBy scrolls by delta rows.
func (v *Viewport) ScrollRowsBy(delta int64) bool {
	return v.ScrollRowsTo(v.vpos + delta)
}

// ScrollColumnsBy scrolls so the first visible column moves by delta
// columns, aligning it to its left edge.
func (v *Viewport) ScrollColumnsBy(delta int32) bool {
	n := int32(len(v.widths))
	if v.frozenCols >= n {
		return false
	}
	target := v.firstVisibleCol + delta
	if delta > 0 && v.firstVisibleColOffset < 0 {
		target--
	}
	target = clampInt32(target, v.frozenCols, n-1)
	return v.ScrollTo(int64(v.lefts[target]))
}

// recompute derives the visible window from the current scroll positions.
func (v *Viewport) recompute() {
	n := int32(len(v.widths))
	if cap(v.lefts) < len(v.widths) {
		v.lefts = make([]int32, len(v.widths))
	}
	v.lefts = v.lefts[:len(v.widths)]

	var acc int32
	for c := int32(0); c < n; c++ {
		if c == v.frozenCols {
			v.frozenWidth = acc
			acc = 0
		}
		v.lefts[c] = acc
		acc += v.widths[c] + v.colLine
	}
	if v.frozenCols >= n {
		v.frozenWidth = acc
		v.contentWidth = 0
	} else {
		v.contentWidth = acc
	}

	v.hpos = int32(v.HScroll().Clamp(int64(v.hpos)))
	v.vpos = v.VScroll().Clamp(v.vpos)
	v.recomputeColumns()
	v.recomputeRows()
}

func (v *Viewport) recomputeColumns() {
	n := int32(len(v.widths))
	scrollW := v.scrollWidth()

	v.firstVisibleCol = v.frozenCols
	v.firstVisibleColOffset = 0
	v.lastVisibleCol = v.frozenCols - 1
	v.lastPaintCol = v.frozenCols - 1
	if v.frozenCols >= n {
		return
	}

	first := v.frozenCols
	for first < n-1 && v.lefts[first]+v.widths[first]+v.colLine <= v.hpos {
		first++
	}
	v.firstVisibleCol = first
	v.firstVisibleColOffset = v.lefts[first] - v.hpos
	if scrollW <= 0 {
		return
	}

	last := first
	for c := first; c < n; c++ {
		if v.lefts[c]+v.widths[c]+v.colLine-v.hpos > scrollW {
			break
		}
		last = c
	}
	v.lastVisibleCol = last

	paint := first
	for c := first; c < n && v.lefts[c]-v.hpos < scrollW; c++ {
		paint = c
	}
	v.lastPaintCol = paint
}

func (v *Viewport) recomputeRows() {
	v.firstVisibleRow = v.vpos + v.frozenRows
	v.firstVisibleRowOffset = v.scrollTop() - v.rect.Y
	v.lastVisibleRow = v.firstVisibleRow - 1
	v.lastPaintRow = v.firstVisibleRow - 1
	if v.firstVisibleRow >= v.rowCount {
		return
	}
	if page := v.RowPageSize(); page > 0 {
		v.lastVisibleRow = min(v.firstVisibleRow+page-1, v.rowCount-1)
	}
	stride := v.rowStride()
	if h := v.scrollHeight(); h > 0 && stride > 0 {
		partial := int64((h + stride - 1) / stride)
		v.lastPaintRow = min(v.firstVisibleRow+partial-1, v.rowCount-1)
	}
}

// EnsureCellIsVisible scrolls the minimum needed so (row, col) is on
// screen. The target becomes the first visible item when it lies before the
// window and the last when it lies after. It reports whether scrolling
// happened. Frozen rows and columns never need scrolling.
func (v *Viewport) EnsureCellIsVisible(row int64, col int32, makeFirstColFullyVisible bool) bool {
	changed := false

	if row >= v.frozenRows && row < v.rowCount {
		target := v.firstVisibleRow
		switch {
		case row < v.firstVisibleRow:
			target = row
		case row > v.lastVisibleRow:
			if page := v.RowPageSize(); page > 0 {
				target = row - page + 1
			} else {
				target = row
			}
		}
		pos := v.VScroll().Clamp(target - v.frozenRows)
		if pos != v.vpos {
			v.vpos = pos
			changed = true
		}
	}

	n := int32(len(v.widths))
	if col >= v.frozenCols && col < n {
		pos := v.hpos
		partialFirst := col == v.firstVisibleCol && v.firstVisibleColOffset < 0
		switch {
		case col < v.firstVisibleCol, partialFirst && makeFirstColFullyVisible:
			pos = v.lefts[col]
		case col > v.lastVisibleCol:
			span := v.widths[col] + v.colLine
			if span > v.scrollWidth() {
				pos = v.lefts[col]
			} else {
				pos = v.lefts[col] + span - v.scrollWidth()
			}
		}
		pos = int32(v.HScroll().Clamp(int64(pos)))
		if pos != v.hpos {
			v.hpos = pos
			changed = true
		}
	}

	if changed {
		v.recompute()
	}
	return changed
}

// columnX returns the unclipped screen x of a column's left edge and whether
// any of it can be on screen.
func (v *Viewport) columnX(col int32) (int32, bool) {
	if col < 0 || int(col) >= len(v.widths) {
		return 0, false
	}
	if col < v.frozenCols {
		return v.rect.X + v.lefts[col], true
	}
	if col < v.firstVisibleCol || col > v.lastPaintCol {
		return 0, false
	}
	return v.scrollLeft() + v.lefts[col] - v.hpos, true
}

// rowY returns the unclipped screen y of a row's top edge and whether any of
// it can be on screen.
func (v *Viewport) rowY(row int64) (int32, bool) {
	if row < 0 || row >= v.rowCount {
		return 0, false
	}
	if row < v.frozenRows {
		if row*int64(v.rowStride()) >= int64(v.rect.H) {
			return 0, false
		}
		return v.dataTop() + int32(row)*v.rowStride(), true
	}
	if row < v.firstVisibleRow || row > v.lastPaintRow {
		return 0, false
	}
	return v.scrollTop() + int32(row-v.firstVisibleRow)*v.rowStride(), true
}

// columnRegion is the horizontal band a column is clipped to.
func (v *Viewport) columnRegion(col int32) Rect {
	if col < v.frozenCols {
		return Rect{X: v.rect.X, Y: v.rect.Y, W: v.scrollLeft() - v.rect.X, H: v.rect.H}
	}
	return Rect{X: v.scrollLeft(), Y: v.rect.Y, W: v.scrollWidth(), H: v.rect.H}
}

// rowRegion is the vertical band a row is clipped to.
func (v *Viewport) rowRegion(row int64) Rect {
	if row < v.frozenRows {
		return Rect{X: v.rect.X, Y: v.dataTop(), W: v.rect.W, H: v.scrollTop() - v.dataTop()}
	}
	return Rect{X: v.rect.X, Y: v.scrollTop(), W: v.rect.W, H: v.scrollHeight()}
}

// CellBounds returns the unclipped rectangle of a cell that is at least
// partly on screen, or the zero Rect.
func (v *Viewport) CellBounds(row int64, col int32) Rect {
	x, okx := v.columnX(col)
	y, oky := v.rowY(row)
	if !okx || !oky {
		return Rect{}
	}
	return Rect{X: x, Y: y, W: v.widths[col], H: v.cellHeight}
}

// CellRect returns the on-screen part of a cell, clipped to the frozen or
// scrolling region it belongs to. Out-of-range or off-screen cells yield the
// zero Rect.
func (v *Viewport) CellRect(row int64, col int32) Rect {
	b := v.CellBounds(row, col)
	if b.Empty() {
		return Rect{}
	}
	return b.Intersect(v.columnRegion(col)).Intersect(v.rowRegion(row)).Intersect(v.rect)
}

// HeaderBounds returns the unclipped header rectangle of a column.
func (v *Viewport) HeaderBounds(col int32) Rect {
	x, ok := v.columnX(col)
	if !ok || v.headerHeight <= 0 {
		return Rect{}
	}
	return Rect{X: x, Y: v.rect.Y, W: v.widths[col], H: v.headerHeight}
}

// HeaderRect returns the on-screen part of a column header.
func (v *Viewport) HeaderRect(col int32) Rect {
	b := v.HeaderBounds(col)
	if b.Empty() {
		return Rect{}
	}
	return b.Intersect(v.columnRegion(col)).Intersect(v.rect)
}

// ColumnAt returns the column under screen x. onLine is true when x falls on
// the column's trailing grid line. col is -1 past the last column.
func (v *Viewport) ColumnAt(x int32) (col int32, onLine bool) {
	if x < v.rect.X || x >= v.rect.Right() {
		return noIndex, false
	}
	lo, hi, rel := int32(0), v.frozenCols, x-v.rect.X
	if x >= v.scrollLeft() {
		lo, hi, rel = v.firstVisibleCol, int32(len(v.widths)), x-v.scrollLeft()+v.hpos
	}
	for c := lo; c < hi; c++ {
		end := v.lefts[c] + v.widths[c]
		if rel >= v.lefts[c] && rel < end+v.colLine {
			return c, rel >= end
		}
	}
	return noIndex, false
}

// RowAt returns the row under screen y. header is true inside the column
// header band; row is -1 there and past the last row.
func (v *Viewport) RowAt(y int32) (row int64, header, onLine bool) {
	if y < v.rect.Y || y >= v.rect.Bottom() {
		return noIndex, false, false
	}
	if y < v.dataTop() {
		return noIndex, true, false
	}
	stride := v.rowStride()
	var rel int32
	if y < v.scrollTop() {
		rel = y - v.dataTop()
		row = int64(rel / stride)
	} else {
		rel = y - v.scrollTop()
		row = v.firstVisibleRow + int64(rel/stride)
	}
	if row >= v.rowCount {
		return noIndex, false, false
	}
	return row, false, rel%stride >= v.cellHeight
}

// DataRegion returns the rectangle below the header band.
func (v *Viewport) DataRegion() Rect {
	return Rect{X: v.rect.X, Y: v.dataTop(), W: v.rect.W, H: max(v.rect.Bottom()-v.dataTop(), 0)}
}

// ScrollRegion returns the rectangle holding scrollable rows and columns.
func (v *Viewport) ScrollRegion() Rect {
	return Rect{X: v.scrollLeft(), Y: v.scrollTop(), W: v.scrollWidth(), H: v.scrollHeight()}
}

// ColumnContentLeft returns a column's offset within its region's content:
// from the grid's left edge for frozen columns, from the start of the
// scrollable content otherwise.
func (v *Viewport) ColumnContentLeft(col int32) int32 {
	if col < 0 || int(col) >= len(v.lefts) {
		return 0
	}
	return v.lefts[col]
}
