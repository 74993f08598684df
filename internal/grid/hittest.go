package grid

// HitArea classifies what lies under a point.
type HitArea int

const (
	HitNothing HitArea = iota
	HitColumnOnly
	HitRowOnly
	HitColumnResize
	HitHeaderButton
	HitTextCell
	HitButtonCell
	HitBitmapCell
	HitHyperlinkCell
	HitCustomCell
)

var hitAreaNames = [...]string{
	HitNothing:       "nothing",
	HitColumnOnly:    "column",
	HitRowOnly:       "row",
	HitColumnResize:  "column-resize",
	HitHeaderButton:  "header-button",
	HitTextCell:      "text",
	HitButtonCell:    "button",
	HitBitmapCell:    "bitmap",
	HitHyperlinkCell: "hyperlink",
	HitCustomCell:    "custom",
}

func (a HitArea) String() string {
	if a < 0 || int(a) >= len(hitAreaNames) {
		return "unknown"
	}
	return hitAreaNames[a]
}

// IsCell reports whether the area is a data cell of any kind.
func (a HitArea) IsCell() bool { return a >= HitTextCell }

// HitResult describes the target under a point. Row is -1 for headers. For
// header areas Col is the first column of the merged run and Rect covers the
// whole run; MergeStart and MergeEnd bound that run.
type HitResult struct {
	Area       HitArea
	Row        int64
	Col        int32
	Rect       Rect
	MergeStart int32
	MergeEnd   int32
}

// HitTest classifies the point (x, y). It never fails; anything outside a
// target is HitNothing.
func (g *Grid) HitTest(x, y int32) HitResult {
	none := HitResult{Area: HitNothing, Row: noIndex, Col: noIndex, MergeStart: noIndex, MergeEnd: noIndex}
	if !g.vp.Rect().Contains(x, y) {
		return none
	}
	row, header, _ := g.vp.RowAt(y)
	if header {
		if c, ok := g.resizeBorderAt(x); ok {
			return HitResult{
				Area:       HitColumnResize,
				Row:        noIndex,
				Col:        c,
				Rect:       g.vp.HeaderRect(c),
				MergeStart: c,
				MergeEnd:   c,
			}
		}
	}
	col, _ := g.vp.ColumnAt(x)
	if col < 0 {
		return none
	}
	if header {
		return g.hitHeader(x, col)
	}
	if row < 0 {
		return none
	}

	c := g.cols.At(col)
	r := HitResult{Row: row, Col: col, Rect: g.vp.CellRect(row, col), MergeStart: col, MergeEnd: col}
	switch {
	case c.Type == ColumnLineNumber:
		r.Area = HitRowOnly
	case c.Type.IsButton():
		r.Area = HitButtonCell
	case c.Type == ColumnBitmap:
		r.Area = HitBitmapCell
	case c.Type == ColumnHyperlink:
		r.Area = HitTextCell
		if g.linkRect(row, col).Contains(x, y) {
			r.Area = HitHyperlinkCell
		}
	case c.Type.IsCustom():
		r.Area = HitCustomCell
	default:
		r.Area = HitTextCell
	}
	return r
}

// hitHeader expands a header hit to its merged run.
func (g *Grid) hitHeader(x, col int32) HitResult {
	start, end := g.cols.MergedRun(col)
	var rect Rect
	for c := start; c <= end; c++ {
		rect = rect.Union(g.vp.HeaderRect(c))
	}
	r := HitResult{Area: HitColumnOnly, Row: noIndex, Col: start, Rect: rect, MergeStart: start, MergeEnd: end}
	if g.cols.At(end).HeaderButton {
		if b := g.headerButtonRect(start, end); b.Contains(x, rect.Y) {
			r.Area = HitHeaderButton
			r.Rect = b
		}
	}
	return r
}

// headerButtonRect is the button at the right edge of a merged run's
// header, clipped to the screen.
func (g *Grid) headerButtonRect(start, end int32) Rect {
	b := g.vp.HeaderBounds(end)
	if b.Empty() {
		return Rect{}
	}
	w := min(g.opts.HeaderButtonWidth, b.W)
	if w <= 0 {
		return Rect{}
	}
	btn := Rect{X: b.Right() - w, Y: b.Y, W: w, H: b.H}
	var run Rect
	for c := start; c <= end; c++ {
		run = run.Union(g.vp.HeaderRect(c))
	}
	return btn.Intersect(run)
}

// resizeBorderAt finds a resizable column whose right border lies within
// the resize tolerance of x. Borders inside a merged run do not count.
func (g *Grid) resizeBorderAt(x int32) (int32, bool) {
	col, _ := g.vp.ColumnAt(x)
	if col < 0 {
		// Past the last column the final border is still grabbable.
		col = g.cols.Len() - 1
	}
	tol := g.opts.ResizeTolerance
	for _, c := range [...]int32{col, col - 1} {
		if !g.cols.Valid(c) {
			continue
		}
		meta := g.cols.At(c)
		if !meta.Resizable || meta.MergedWithRight {
			continue
		}
		x0, ok := g.vp.columnX(c)
		if !ok {
			continue
		}
		border := x0 + g.vp.ColumnWidth(c)
		region := g.vp.columnRegion(c)
		if border < region.X || border > region.Right() {
			continue
		}
		if x >= border-tol && x <= border+tol {
			return c, true
		}
	}
	return noIndex, false
}

// linkRect is the part of a hyperlink cell covered by its text.
func (g *Grid) linkRect(row int64, col int32) Rect {
	b := g.vp.CellBounds(row, col)
	if b.Empty() {
		return Rect{}
	}
	text := g.source.CellDisplayValue(row, g.cols.ID(col))
	w := g.measurer.TextWidth(text)
	if w <= 0 {
		return Rect{}
	}
	link := Rect{X: b.X + g.opts.CellPadding, Y: b.Y, W: w, H: b.H}
	return link.Intersect(b).Intersect(g.vp.CellRect(row, col))
}
