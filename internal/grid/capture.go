package grid

import "time"

// DragState is the drag phase of a captured gesture.
type DragState int

const (
	DragNone DragState = iota
	DragReady
	DragStarted
)

func (d DragState) String() string {
	switch d {
	case DragReady:
		return "ready"
	case DragStarted:
		return "started"
	}
	return "none"
}

// Capture records what the pointer owns between a pointer-down and the
// matching pointer-up. It is reset at the start and end of every gesture.
type Capture struct {
	Hit      HitResult
	Row      int64
	Col      int32
	CellRect Rect
	Point    Point
	Button   MouseButton
	Mods     Modifiers
	Time     time.Time
	Drag     DragState

	// Column resize: the merged run [ResizeStart..Col] and its widths at
	// pointer-down.
	ResizeStart int32
	OrigWidths  []int32
	OrigWidth   int32
	MinWidth    int32

	// Column reorder: the insertion point, -1 meaning before the first
	// column of the region. InsertValid is false while the pointer is over
	// the other region.
	InsertAfter int32
	InsertValid bool

	// Selecting is set while the pointer drags the current block's corner.
	Selecting bool
	LastRow   int64
	LastCol   int32
	LastPoint Point

	BlockIndex       int
	Pressed          bool
	HyperlinkPending bool

	active bool
}

// Reset returns the capture to idle.
func (c *Capture) Reset() {
	*c = Capture{
		Hit:         HitResult{Row: noIndex, Col: noIndex},
		Row:         noIndex,
		Col:         noIndex,
		ResizeStart: noIndex,
		InsertAfter: noIndex,
		LastRow:     noIndex,
		LastCol:     noIndex,
		BlockIndex:  noIndex,
	}
}

// Active reports whether a gesture owns the pointer.
func (c Capture) Active() bool { return c.active }

func (c *Capture) begin(hit HitResult, ev PointerEvent) {
	c.Reset()
	c.active = true
	c.Hit = hit
	c.Row, c.Col = hit.Row, hit.Col
	c.CellRect = hit.Rect
	c.Point = ev.Point()
	c.LastPoint = c.Point
	c.Button = ev.Button
	c.Mods = ev.Mods
	c.Time = ev.Time
}

// pastThreshold reports whether p moved at least threshold pixels from the
// capture point on either axis.
func (c *Capture) pastThreshold(p Point, threshold int32) bool {
	dx, dy := p.X-c.Point.X, p.Y-c.Point.Y
	return abs32(dx) >= threshold || abs32(dy) >= threshold
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
