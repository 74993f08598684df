package grid

// ScrollRange mirrors a native scrollbar. The host owns the widget and only
// reads and writes this value; Max is the content extent and Page the visible
// extent, both in scroll units (pixels horizontally, rows vertically).
type ScrollRange struct {
	Min  int64
	Max  int64
	Page int64
	Pos  int64
}

// MaxPos returns the largest valid Pos. Without a usable page the last unit
// may scroll to the top.
func (s ScrollRange) MaxPos() int64 {
	var m int64
	if s.Page > 0 {
		m = s.Max - s.Page
	} else {
		m = s.Max - 1
	}
	return max(m, s.Min)
}

// Clamp limits pos to [Min, MaxPos].
func (s ScrollRange) Clamp(pos int64) int64 {
	return clampInt64(pos, s.Min, s.MaxPos())
}

// WithPos returns a copy positioned at the clamped pos.
func (s ScrollRange) WithPos(pos int64) ScrollRange {
	s.Pos = s.Clamp(pos)
	return s
}

// CanScroll reports whether the content exceeds the page.
func (s ScrollRange) CanScroll() bool {
	return s.MaxPos() > s.Min
}
