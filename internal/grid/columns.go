package grid

import "fmt"

// ColumnType tags how a column's cells are hit-tested and drawn.
type ColumnType int32

const (
	ColumnText ColumnType = iota
	ColumnButton
	ColumnBitmap
	ColumnCheckBox
	ColumnHyperlink
	ColumnLineNumber

	// ColumnCustom and every value above it are host-defined cell kinds
	// whose pointer gestures are routed to the custom cell handler.
	ColumnCustom ColumnType = 0x400
)

func (t ColumnType) String() string {
	switch t {
	case ColumnText:
		return "text"
	case ColumnButton:
		return "button"
	case ColumnBitmap:
		return "bitmap"
	case ColumnCheckBox:
		return "checkbox"
	case ColumnHyperlink:
		return "hyperlink"
	case ColumnLineNumber:
		return "line-number"
	}
	if t.IsCustom() {
		return fmt.Sprintf("custom+%d", int32(t-ColumnCustom))
	}
	return fmt.Sprintf("ColumnType(%d)", int32(t))
}

// IsCustom reports whether the type is host-defined.
func (t ColumnType) IsCustom() bool { return t >= ColumnCustom }

// IsButton reports whether cells press and release like buttons.
func (t ColumnType) IsButton() bool { return t == ColumnButton || t == ColumnCheckBox }

// Column is the metadata of one grid column. ID is the stable storage index
// handed to the data source; the column's UI position can change.
type Column struct {
	ID    int
	Title string
	Width int32
	Type  ColumnType

	Resizable bool

	// MergedWithRight joins this header with the next one. A merged run is
	// hit-tested, drawn and resized as one header.
	MergedWithRight bool

	// ResizeProportion is the share of a merged run's width change taken by
	// this column. The last column of a run absorbs the remainder.
	ResizeProportion float64

	// HeaderButton places a button at the right edge of the header.
	HeaderButton bool
}

func (c Column) validate() error {
	if c.Width < 0 {
		return fmt.Errorf("column %d width %d: %w", c.ID, c.Width, ErrInvalidArgument)
	}
	if c.ResizeProportion < 0 || c.ResizeProportion > 1 {
		return fmt.Errorf("column %d resize proportion %v: %w", c.ID, c.ResizeProportion, ErrInvalidArgument)
	}
	return nil
}

// ColumnSet keeps columns in UI order together with the reverse mapping
// from storage ID to UI position.
type ColumnSet struct {
	cols []Column
	pos  map[int]int32
}

// NewColumnSet validates cols and indexes them. IDs must be unique.
func NewColumnSet(cols []Column) (*ColumnSet, error) {
	s := &ColumnSet{}
	if err := s.Reset(cols); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset replaces every column.
func (s *ColumnSet) Reset(cols []Column) error {
	pos := make(map[int]int32, len(cols))
	for i, c := range cols {
		if err := c.validate(); err != nil {
			return err
		}
		if _, dup := pos[c.ID]; dup {
			return fmt.Errorf("duplicate column id %d: %w", c.ID, ErrInvalidArgument)
		}
		pos[c.ID] = int32(i)
	}
	s.cols = append(s.cols[:0], cols...)
	for i := range s.cols {
		s.cols[i].Width = min(s.cols[i].Width, MaxColumnWidth)
	}
	s.pos = pos
	return nil
}

// Len returns the number of columns.
func (s *ColumnSet) Len() int32 { return int32(len(s.cols)) }

// At returns the column at UI position i.
func (s *ColumnSet) At(i int32) Column { return s.cols[i] }

// Valid reports whether i is a UI position.
func (s *ColumnSet) Valid(i int32) bool { return i >= 0 && int(i) < len(s.cols) }

// ID returns the storage ID at UI position i, or -1.
func (s *ColumnSet) ID(i int32) int {
	if !s.Valid(i) {
		return noIndex
	}
	return s.cols[i].ID
}

// Position returns the UI position of a storage ID.
func (s *ColumnSet) Position(id int) (int32, bool) {
	p, ok := s.pos[id]
	return p, ok
}

// Widths returns every column width in UI order.
func (s *ColumnSet) Widths() []int32 {
	w := make([]int32, len(s.cols))
	for i, c := range s.cols {
		w[i] = c.Width
	}
	return w
}

// Slice returns a copy of the columns in UI order.
func (s *ColumnSet) Slice() []Column {
	return append([]Column(nil), s.cols...)
}

func (s *ColumnSet) setWidth(i, w int32) { s.cols[i].Width = w }

// Insert adds c at UI position at.
func (s *ColumnSet) Insert(at int32, c Column) error {
	if at < 0 || int(at) > len(s.cols) {
		return fmt.Errorf("insert column at %d of %d: %w", at, len(s.cols), ErrInvalidArgument)
	}
	if err := c.validate(); err != nil {
		return err
	}
	if _, dup := s.pos[c.ID]; dup {
		return fmt.Errorf("duplicate column id %d: %w", c.ID, ErrInvalidArgument)
	}
	c.Width = min(c.Width, MaxColumnWidth)
	s.cols = append(s.cols, Column{})
	copy(s.cols[at+1:], s.cols[at:])
	s.cols[at] = c
	s.reindex()
	return nil
}

// Delete removes the column at UI position at.
func (s *ColumnSet) Delete(at int32) (Column, error) {
	if !s.Valid(at) {
		return Column{}, fmt.Errorf("delete column %d of %d: %w", at, len(s.cols), ErrInvalidArgument)
	}
	c := s.cols[at]
	s.cols = append(s.cols[:at], s.cols[at+1:]...)
	s.reindex()
	return c, nil
}

// Move relocates the column at from so it ends up at UI position to.
func (s *ColumnSet) Move(from, to int32) error {
	if !s.Valid(from) || !s.Valid(to) {
		return fmt.Errorf("move column %d to %d of %d: %w", from, to, len(s.cols), ErrInvalidArgument)
	}
	c := s.cols[from]
	s.cols = append(s.cols[:from], s.cols[from+1:]...)
	s.cols = append(s.cols, Column{})
	copy(s.cols[to+1:], s.cols[to:])
	s.cols[to] = c
	s.reindex()
	return nil
}

func (s *ColumnSet) reindex() {
	clear(s.pos)
	if s.pos == nil {
		s.pos = make(map[int]int32, len(s.cols))
	}
	for i, c := range s.cols {
		s.pos[c.ID] = int32(i)
	}
}

// MergedRun returns the first and last UI positions of the merged header
// run containing i.
func (s *ColumnSet) MergedRun(i int32) (start, end int32) {
	start, end = i, i
	for start > 0 && s.cols[start-1].MergedWithRight {
		start--
	}
	for int(end) < len(s.cols)-1 && s.cols[end].MergedWithRight {
		end++
	}
	return start, end
}

// mergedRunProportion validates the weights of a run, excluding its last
// column.
func (s *ColumnSet) mergedRunProportion(start, end int32) (float64, error) {
	var sum float64
	for i := start; i < end; i++ {
		sum += s.cols[i].ResizeProportion
	}
	if sum > 1 {
		return sum, fmt.Errorf("merged columns %d..%d resize proportion %v: %w", start, end, sum, ErrInvalidArgument)
	}
	return sum, nil
}
