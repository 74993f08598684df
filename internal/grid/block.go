package grid

import "fmt"

// noIndex marks an unset row or column.
const noIndex = -1

// CellBlock is a rectangular span of cells. The anchor is the cell that stays
// pinned while the opposite corner is dragged.
type CellBlock struct {
	ColStart  int32
	ColEnd    int32
	RowStart  int64
	RowEnd    int64
	AnchorCol int32
	AnchorRow int64
}

// EmptyBlock returns the distinguished empty block.
func EmptyBlock() CellBlock {
	return CellBlock{
		ColStart:  noIndex,
		ColEnd:    noIndex,
		RowStart:  noIndex,
		RowEnd:    noIndex,
		AnchorCol: noIndex,
		AnchorRow: noIndex,
	}
}

// NewCellBlock returns a 1x1 block anchored at (row, col).
func NewCellBlock(row int64, col int32) CellBlock {
	return CellBlock{
		ColStart:  col,
		ColEnd:    col,
		RowStart:  row,
		RowEnd:    row,
		AnchorCol: col,
		AnchorRow: row,
	}
}

// NewBlockBounds builds a block from explicit edges, anchored at the top-left
// corner.
func NewBlockBounds(colStart int32, rowStart int64, colEnd int32, rowEnd int64) (CellBlock, error) {
	if colStart < 0 || rowStart < 0 {
		return EmptyBlock(), fmt.Errorf("block origin (%d, %d) is negative: %w", rowStart, colStart, ErrInvalidArgument)
	}
	if colEnd < colStart || rowEnd < rowStart {
		return EmptyBlock(), fmt.Errorf("block bounds cols [%d..%d] rows [%d..%d] are inverted: %w",
			colStart, colEnd, rowStart, rowEnd, ErrInvalidArgument)
	}
	return CellBlock{
		ColStart:  colStart,
		ColEnd:    colEnd,
		RowStart:  rowStart,
		RowEnd:    rowEnd,
		AnchorCol: colStart,
		AnchorRow: rowStart,
	}, nil
}

// IsEmpty reports whether the block has never been touched.
func (b CellBlock) IsEmpty() bool {
	return b.ColStart == noIndex || b.RowStart == noIndex
}

// Width returns the number of columns covered, 0 when empty.
func (b CellBlock) Width() int32 {
	if b.IsEmpty() {
		return 0
	}
	return b.ColEnd - b.ColStart + 1
}

// Height returns the number of rows covered, 0 when empty.
func (b CellBlock) Height() int64 {
	if b.IsEmpty() {
		return 0
	}
	return b.RowEnd - b.RowStart + 1
}

// Contains is the inclusive rectangle test.
func (b CellBlock) Contains(row int64, col int32) bool {
	return b.ContainsRow(row) && b.ContainsCol(col)
}

// ContainsRow tests the row range only.
func (b CellBlock) ContainsRow(row int64) bool {
	return !b.IsEmpty() && row >= b.RowStart && row <= b.RowEnd
}

// ContainsCol tests the column range only.
func (b CellBlock) ContainsCol(col int32) bool {
	return !b.IsEmpty() && col >= b.ColStart && col <= b.ColEnd
}

// Extend moves the corner opposite the anchor to (row, col). An empty block
// becomes a new 1x1 block at that cell.
func (b CellBlock) Extend(row int64, col int32) CellBlock {
	if b.IsEmpty() {
		return NewCellBlock(row, col)
	}
	if row < b.AnchorRow {
		b.RowStart, b.RowEnd = row, b.AnchorRow
	} else {
		b.RowStart, b.RowEnd = b.AnchorRow, row
	}
	if col < b.AnchorCol {
		b.ColStart, b.ColEnd = col, b.AnchorCol
	} else {
		b.ColStart, b.ColEnd = b.AnchorCol, col
	}
	return b
}

// Reanchor pins the block at a cell it already contains.
func (b CellBlock) Reanchor(row int64, col int32) (CellBlock, error) {
	if !b.Contains(row, col) {
		return b, fmt.Errorf("anchor (%d, %d) outside block: %w", row, col, ErrInvalidArgument)
	}
	b.AnchorRow, b.AnchorCol = row, col
	return b, nil
}

// FarCorner returns the corner diagonally opposite the anchor, i.e. the cell
// most recently dragged to.
func (b CellBlock) FarCorner() (int64, int32) {
	row, col := b.RowEnd, b.ColEnd
	if b.AnchorRow == b.RowEnd {
		row = b.RowStart
	}
	if b.AnchorCol == b.ColEnd {
		col = b.ColStart
	}
	return row, col
}

// WithWidth resizes the block from its start edge.
func (b CellBlock) WithWidth(width int32) (CellBlock, error) {
	if b.IsEmpty() || width < 1 {
		return b, fmt.Errorf("width %d: %w", width, ErrInvalidArgument)
	}
	b.ColEnd = b.ColStart + width - 1
	b.AnchorCol = clampInt32(b.AnchorCol, b.ColStart, b.ColEnd)
	return b, nil
}

// WithHeight resizes the block from its start edge.
func (b CellBlock) WithHeight(height int64) (CellBlock, error) {
	if b.IsEmpty() || height < 1 {
		return b, fmt.Errorf("height %d: %w", height, ErrInvalidArgument)
	}
	b.RowEnd = b.RowStart + height - 1
	b.AnchorRow = clampInt64(b.AnchorRow, b.RowStart, b.RowEnd)
	return b, nil
}

func (b CellBlock) validate() error {
	if b.IsEmpty() {
		return fmt.Errorf("empty block: %w", ErrInvalidArgument)
	}
	if b.ColEnd < b.ColStart || b.RowEnd < b.RowStart {
		return fmt.Errorf("block bounds cols [%d..%d] rows [%d..%d] are inverted: %w",
			b.ColStart, b.ColEnd, b.RowStart, b.RowEnd, ErrInvalidArgument)
	}
	if !b.Contains(b.AnchorRow, b.AnchorCol) {
		return fmt.Errorf("anchor (%d, %d) outside block: %w", b.AnchorRow, b.AnchorCol, ErrInvalidArgument)
	}
	return nil
}

func (b CellBlock) String() string {
	if b.IsEmpty() {
		return "[empty]"
	}
	return fmt.Sprintf("rows[%d..%d] cols[%d..%d]", b.RowStart, b.RowEnd, b.ColStart, b.ColEnd)
}

// BlockSet is an ordered list of blocks; insertion order is selection order.
type BlockSet struct {
	blocks []CellBlock
}

// Len returns the number of blocks.
func (s *BlockSet) Len() int { return len(s.blocks) }

// At returns the block at index i.
func (s *BlockSet) At(i int) CellBlock { return s.blocks[i] }

// Add appends a block and returns its index.
func (s *BlockSet) Add(b CellBlock) int {
	s.blocks = append(s.blocks, b)
	return len(s.blocks) - 1
}

// Set replaces the block at index i.
func (s *BlockSet) Set(i int, b CellBlock) { s.blocks[i] = b }

// Insert places a block at index i, shifting later blocks.
func (s *BlockSet) Insert(i int, b CellBlock) {
	s.blocks = append(s.blocks, CellBlock{})
	copy(s.blocks[i+1:], s.blocks[i:])
	s.blocks[i] = b
}

// RemoveAt drops the block at index i.
func (s *BlockSet) RemoveAt(i int) {
	s.blocks = append(s.blocks[:i], s.blocks[i+1:]...)
}

// Move relocates the block at from so it ends up at index to.
func (s *BlockSet) Move(from, to int) {
	if from == to {
		return
	}
	b := s.blocks[from]
	s.RemoveAt(from)
	s.Insert(to, b)
}

// IndexOf returns the first block index matched by fn, or -1.
func (s *BlockSet) IndexOf(fn func(CellBlock) bool) int {
	for i, b := range s.blocks {
		if fn(b) {
			return i
		}
	}
	return noIndex
}

// Clear removes every block.
func (s *BlockSet) Clear() { s.blocks = s.blocks[:0] }

// Slice returns a copy of the blocks.
func (s *BlockSet) Slice() []CellBlock {
	return append([]CellBlock(nil), s.blocks...)
}

func clampInt32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
