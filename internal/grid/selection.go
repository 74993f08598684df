package grid

import (
	"fmt"
	"strings"
)

// SelectionMode decides how many blocks may exist and which axes a block's
// membership test inspects.
type SelectionMode int

const (
	SingleRow SelectionMode = iota
	SingleCell
	SingleColumn
	RowBlocks
	CellBlocks
	ColumnBlocks
)

var selectionModeNames = [...]string{
	SingleRow:    "single-row",
	SingleCell:   "single-cell",
	SingleColumn: "single-column",
	RowBlocks:    "row-blocks",
	CellBlocks:   "cell-blocks",
	ColumnBlocks: "column-blocks",
}

func (m SelectionMode) String() string {
	if m < 0 || int(m) >= len(selectionModeNames) {
		return fmt.Sprintf("SelectionMode(%d)", int(m))
	}
	return selectionModeNames[m]
}

// ParseSelectionMode accepts the names produced by String.
func ParseSelectionMode(s string) (SelectionMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range selectionModeNames {
		if name == s {
			return SelectionMode(m), nil
		}
	}
	return SingleCell, fmt.Errorf("unknown selection mode %q: %w", s, ErrInvalidArgument)
}

// SingleItem reports whether the mode caps the selection at one block.
func (m SelectionMode) SingleItem() bool {
	return m == SingleRow || m == SingleCell || m == SingleColumn
}

// RowBased reports whether membership inspects rows only.
func (m SelectionMode) RowBased() bool { return m == SingleRow || m == RowBlocks }

// ColumnBased reports whether membership inspects columns only.
func (m SelectionMode) ColumnBased() bool { return m == SingleColumn || m == ColumnBlocks }

// SelectionManager owns the selected blocks, the selection mode and the
// keyboard focus cell. The focus cell may lie outside every block.
type SelectionManager struct {
	blocks       BlockSet
	mode         SelectionMode
	singleItem   bool
	currentRow   int64
	currentCol   int32
	currentBlock int
	lastRow      int64
	lastCol      int32
}

// NewSelectionManager creates an empty selection in the given mode.
func NewSelectionManager(mode SelectionMode) *SelectionManager {
	s := &SelectionManager{
		currentRow:   noIndex,
		currentCol:   noIndex,
		currentBlock: noIndex,
		lastRow:      noIndex,
		lastCol:      noIndex,
	}
	s.SetMode(mode)
	return s
}

// Mode returns the selection mode.
func (s *SelectionManager) Mode() SelectionMode { return s.mode }

// SetMode switches the mode. Existing blocks are not re-validated; callers
// clear the selection around a mode change.
func (s *SelectionManager) SetMode(mode SelectionMode) {
	s.mode = mode
	s.singleItem = mode.SingleItem()
}

// CurrentCell returns the focus cell, (-1, -1) when there is none.
func (s *SelectionManager) CurrentCell() (int64, int32) {
	return s.currentRow, s.currentCol
}

// SetCurrentCell moves focus without touching the blocks.
func (s *SelectionManager) SetCurrentCell(row int64, col int32) {
	s.currentRow, s.currentCol = row, col
}

// LastUpdatedCell returns the cell the current block was last extended to.
func (s *SelectionManager) LastUpdatedCell() (int64, int32) {
	if s.lastRow == noIndex {
		return s.currentRow, s.currentCol
	}
	return s.lastRow, s.lastCol
}

// CurrentBlockIndex returns the block being extended, or -1.
func (s *SelectionManager) CurrentBlockIndex() int { return s.currentBlock }

// Len returns the number of blocks.
func (s *SelectionManager) Len() int { return s.blocks.Len() }

// Blocks returns a copy of the selected blocks in selection order.
func (s *SelectionManager) Blocks() []CellBlock { return s.blocks.Slice() }

// StartNewBlock focuses (row, col) and appends a 1x1 block there. Single-item
// modes drop the previous selection first.
func (s *SelectionManager) StartNewBlock(row int64, col int32) {
	s.currentRow, s.currentCol = row, col
	if s.singleItem {
		s.blocks.Clear()
	}
	s.currentBlock = s.blocks.Add(NewCellBlock(row, col))
	s.lastRow, s.lastCol = row, col
}

// UpdateCurrentBlock drags the current block's free corner to (row, col).
// Without a current block it starts a new block instead.
func (s *SelectionManager) UpdateCurrentBlock(row int64, col int32) {
	if s.currentBlock < 0 || s.currentBlock >= s.blocks.Len() {
		s.StartNewBlock(row, col)
		return
	}
	s.blocks.Set(s.currentBlock, s.blocks.At(s.currentBlock).Extend(row, col))
	s.lastRow, s.lastCol = row, col
}

// StartNewBlockOrExcludeCell implements modifier-click toggling. It returns
// true when a new block was started and false when the cell was carved out of
// the blocks that held it.
func (s *SelectionManager) StartNewBlockOrExcludeCell(row int64, col int32) bool {
	if s.singleItem || s.mode == CellBlocks || !s.IsCellSelected(row, col) {
		s.StartNewBlock(row, col)
		return true
	}
	for {
		i := s.BlockIndexForCell(row, col)
		if i < 0 {
			break
		}
		if s.mode.RowBased() {
			s.splitRowsBlock(i, row)
		} else {
			s.splitColumnsBlock(i, col)
		}
	}
	s.currentBlock = noIndex
	s.lastRow, s.lastCol = noIndex, noIndex
	if s.blocks.Len() == 0 {
		s.currentRow, s.currentCol = noIndex, noIndex
	} else {
		s.currentRow, s.currentCol = row, col
	}
	return false
}

// splitRowsBlock removes row from block i, splitting it in two when the row
// is interior.
func (s *SelectionManager) splitRowsBlock(i int, row int64) {
	b := s.blocks.At(i)
	switch {
	case b.Height() == 1:
		s.blocks.RemoveAt(i)
	case row == b.RowStart:
		b.RowStart++
		b.AnchorRow = clampInt64(b.AnchorRow, b.RowStart, b.RowEnd)
		s.blocks.Set(i, b)
	case row == b.RowEnd:
		b.RowEnd--
		b.AnchorRow = clampInt64(b.AnchorRow, b.RowStart, b.RowEnd)
		s.blocks.Set(i, b)
	default:
		before, after := b, b
		before.RowEnd = row - 1
		before.AnchorRow = clampInt64(b.AnchorRow, before.RowStart, before.RowEnd)
		after.RowStart = row + 1
		after.AnchorRow = clampInt64(b.AnchorRow, after.RowStart, after.RowEnd)
		s.blocks.Set(i, before)
		s.blocks.Insert(i+1, after)
	}
}

// splitColumnsBlock is splitRowsBlock along the column axis.
func (s *SelectionManager) splitColumnsBlock(i int, col int32) {
	b := s.blocks.At(i)
	switch {
	case b.Width() == 1:
		s.blocks.RemoveAt(i)
	case col == b.ColStart:
		b.ColStart++
		b.AnchorCol = clampInt32(b.AnchorCol, b.ColStart, b.ColEnd)
		s.blocks.Set(i, b)
	case col == b.ColEnd:
		b.ColEnd--
		b.AnchorCol = clampInt32(b.AnchorCol, b.ColStart, b.ColEnd)
		s.blocks.Set(i, b)
	default:
		before, after := b, b
		before.ColEnd = col - 1
		before.AnchorCol = clampInt32(b.AnchorCol, before.ColStart, before.ColEnd)
		after.ColStart = col + 1
		after.AnchorCol = clampInt32(b.AnchorCol, after.ColStart, after.ColEnd)
		s.blocks.Set(i, before)
		s.blocks.Insert(i+1, after)
	}
}

// member applies the mode-specific membership test.
func (s *SelectionManager) member(b CellBlock, row int64, col int32) bool {
	switch {
	case s.mode.RowBased():
		return b.ContainsRow(row)
	case s.mode.ColumnBased():
		return b.ContainsCol(col)
	default:
		return b.Contains(row, col)
	}
}

// IsCellSelected reports whether any block selects the cell.
func (s *SelectionManager) IsCellSelected(row int64, col int32) bool {
	return s.BlockIndexForCell(row, col) >= 0
}

// BlockIndexForCell returns the first block selecting the cell, or -1.
func (s *SelectionManager) BlockIndexForCell(row int64, col int32) int {
	return s.blocks.IndexOf(func(b CellBlock) bool { return s.member(b, row, col) })
}

// IsSoleSelection reports whether exactly one block exists and it selects
// only this cell (one row in row modes, one column in column modes).
func (s *SelectionManager) IsSoleSelection(row int64, col int32) bool {
	if s.blocks.Len() != 1 {
		return false
	}
	b := s.blocks.At(0)
	if !s.member(b, row, col) {
		return false
	}
	switch {
	case s.mode.RowBased():
		return b.Height() == 1
	case s.mode.ColumnBased():
		return b.Width() == 1
	default:
		return b.Width() == 1 && b.Height() == 1
	}
}

// Clear empties the selection and optionally drops focus.
func (s *SelectionManager) Clear(clearCurrentCell bool) {
	s.blocks.Clear()
	s.currentBlock = noIndex
	s.lastRow, s.lastCol = noIndex, noIndex
	if clearCurrentCell {
		s.currentRow, s.currentCol = noIndex, noIndex
	}
}

// TruncateRows fits the selection to n rows: blocks starting at or past n
// are dropped, the rest are cut at row n-1 with their anchors clamped. Focus
// and the last updated cell past the end are cleared. It reports whether
// anything changed.
func (s *SelectionManager) TruncateRows(n int64) bool {
	changed := false
	for i := s.blocks.Len() - 1; i >= 0; i-- {
		b := s.blocks.At(i)
		switch {
		case b.RowStart >= n:
			s.blocks.RemoveAt(i)
			switch {
			case s.currentBlock == i:
				s.currentBlock = noIndex
			case s.currentBlock > i:
				s.currentBlock--
			}
			changed = true
		case b.RowEnd >= n:
			b.RowEnd = n - 1
			b.AnchorRow = clampInt64(b.AnchorRow, b.RowStart, b.RowEnd)
			s.blocks.Set(i, b)
			changed = true
		}
	}
	if s.currentRow >= n {
		s.currentRow, s.currentCol = noIndex, noIndex
		changed = true
	}
	if s.lastRow >= n {
		s.lastRow, s.lastCol = noIndex, noIndex
		if s.currentBlock >= 0 {
			s.lastRow, s.lastCol = s.blocks.At(s.currentBlock).FarCorner()
		}
	}
	return changed
}

// SetBlocks replaces the selection. The last block becomes current.
func (s *SelectionManager) SetBlocks(blocks []CellBlock) error {
	if s.singleItem && len(blocks) > 1 {
		return fmt.Errorf("%d blocks in %s mode: %w", len(blocks), s.mode, ErrInvalidArgument)
	}
	for _, b := range blocks {
		if err := b.validate(); err != nil {
			return err
		}
	}
	s.Clear(false)
	for _, b := range blocks {
		s.currentBlock = s.blocks.Add(b)
		s.lastRow, s.lastCol = b.FarCorner()
	}
	return nil
}

// SelectAll replaces the selection with one block spanning the whole grid.
// Single-item modes cannot hold it and are left untouched.
func (s *SelectionManager) SelectAll(rowCount int64, colCount int32) bool {
	if s.singleItem || rowCount <= 0 || colCount <= 0 {
		return false
	}
	b, err := NewBlockBounds(0, 0, colCount-1, rowCount-1)
	if err != nil {
		return false
	}
	return s.SetBlocks([]CellBlock{b}) == nil
}
