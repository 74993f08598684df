package grid

import (
	"errors"
	"math/rand"
	"testing"
)

func TestSelectionCellBlocksExtend(t *testing.T) {
	s := NewSelectionManager(CellBlocks)
	s.StartNewBlock(5, 2)
	s.UpdateCurrentBlock(8, 4)

	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
	b := s.Blocks()[0]
	if b.RowStart != 5 || b.RowEnd != 8 || b.ColStart != 2 || b.ColEnd != 4 {
		t.Errorf("block = %v, want rows[5..8] cols[2..4]", b)
	}
	if !s.IsCellSelected(6, 3) {
		t.Error("IsCellSelected(6, 3) = false")
	}
	if s.IsCellSelected(9, 3) {
		t.Error("IsCellSelected(9, 3) = true")
	}
	if r, c := s.CurrentCell(); r != 5 || c != 2 {
		t.Errorf("CurrentCell = (%d, %d), want anchor (5, 2)", r, c)
	}
	if r, c := s.LastUpdatedCell(); r != 8 || c != 4 {
		t.Errorf("LastUpdatedCell = (%d, %d), want (8, 4)", r, c)
	}
}

func TestSelectionRowBlocksDisjoint(t *testing.T) {
	s := NewSelectionManager(RowBlocks)
	s.StartNewBlock(2, 0)
	if !s.StartNewBlockOrExcludeCell(5, 3) {
		t.Fatal("ctrl-click on an unselected row did not start a block")
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	for col := int32(0); col < 10; col++ {
		if !s.IsCellSelected(2, col) {
			t.Errorf("IsCellSelected(2, %d) = false", col)
		}
		if s.IsCellSelected(3, col) {
			t.Errorf("IsCellSelected(3, %d) = true", col)
		}
		if !s.IsCellSelected(5, col) {
			t.Errorf("IsCellSelected(5, %d) = false", col)
		}
	}
	if i := s.BlockIndexForCell(5, 9); i != 1 {
		t.Errorf("BlockIndexForCell(5, 9) = %d, want 1", i)
	}
	if i := s.BlockIndexForCell(4, 0); i != -1 {
		t.Errorf("BlockIndexForCell(4, 0) = %d, want -1", i)
	}
}

func TestSelectionColumnModeIgnoresRows(t *testing.T) {
	s := NewSelectionManager(ColumnBlocks)
	s.StartNewBlock(0, 3)
	s.UpdateCurrentBlock(0, 4)
	if !s.IsCellSelected(1_000_000, 4) {
		t.Error("column block does not select every row")
	}
	if s.IsCellSelected(0, 5) {
		t.Error("column 5 selected")
	}
}

func TestSelectionSplitRows(t *testing.T) {
	tests := []struct {
		name    string
		exclude int64
		want    [][2]int64
	}{
		{"near edge", 2, [][2]int64{{3, 6}}},
		{"far edge", 6, [][2]int64{{2, 5}}},
		{"interior", 4, [][2]int64{{2, 3}, {5, 6}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelectionManager(RowBlocks)
			s.StartNewBlock(2, 1)
			s.UpdateCurrentBlock(6, 1)
			if s.StartNewBlockOrExcludeCell(tt.exclude, 1) {
				t.Fatal("excluding a selected row started a block")
			}
			got := s.Blocks()
			if len(got) != len(tt.want) {
				t.Fatalf("blocks = %v, want %d blocks", got, len(tt.want))
			}
			for i, w := range tt.want {
				if got[i].RowStart != w[0] || got[i].RowEnd != w[1] {
					t.Errorf("block %d rows = [%d..%d], want [%d..%d]", i, got[i].RowStart, got[i].RowEnd, w[0], w[1])
				}
				if got[i].ColStart != 1 || got[i].ColEnd != 1 {
					t.Errorf("block %d cols changed: %v", i, got[i])
				}
				if err := got[i].validate(); err != nil {
					t.Errorf("block %d invalid: %v", i, err)
				}
			}
			if s.IsCellSelected(tt.exclude, 1) {
				t.Error("excluded row still selected")
			}
			if s.CurrentBlockIndex() != -1 {
				t.Errorf("CurrentBlockIndex = %d, want -1", s.CurrentBlockIndex())
			}
		})
	}
}

func TestSelectionSplitColumns(t *testing.T) {
	s := NewSelectionManager(ColumnBlocks)
	s.StartNewBlock(0, 1)
	s.UpdateCurrentBlock(0, 5)
	s.StartNewBlockOrExcludeCell(7, 3)
	got := s.Blocks()
	if len(got) != 2 || got[0].ColEnd != 2 || got[1].ColStart != 4 || got[1].ColEnd != 5 {
		t.Errorf("blocks = %v, want cols [1..2] and [4..5]", got)
	}
}

func TestSelectionExcludeOverlapping(t *testing.T) {
	// Overlapping blocks must all give up the excluded row.
	s := NewSelectionManager(RowBlocks)
	s.StartNewBlock(0, 0)
	s.UpdateCurrentBlock(5, 0)
	if err := s.SetBlocks(append(s.Blocks(), mustBlock(t, 0, 3, 0, 8))); err != nil {
		t.Fatalf("SetBlocks: %v", err)
	}
	s.StartNewBlockOrExcludeCell(4, 0)
	if s.IsCellSelected(4, 0) {
		t.Errorf("row 4 still selected by %v", s.Blocks())
	}
	for _, row := range []int64{0, 3, 5, 8} {
		if !s.IsCellSelected(row, 0) {
			t.Errorf("row %d lost", row)
		}
	}
}

func TestSelectionCellBlocksCtrlClickStartsBlock(t *testing.T) {
	s := NewSelectionManager(CellBlocks)
	s.StartNewBlock(0, 0)
	s.UpdateCurrentBlock(3, 3)
	if !s.StartNewBlockOrExcludeCell(1, 1) {
		t.Error("cell mode excluded instead of starting a block")
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
}

func TestSelectionExclusionRoundTrip(t *testing.T) {
	tests := []struct {
		mode SelectionMode
	}{
		{RowBlocks},
		{ColumnBlocks},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			s := NewSelectionManager(tt.mode)
			s.StartNewBlock(2, 1)
			s.UpdateCurrentBlock(7, 6)

			// One cell per row (or column) is enough to carve out the
			// whole line. Exclude interior lines first so splits happen.
			var cells [][2]int64
			if tt.mode.RowBased() {
				for _, r := range []int64{4, 2, 7, 5, 3, 6} {
					cells = append(cells, [2]int64{r, 3})
				}
			} else {
				for _, c := range []int64{3, 1, 6, 4, 2, 5} {
					cells = append(cells, [2]int64{4, c})
				}
			}
			for i, cell := range cells {
				if s.StartNewBlockOrExcludeCell(cell[0], int32(cell[1])) {
					t.Fatalf("step %d: cell %v started a block", i, cell)
				}
				if s.IsCellSelected(cell[0], int32(cell[1])) {
					t.Fatalf("step %d: cell %v still selected", i, cell)
				}
				for _, prev := range cells[:i] {
					if s.IsCellSelected(prev[0], int32(prev[1])) {
						t.Fatalf("step %d: earlier cell %v reselected", i, prev)
					}
				}
			}
			if s.Len() != 0 {
				t.Errorf("blocks left: %v", s.Blocks())
			}
			if r, c := s.CurrentCell(); r != -1 || c != -1 {
				t.Errorf("CurrentCell = (%d, %d), want (-1, -1)", r, c)
			}
		})
	}
}

func TestSelectionSingleItemCap(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, mode := range []SelectionMode{SingleRow, SingleCell, SingleColumn} {
		t.Run(mode.String(), func(t *testing.T) {
			s := NewSelectionManager(mode)
			for i := 0; i < 500; i++ {
				row, col := rng.Int63n(20), int32(rng.Intn(20))
				switch rng.Intn(3) {
				case 0:
					s.StartNewBlock(row, col)
				case 1:
					s.UpdateCurrentBlock(row, col)
				case 2:
					s.StartNewBlockOrExcludeCell(row, col)
				}
				if s.Len() > 1 {
					t.Fatalf("step %d: %d blocks", i, s.Len())
				}
			}
		})
	}
}

func TestSelectionSingleItemExtend(t *testing.T) {
	tests := []struct {
		mode       SelectionMode
		start, end [2]int64
		want       CellBlock
	}{
		{SingleRow, [2]int64{2, 0}, [2]int64{5, 0}, CellBlock{ColStart: 0, ColEnd: 0, RowStart: 2, RowEnd: 5, AnchorCol: 0, AnchorRow: 2}},
		{SingleCell, [2]int64{2, 1}, [2]int64{4, 3}, CellBlock{ColStart: 1, ColEnd: 3, RowStart: 2, RowEnd: 4, AnchorCol: 1, AnchorRow: 2}},
		{SingleColumn, [2]int64{0, 4}, [2]int64{0, 2}, CellBlock{ColStart: 2, ColEnd: 4, RowStart: 0, RowEnd: 0, AnchorCol: 4, AnchorRow: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			s := NewSelectionManager(tt.mode)
			s.StartNewBlock(tt.start[0], int32(tt.start[1]))
			s.UpdateCurrentBlock(tt.end[0], int32(tt.end[1]))
			got := s.Blocks()
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("blocks = %v, want [%v]", got, tt.want)
			}
			// A fresh block still replaces the extended one.
			s.StartNewBlock(9, 9)
			if !s.IsSoleSelection(9, 9) {
				t.Errorf("after StartNewBlock blocks = %v", s.Blocks())
			}
		})
	}
}

func TestSelectionTruncateRows(t *testing.T) {
	s := NewSelectionManager(CellBlocks)
	s.StartNewBlock(8, 1)
	s.UpdateCurrentBlock(2, 3) // anchored at the bottom edge
	s.StartNewBlock(1, 0)
	s.StartNewBlock(12, 2)
	s.UpdateCurrentBlock(14, 2)

	if !s.TruncateRows(6) {
		t.Fatal("TruncateRows reported no change")
	}
	got := s.Blocks()
	want := []CellBlock{
		{ColStart: 1, ColEnd: 3, RowStart: 2, RowEnd: 5, AnchorCol: 1, AnchorRow: 5},
		{ColStart: 0, ColEnd: 0, RowStart: 1, RowEnd: 1, AnchorCol: 0, AnchorRow: 1},
	}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("blocks = %v, want %v", got, want)
	}
	if s.CurrentBlockIndex() != -1 {
		t.Errorf("CurrentBlockIndex = %d, want -1 after the current block went", s.CurrentBlockIndex())
	}
	if r, c := s.CurrentCell(); r != -1 || c != -1 {
		t.Errorf("CurrentCell = (%d, %d)", r, c)
	}
	if s.TruncateRows(6) {
		t.Error("second TruncateRows reported a change")
	}
}

func TestSelectionSetBlocksValidation(t *testing.T) {
	s := NewSelectionManager(SingleCell)
	two := []CellBlock{NewCellBlock(0, 0), NewCellBlock(1, 1)}
	if err := s.SetBlocks(two); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("two blocks in single mode error = %v", err)
	}
	bad := CellBlock{ColStart: 3, ColEnd: 1, RowStart: 0, RowEnd: 0, AnchorCol: 3}
	s.SetMode(CellBlocks)
	if err := s.SetBlocks([]CellBlock{bad}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("inverted block error = %v", err)
	}
	if err := s.SetBlocks(two); err != nil {
		t.Fatalf("SetBlocks: %v", err)
	}
	if s.CurrentBlockIndex() != 1 {
		t.Errorf("CurrentBlockIndex = %d, want 1", s.CurrentBlockIndex())
	}
}

func TestSelectionClear(t *testing.T) {
	s := NewSelectionManager(CellBlocks)
	s.StartNewBlock(3, 3)
	s.Clear(false)
	if s.Len() != 0 || s.CurrentBlockIndex() != -1 {
		t.Errorf("after Clear(false): len %d, current %d", s.Len(), s.CurrentBlockIndex())
	}
	if r, c := s.CurrentCell(); r != 3 || c != 3 {
		t.Errorf("Clear(false) dropped focus: (%d, %d)", r, c)
	}
	s.Clear(true)
	if r, c := s.CurrentCell(); r != -1 || c != -1 {
		t.Errorf("Clear(true) kept focus: (%d, %d)", r, c)
	}
	// With no current block, extending starts one.
	s.UpdateCurrentBlock(4, 4)
	if s.Len() != 1 || !s.IsSoleSelection(4, 4) {
		t.Errorf("UpdateCurrentBlock without block = %v", s.Blocks())
	}
}

func TestSelectionSelectAll(t *testing.T) {
	s := NewSelectionManager(CellBlocks)
	if !s.SelectAll(100, 5) {
		t.Fatal("SelectAll failed")
	}
	if !s.IsCellSelected(99, 4) || !s.IsCellSelected(0, 0) {
		t.Error("SelectAll misses a corner")
	}
	s.SetMode(SingleCell)
	if s.SelectAll(100, 5) {
		t.Error("SelectAll succeeded in single-item mode")
	}
}

func TestParseSelectionMode(t *testing.T) {
	for m := SingleRow; m <= ColumnBlocks; m++ {
		got, err := ParseSelectionMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseSelectionMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseSelectionMode("diagonal"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("unknown mode error = %v", err)
	}
}

func mustBlock(t *testing.T, colStart int32, rowStart int64, colEnd int32, rowEnd int64) CellBlock {
	t.Helper()
	b, err := NewBlockBounds(colStart, rowStart, colEnd, rowEnd)
	if err != nil {
		t.Fatalf("NewBlockBounds: %v", err)
	}
	return b
}
