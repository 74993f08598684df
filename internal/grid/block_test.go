package grid

import (
	"errors"
	"testing"
)

func TestCellBlockContains(t *testing.T) {
	b, err := NewBlockBounds(2, 5, 4, 8)
	if err != nil {
		t.Fatalf("NewBlockBounds: %v", err)
	}
	for row := int64(0); row < 12; row++ {
		for col := int32(0); col < 7; col++ {
			want := row >= 5 && row <= 8 && col >= 2 && col <= 4
			if got := b.Contains(row, col); got != want {
				t.Errorf("Contains(%d, %d) = %v, want %v", row, col, got, want)
			}
		}
	}
	if EmptyBlock().Contains(0, 0) {
		t.Error("empty block contains (0, 0)")
	}
}

func TestCellBlockExtend(t *testing.T) {
	tests := []struct {
		name string
		r0   int64
		c0   int32
		r1   int64
		c1   int32
	}{
		{"down right", 5, 2, 8, 4},
		{"up left", 5, 2, 1, 0},
		{"up right", 5, 2, 3, 9},
		{"down left", 5, 2, 7, 1},
		{"same cell", 5, 2, 5, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewCellBlock(tt.r0, tt.c0).Extend(tt.r1, tt.c1)
			if b.RowStart != min(tt.r0, tt.r1) || b.RowEnd != max(tt.r0, tt.r1) {
				t.Errorf("rows = [%d..%d], want [%d..%d]", b.RowStart, b.RowEnd, min(tt.r0, tt.r1), max(tt.r0, tt.r1))
			}
			if b.ColStart != min(tt.c0, tt.c1) || b.ColEnd != max(tt.c0, tt.c1) {
				t.Errorf("cols = [%d..%d], want [%d..%d]", b.ColStart, b.ColEnd, min(tt.c0, tt.c1), max(tt.c0, tt.c1))
			}
			if b.AnchorRow != tt.r0 || b.AnchorCol != tt.c0 {
				t.Errorf("anchor = (%d, %d), want (%d, %d)", b.AnchorRow, b.AnchorCol, tt.r0, tt.c0)
			}
		})
	}
}

func TestCellBlockExtendFromEmpty(t *testing.T) {
	b := EmptyBlock().Extend(3, 4)
	if b != NewCellBlock(3, 4) {
		t.Errorf("Extend on empty = %v, want 1x1 at (3, 4)", b)
	}
	if b.Width() != 1 || b.Height() != 1 {
		t.Errorf("size = %dx%d, want 1x1", b.Width(), b.Height())
	}
	if EmptyBlock().Width() != 0 || EmptyBlock().Height() != 0 {
		t.Error("empty block has non-zero size")
	}
}

func TestCellBlockExtendRepeatedly(t *testing.T) {
	// Dragging back over the anchor must keep it pinned.
	b := NewCellBlock(10, 10)
	for _, p := range [][2]int64{{12, 14}, {8, 6}, {10, 10}, {15, 3}} {
		b = b.Extend(p[0], int32(p[1]))
		if b.AnchorRow != 10 || b.AnchorCol != 10 {
			t.Fatalf("anchor moved to (%d, %d)", b.AnchorRow, b.AnchorCol)
		}
		if !b.Contains(10, 10) || !b.Contains(p[0], int32(p[1])) {
			t.Fatalf("block %v misses anchor or corner %v", b, p)
		}
	}
	if r, c := b.FarCorner(); r != 15 || c != 3 {
		t.Errorf("FarCorner = (%d, %d), want (15, 3)", r, c)
	}
}

func TestCellBlockReanchor(t *testing.T) {
	b := NewCellBlock(5, 2).Extend(8, 4)
	got, err := b.Reanchor(8, 4)
	if err != nil {
		t.Fatalf("Reanchor inside: %v", err)
	}
	got = got.Extend(6, 3)
	if got.RowStart != 6 || got.RowEnd != 8 || got.ColStart != 3 || got.ColEnd != 4 {
		t.Errorf("after reanchor and extend = %v", got)
	}
	if _, err := b.Reanchor(9, 4); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Reanchor outside error = %v, want ErrInvalidArgument", err)
	}
}

func TestCellBlockResize(t *testing.T) {
	b := NewCellBlock(5, 4).Extend(3, 2) // anchor at the far corner
	w, err := b.WithWidth(5)
	if err != nil {
		t.Fatalf("WithWidth: %v", err)
	}
	if w.ColStart != 2 || w.ColEnd != 6 {
		t.Errorf("WithWidth cols = [%d..%d], want [2..6]", w.ColStart, w.ColEnd)
	}
	h, err := b.WithHeight(1)
	if err != nil {
		t.Fatalf("WithHeight: %v", err)
	}
	if h.RowStart != 3 || h.RowEnd != 3 || h.AnchorRow != 3 {
		t.Errorf("WithHeight = %v, want rows [3..3] anchored in range", h)
	}
	if _, err := b.WithWidth(0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("WithWidth(0) error = %v", err)
	}
}

func TestNewBlockBoundsRejectsInverted(t *testing.T) {
	if _, err := NewBlockBounds(4, 0, 3, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("right < left error = %v", err)
	}
	if _, err := NewBlockBounds(0, 5, 0, 4); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bottom < top error = %v", err)
	}
	if _, err := NewBlockBounds(-1, 0, 0, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("negative origin error = %v", err)
	}
}

func TestBlockSetOperations(t *testing.T) {
	var s BlockSet
	a, b, c := NewCellBlock(0, 0), NewCellBlock(1, 1), NewCellBlock(2, 2)
	s.Add(a)
	s.Add(b)
	s.Insert(0, c)
	if s.Len() != 3 || s.At(0) != c || s.At(1) != a {
		t.Fatalf("after insert = %v", s.Slice())
	}
	s.Move(0, 2)
	if s.At(2) != c || s.At(0) != a {
		t.Errorf("after move = %v", s.Slice())
	}
	if i := s.IndexOf(func(x CellBlock) bool { return x == b }); i != 1 {
		t.Errorf("IndexOf(b) = %d, want 1", i)
	}
	s.RemoveAt(1)
	if s.Len() != 2 || s.IndexOf(func(x CellBlock) bool { return x == b }) != -1 {
		t.Errorf("after remove = %v", s.Slice())
	}
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("after clear len = %d", s.Len())
	}
}
