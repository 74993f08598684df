package main

import (
	"context"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"vgrid/internal/dblib"
	"vgrid/internal/grid"
)

var (
	snapshotHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	snapshotCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	snapshotFocusStyle  = snapshotCellStyle.Reverse(true)
)

// snapshotCell is the text of one painted cell.
type snapshotCell struct {
	text    string
	focused bool
}

// gridSnapshot collects one painted frame of a grid.
type gridSnapshot struct {
	source  cellSource
	headers []string
	rows    [][]snapshotCell
	lastRow int64
}

func (s *gridSnapshot) RenderHeader(h grid.PaintHeader) {
	s.headers = append(s.headers, h.Title)
}

func (s *gridSnapshot) RenderCell(c grid.PaintCell) {
	if len(s.rows) == 0 || c.Row != s.lastRow {
		s.rows = append(s.rows, nil)
		s.lastRow = c.Row
	}
	text := s.source.CellDisplayValue(c.Row, c.ColID)
	if c.Type == grid.ColumnCheckBox {
		text = "[ ]"
		if s.source.CellButtonState(c.Row, c.ColID) {
			text = "[x]"
		}
	}
	last := len(s.rows) - 1
	s.rows[last] = append(s.rows[last], snapshotCell{text: text, focused: c.State.Has(grid.StateFocused)})
}

// render draws the collected frame as a bordered table.
func (s *gridSnapshot) render() string {
	rows := make([][]string, len(s.rows))
	for i, r := range s.rows {
		for _, c := range r {
			rows[i] = append(rows[i], c.text)
		}
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(s.headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return snapshotHeaderStyle
			}
			if row >= 0 && row < len(s.rows) && col < len(s.rows[row]) && s.rows[row][col].focused {
				return snapshotFocusStyle
			}
			return snapshotCellStyle
		}).
		String()
}

// snapshotGrid paints g once at the given size and renders the frame.
func snapshotGrid(g *grid.Grid, source cellSource, width, height int32) string {
	g.SetRect(grid.Rect{W: width, H: height})
	s := &gridSnapshot{source: source}
	g.Paint(s)
	return s.render()
}

// snapshotRelation lays rel out in a headless grid and renders the visible
// page.
func snapshotRelation(ctx context.Context, rel *dblib.Relation, opts grid.Options, colWidth, width, height int32) (string, error) {
	source, err := newRelationSource(ctx, rel, opts.Logger)
	if err != nil {
		return "", err
	}
	g, err := grid.New(source, buildColumns(rel, colWidth, source.RowCount()), opts)
	if err != nil {
		return "", err
	}
	return snapshotGrid(g, source, width, height), nil
}
