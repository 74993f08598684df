package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"vgrid/internal/dblib"
	"vgrid/internal/grid"
)

// Edit types registered with the grid.
const (
	editText grid.EditType = iota + 1
	editEnum
	editSpin
)

const (
	lineNumberColumnID = 0
	sourcePageSize     = 64
	sourceMaxPages     = 16
)

// optionsControl is implemented by controls that offer a fixed list of values.
type optionsControl interface {
	SetOptions(values []string)
}

// relationSource serves a relation's rows to the grid in cached pages. Column
// ID 0 is the line-number column; ID i+1 is relation column i.
type relationSource struct {
	ctx context.Context
	rel *dblib.Relation
	log *slog.Logger

	sort  *dblib.SortColumn
	rows  int64
	pages map[int64][][]any
	lru   []int64

	onError     func(error)
	onCommitted func(row int64, column string)
}

func newRelationSource(ctx context.Context, rel *dblib.Relation, log *slog.Logger) (*relationSource, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &relationSource{ctx: ctx, rel: rel, log: log}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload recounts the rows and drops every cached page.
func (s *relationSource) Reload() error {
	n, err := s.rel.CountRows(s.ctx)
	if err != nil {
		return err
	}
	s.rows = n
	s.pages = make(map[int64][][]any)
	s.lru = s.lru[:0]
	breadcrumbs.RecordDatabase(fmt.Sprintf("count %s", s.rel.Name))
	return nil
}

// ToggleSort cycles the sort on column through ascending, descending and
// off. It reports the resulting sort, nil when off.
func (s *relationSource) ToggleSort(column string) (*dblib.SortColumn, error) {
	switch {
	case s.sort == nil || s.sort.Name != column:
		s.sort = &dblib.SortColumn{Name: column, Asc: true}
	case s.sort.Asc:
		s.sort.Asc = false
	default:
		s.sort = nil
	}
	return s.sort, s.Reload()
}

func (s *relationSource) reportError(err error) {
	s.log.Warn("data source error", "table", s.rel.Name, "err", err)
	if s.onError != nil {
		s.onError(err)
	}
}

// row returns the cached row, fetching its page on a miss.
func (s *relationSource) row(r int64) ([]any, bool) {
	if r < 0 || r >= s.rows {
		return nil, false
	}
	page := r / sourcePageSize
	rows, ok := s.pages[page]
	if !ok {
		var err error
		rows, err = s.rel.FetchRows(s.ctx, page*sourcePageSize, sourcePageSize, s.sort)
		if err != nil {
			s.reportError(err)
			return nil, false
		}
		s.store(page, rows)
	}
	i := r - page*sourcePageSize
	if i >= int64(len(rows)) {
		return nil, false
	}
	return rows[i], true
}

func (s *relationSource) store(page int64, rows [][]any) {
	if len(s.lru) >= sourceMaxPages {
		delete(s.pages, s.lru[0])
		s.lru = s.lru[1:]
	}
	s.pages[page] = rows
	s.lru = append(s.lru, page)
}

func (s *relationSource) column(colID int) (dblib.Column, bool) {
	i := colID - 1
	if i < 0 || i >= len(s.rel.Columns) {
		return dblib.Column{}, false
	}
	return s.rel.Columns[i], true
}

func (s *relationSource) value(row int64, colID int) (any, bool) {
	r, ok := s.row(row)
	if !ok || colID < 1 || colID > len(r) {
		return nil, false
	}
	return r[colID-1], true
}

func (s *relationSource) RowCount() int64 { return s.rows }

func (s *relationSource) CellDisplayValue(row int64, colID int) string {
	if colID == lineNumberColumnID {
		return strconv.FormatInt(row+1, 10)
	}
	v, ok := s.value(row, colID)
	if !ok {
		return ""
	}
	return dblib.FormatValue(v)
}

func (s *relationSource) IsCellEditable(row int64, colID int) grid.EditType {
	col, ok := s.column(colID)
	if !ok || !s.rel.ColumnEditable(colID-1) {
		return grid.NotEditable
	}
	switch col.Kind() {
	case dblib.KindBool, dblib.KindBinary:
		return grid.NotEditable
	case dblib.KindEnum:
		return editEnum
	case dblib.KindInteger:
		return editSpin
	}
	return editText
}

func (s *relationSource) FillControl(row int64, colID int, c grid.Control) {
	if col, ok := s.column(colID); ok {
		if oc, ok := c.(optionsControl); ok {
			oc.SetOptions(col.EnumValues)
		}
	}
	v, _ := s.value(row, colID)
	c.SetData(dblib.EditText(v))
}

func (s *relationSource) CommitControl(row int64, colID int, c grid.Control) bool {
	return s.update(row, colID, c.Data())
}

func (s *relationSource) update(row int64, colID int, text string) bool {
	col, ok := s.column(colID)
	r, found := s.row(row)
	if !ok || !found {
		return false
	}
	keys, err := s.rel.KeyValues(r)
	if err != nil {
		s.reportError(err)
		return false
	}
	updated, err := s.rel.UpdateValue(s.ctx, keys, col.Name, text)
	if err != nil {
		s.reportError(err)
		return false
	}
	breadcrumbs.RecordDatabase(fmt.Sprintf("update %s.%s", s.rel.Name, col.Name))
	copy(r, updated)
	if s.onCommitted != nil {
		s.onCommitted(row, col.Name)
	}
	return true
}

// CellButtonState reports whether a boolean cell is checked.
func (s *relationSource) CellButtonState(row int64, colID int) bool {
	v, ok := s.value(row, colID)
	if !ok {
		return false
	}
	checked, _ := dblib.ParseBool(dblib.FormatValue(v))
	return checked
}

// ToggleCheckBox flips a boolean cell. NULL becomes true.
func (s *relationSource) ToggleCheckBox(row int64, colID int) bool {
	if !s.rel.ColumnEditable(colID - 1) {
		return false
	}
	return s.update(row, colID, strconv.FormatBool(!s.CellButtonState(row, colID)))
}

// isURLColumn guesses from the name whether a text column holds links.
func isURLColumn(c dblib.Column) bool {
	if c.Kind() != dblib.KindText {
		return false
	}
	name := strings.ToLower(c.Name)
	for _, hint := range []string{"url", "link", "website", "homepage", "href"} {
		if strings.Contains(name, hint) {
			return true
		}
	}
	return false
}

// buildColumns lays out the grid columns for rel: a line-number column,
// then one column per relation column.
func buildColumns(rel *dblib.Relation, width int32, rows int64) []grid.Column {
	cols := make([]grid.Column, 0, len(rel.Columns)+1)
	cols = append(cols, grid.Column{
		ID:    lineNumberColumnID,
		Title: "#",
		Width: int32(len(strconv.FormatInt(max(rows, 1), 10))) + 2,
		Type:  grid.ColumnLineNumber,
	})
	for i, c := range rel.Columns {
		typ := grid.ColumnText
		switch {
		case c.Kind() == dblib.KindBool:
			typ = grid.ColumnCheckBox
		case isURLColumn(c):
			typ = grid.ColumnHyperlink
		}
		cols = append(cols, grid.Column{
			ID:           i + 1,
			Title:        c.Name,
			Width:        max(width, int32(len(c.Name))+4),
			Type:         typ,
			Resizable:    true,
			HeaderButton: true,
		})
	}
	return cols
}
