package dblib

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
)

// ErrReadOnly is returned when writing to a relation without a lookup key.
var ErrReadOnly = errors.New("relation is read-only")

// Option configures a Relation.
type Option func(*Relation)

func WithLogger(l *slog.Logger) Option {
	return func(rel *Relation) {
		if l != nil {
			rel.log = l
		}
	}
}

func newRelation(db *sql.DB, dbType DatabaseType, opts []Option) (*Relation, error) {
	dialect, err := NewDialect(dbType)
	if err != nil {
		return nil, err
	}
	rel := &Relation{
		DB:      db,
		DBType:  dbType,
		dialect: dialect,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(rel)
	}
	return rel, nil
}

// NewRelation loads a table's columns, enum labels and lookup key. Tables
// without a unique key fall back to the database's row identifier, and are
// read-only where there is none.
func NewRelation(ctx context.Context, db *sql.DB, dbType DatabaseType, tableName string, opts ...Option) (*Relation, error) {
	if db == nil {
		return nil, errors.New("database connection is nil")
	}
	rel, err := newRelation(db, dbType, opts)
	if err != nil {
		return nil, err
	}
	rel.Name = tableName

	rel.Columns, err = rel.dialect.LoadColumns(ctx, db, tableName)
	if err != nil {
		return nil, fmt.Errorf("load columns of %s: %w", tableName, err)
	}
	if err := rel.dialect.LoadEnums(ctx, db, tableName, rel.Columns); err != nil {
		rel.log.Warn("enum lookup failed", "table", tableName, "err", err)
	}
	rel.indexColumns()

	rel.Key, err = rel.dialect.LoadKey(ctx, db, tableName)
	if err != nil {
		return nil, fmt.Errorf("load key of %s: %w", tableName, err)
	}
	if len(rel.Key) == 0 {
		if id := databaseFeatures[dbType].systemID; id != "" {
			rel.Key = []string{id}
		} else {
			rel.log.Warn("no lookup key, relation is read-only", "table", tableName)
		}
	}
	rel.log.Debug("relation loaded", "table", tableName, "columns", len(rel.Columns), "key", rel.Key)
	return rel, nil
}

func (rel *Relation) indexColumns() {
	rel.ColumnIndex = make(map[string]int, len(rel.Columns))
	for i, c := range rel.Columns {
		rel.ColumnIndex[c.Name] = i
	}
}

// Editable reports whether rows can be updated at all.
func (rel *Relation) Editable() bool {
	return !rel.IsQuery && len(rel.Key) > 0
}

func (rel *Relation) IsKeyColumn(name string) bool {
	return slices.Contains(rel.Key, name)
}

// ColumnEditable reports whether the column at index i accepts edits. Key
// and generated columns never do.
func (rel *Relation) ColumnEditable(i int) bool {
	if !rel.Editable() || i < 0 || i >= len(rel.Columns) {
		return false
	}
	c := rel.Columns[i]
	return !c.Generated && !rel.IsKeyColumn(c.Name)
}

// systemKey reports whether the key is a hidden row identifier that has to
// be selected after the visible columns.
func (rel *Relation) systemKey() bool {
	if len(rel.Key) != 1 {
		return false
	}
	_, visible := rel.ColumnIndex[rel.Key[0]]
	return !visible
}

// selectList is the column list FetchRows and UpdateValue return.
func (rel *Relation) selectList() string {
	cols := make([]string, 0, len(rel.Columns)+1)
	for _, c := range rel.Columns {
		cols = append(cols, rel.dialect.QuoteIdent(c.Name))
	}
	if rel.systemKey() {
		cols = append(cols, rel.Key[0])
	}
	return strings.Join(cols, ", ")
}

// source is what follows FROM.
func (rel *Relation) source() string {
	if rel.IsQuery {
		return "(" + rel.SQLStatement + ") AS q"
	}
	return quoteQualified(rel.dialect, rel.Name)
}

func (rel *Relation) CountRows(ctx context.Context) (int64, error) {
	var n int64
	if err := rel.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+rel.source()).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}

// FetchRows reads limit rows starting at offset, ordered by sort and then
// by the lookup key so that pages are stable.
func (rel *Relation) FetchRows(ctx context.Context, offset, limit int64, sort *SortColumn) ([][]any, error) {
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("invalid page offset=%d limit=%d", offset, limit)
	}
	var order []string
	if sort != nil {
		if _, ok := rel.ColumnIndex[sort.Name]; !ok {
			return nil, fmt.Errorf("unknown sort column %q", sort.Name)
		}
		order = append(order, SortColumn{Name: rel.dialect.QuoteIdent(sort.Name), Asc: sort.Asc}.String())
	}
	for _, k := range rel.Key {
		if sort != nil && k == sort.Name {
			continue
		}
		if rel.systemKey() {
			order = append(order, k)
		} else {
			order = append(order, rel.dialect.QuoteIdent(k))
		}
	}

	cols := rel.selectList()
	if rel.IsQuery {
		cols = "*"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", cols, rel.source())
	if len(order) > 0 {
		b.WriteString(" ORDER BY " + strings.Join(order, ", "))
	}
	fmt.Fprintf(&b, " LIMIT %d OFFSET %d", limit, offset)
	query := b.String()
	rel.log.Debug("fetch rows", "query", query)

	rows, err := rel.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch rows: %w", err)
	}
	defer rows.Close()
	n, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out [][]any
	for rows.Next() {
		vals, err := rel.scanRow(rows, len(n))
		if err != nil {
			return nil, err
		}
		out = append(out, vals)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (rel *Relation) scanRow(r rowScanner, n int) ([]any, error) {
	vals := make([]any, n)
	ptrs := make([]any, n)
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := r.Scan(ptrs...); err != nil {
		return nil, err
	}
	for i, v := range vals {
		b, ok := v.([]byte)
		if ok && (i >= len(rel.Columns) || rel.Columns[i].Kind() != KindBinary) {
			vals[i] = string(b)
		}
	}
	return vals, nil
}

// KeyValues extracts the lookup key from a row returned by FetchRows.
func (rel *Relation) KeyValues(row []any) ([]any, error) {
	if len(rel.Key) == 0 {
		return nil, ErrReadOnly
	}
	if rel.systemKey() {
		if len(row) <= len(rel.Columns) {
			return nil, fmt.Errorf("row has no %s", rel.Key[0])
		}
		return []any{row[len(rel.Columns)]}, nil
	}
	keys := make([]any, len(rel.Key))
	for i, k := range rel.Key {
		idx, ok := rel.ColumnIndex[k]
		if !ok || idx >= len(row) {
			return nil, fmt.Errorf("key column %s not loaded", k)
		}
		keys[i] = row[idx]
	}
	return keys, nil
}

// UpdateValue writes value to colName in the row identified by keys and
// returns the row as stored, in FetchRows column order.
func (rel *Relation) UpdateValue(ctx context.Context, keys []any, colName, value string) ([]any, error) {
	if !rel.Editable() {
		return nil, ErrReadOnly
	}
	if len(keys) != len(rel.Key) {
		return nil, fmt.Errorf("got %d key values for %d key columns", len(keys), len(rel.Key))
	}
	idx, ok := rel.ColumnIndex[colName]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", colName)
	}
	if !rel.ColumnEditable(idx) {
		return nil, fmt.Errorf("column %s is read-only", colName)
	}

	whereParts := make([]string, len(rel.Key))
	for i, k := range rel.Key {
		name := k
		if !rel.systemKey() {
			name = rel.dialect.QuoteIdent(k)
		}
		whereParts[i] = fmt.Sprintf("%s = %s", name, rel.dialect.Placeholder(i+2))
	}
	where := strings.Join(whereParts, " AND ")
	set := fmt.Sprintf("%s = %s", rel.dialect.QuoteIdent(colName), rel.dialect.Placeholder(1))
	args := append([]any{toDBValue(rel.Columns[idx], value)}, keys...)
	table := rel.source()
	n := len(rel.Columns)
	if rel.systemKey() {
		n++
	}

	if databaseFeatures[rel.DBType].returning {
		query := fmt.Sprintf("UPDATE %s SET %s WHERE %s RETURNING %s", table, set, where, rel.selectList())
		rel.log.Debug("update", "query", query)
		row, err := rel.scanRow(rel.DB.QueryRowContext(ctx, query, args...), n)
		if err != nil {
			return nil, fmt.Errorf("update failed: %w", err)
		}
		return row, nil
	}

	// Without RETURNING, update and re-select inside one transaction.
	tx, err := rel.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx failed: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, set, where)
	rel.log.Debug("update", "query", query)
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update failed: %w", err)
	}
	if ra, _ := res.RowsAffected(); ra == 0 {
		// MySQL reports 0 when the value is unchanged; the re-select below
		// tells that apart from a missing row.
		rel.log.Debug("update changed no rows", "table", rel.Name)
	}
	sel := fmt.Sprintf("SELECT %s FROM %s WHERE %s", rel.selectList(), table, where)
	row, err := rel.scanRow(tx.QueryRowContext(ctx, sel, keys...), n)
	if err != nil {
		return nil, fmt.Errorf("reselect failed: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit failed: %w", err)
	}
	return row, nil
}
