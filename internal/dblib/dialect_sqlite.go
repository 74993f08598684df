package dblib

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"slices"
)

type sqliteDialect struct{}

func (sqliteDialect) QuoteIdent(ident string) string { return quoteWith(ident, `"`) }

func (sqliteDialect) Placeholder(int) string { return "?" }

type sqliteColumnInfo struct {
	name    string
	typ     string
	notNull bool
	pk      int
	hidden  int
}

// tableInfo reads PRAGMA table_xinfo, which unlike table_info also lists
// generated columns.
func (d sqliteDialect) tableInfo(ctx context.Context, db *sql.DB, table string) ([]sqliteColumnInfo, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_xinfo(%s)", d.QuoteIdent(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []sqliteColumnInfo
	for rows.Next() {
		var (
			info    sqliteColumnInfo
			cid     int
			notNull int
			dflt    sql.NullString
		)
		if err := rows.Scan(&cid, &info.name, &info.typ, &notNull, &dflt, &info.pk, &info.hidden); err != nil {
			return nil, err
		}
		info.notNull = notNull == 1
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}
	return infos, nil
}

func (d sqliteDialect) LoadColumns(ctx context.Context, db *sql.DB, table string) ([]Column, error) {
	infos, err := d.tableInfo(ctx, db, table)
	if err != nil {
		return nil, err
	}
	columns := make([]Column, 0, len(infos))
	for _, info := range infos {
		// hidden 1 marks virtual-table columns; 2 and 3 are generated.
		if info.hidden == 1 {
			continue
		}
		columns = append(columns, Column{
			Name:      info.name,
			Type:      info.typ,
			Nullable:  !info.notNull,
			Generated: info.hidden >= 2,
		})
	}
	return columns, nil
}

func (d sqliteDialect) LoadKey(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	infos, err := d.tableInfo(ctx, db, table)
	if err != nil {
		return nil, err
	}
	notNull := map[string]bool{}
	colType := map[string]string{}
	var pk []sqliteColumnInfo
	for _, info := range infos {
		notNull[info.name] = info.notNull
		colType[info.name] = info.typ
		if info.pk > 0 {
			pk = append(pk, info)
		}
	}
	if len(pk) > 0 {
		slices.SortFunc(pk, func(a, b sqliteColumnInfo) int { return cmp.Compare(a.pk, b.pk) })
		cols := make([]string, len(pk))
		for i, info := range pk {
			cols[i] = info.name
		}
		return cols, nil
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%s)", d.QuoteIdent(table)))
	if err != nil {
		return nil, err
	}
	type index struct{ name string }
	var unique []index
	for rows.Next() {
		var (
			seq, isUnique, partial int
			name, origin           string
		)
		if err := rows.Scan(&seq, &name, &isUnique, &origin, &partial); err != nil {
			rows.Close()
			return nil, err
		}
		if isUnique == 1 && origin != "pk" && partial == 0 {
			unique = append(unique, index{name})
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var candidates []keyCandidate
	for _, idx := range unique {
		cols, err := d.indexColumns(ctx, db, idx.name)
		if err != nil {
			return nil, err
		}
		// UNIQUE allows repeated NULLs, so only NOT NULL columns identify a row.
		total, valid := 0, len(cols) > 0
		for _, c := range cols {
			if !notNull[c] {
				valid = false
				break
			}
			total += sizeOf(colType[c], -1)
		}
		if valid {
			candidates = append(candidates, keyCandidate{name: idx.name, cols: cols, totalSz: total})
		}
	}
	return shortestKey(candidates), nil
}

func (d sqliteDialect) indexColumns(ctx context.Context, db *sql.DB, index string) ([]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%s)", d.QuoteIdent(index)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	type entry struct {
		seq  int
		name sql.NullString
	}
	var entries []entry
	for rows.Next() {
		var e entry
		var cid int
		if err := rows.Scan(&e.seq, &cid, &e.name); err != nil {
			return nil, err
		}
		// Expression indexes report a NULL name.
		if !e.name.Valid {
			return nil, nil
		}
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b entry) int { return cmp.Compare(a.seq, b.seq) })
	cols := make([]string, len(entries))
	for i, e := range entries {
		cols[i] = e.name.String
	}
	return cols, rows.Err()
}

// LoadEnums is a no-op: SQLite has no enum types.
func (sqliteDialect) LoadEnums(context.Context, *sql.DB, string, []Column) error { return nil }
