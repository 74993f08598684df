package dblib

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type mysqlDialect struct{}

func (mysqlDialect) QuoteIdent(ident string) string { return quoteWith(ident, "`") }

func (mysqlDialect) Placeholder(int) string { return "?" }

func (mysqlDialect) LoadColumns(ctx context.Context, db *sql.DB, table string) ([]Column, error) {
	rows, err := db.QueryContext(ctx, `SELECT column_name, data_type, is_nullable, extra
		FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ?
		ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var col Column
		var nullable, extra string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &extra); err != nil {
			return nil, err
		}
		col.Nullable = strings.EqualFold(nullable, "yes")
		col.Generated = strings.Contains(strings.ToUpper(extra), "GENERATED")
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}
	return columns, nil
}

func (mysqlDialect) LoadKey(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	pkRows, err := db.QueryContext(ctx, `SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = DATABASE() AND table_name = ? AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, err
	}
	var pk []string
	for pkRows.Next() {
		var c string
		if err := pkRows.Scan(&c); err != nil {
			pkRows.Close()
			return nil, err
		}
		pk = append(pk, c)
	}
	pkRows.Close()
	if len(pk) > 0 {
		return pk, nil
	}

	colType := map[string]string{}
	colLen := map[string]int{}
	notNull := map[string]bool{}
	ctRows, err := db.QueryContext(ctx, `SELECT column_name, data_type, COALESCE(character_maximum_length, -1), is_nullable
		FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ?`, table)
	if err != nil {
		return nil, err
	}
	for ctRows.Next() {
		var name, typ, nullable string
		var n int
		if err := ctRows.Scan(&name, &typ, &n, &nullable); err != nil {
			ctRows.Close()
			return nil, err
		}
		colType[name], colLen[name] = typ, n
		notNull[name] = strings.EqualFold(nullable, "no")
	}
	ctRows.Close()

	rows, err := db.QueryContext(ctx, `SELECT index_name, column_name
		FROM information_schema.statistics
		WHERE table_schema = DATABASE() AND table_name = ? AND non_unique = 0 AND index_name != 'PRIMARY'
		ORDER BY index_name, seq_in_index`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var order []string
	idxCols := map[string][]string{}
	for rows.Next() {
		var idx, col string
		if err := rows.Scan(&idx, &col); err != nil {
			return nil, err
		}
		if _, seen := idxCols[idx]; !seen {
			order = append(order, idx)
		}
		idxCols[idx] = append(idxCols[idx], col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var candidates []keyCandidate
	for _, name := range order {
		cols := idxCols[name]
		total, valid := 0, true
		for _, c := range cols {
			if !notNull[c] {
				valid = false
				break
			}
			total += sizeOf(colType[c], colLen[c])
		}
		if valid {
			candidates = append(candidates, keyCandidate{name: name, cols: cols, totalSz: total})
		}
	}
	return shortestKey(candidates), nil
}

func (mysqlDialect) LoadEnums(ctx context.Context, db *sql.DB, table string, columns []Column) error {
	rows, err := db.QueryContext(ctx, `SELECT column_name, column_type
		FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ? AND data_type = 'enum'`, table)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, colType string
		if err := rows.Scan(&name, &colType); err != nil {
			return err
		}
		for i := range columns {
			if columns[i].Name == name {
				columns[i].EnumValues = parseEnumValues(colType)
				break
			}
		}
	}
	return rows.Err()
}

// parseEnumValues extracts the labels from a column_type such as
// "enum('active','inactive')". Quotes inside labels arrive doubled.
func parseEnumValues(colType string) []string {
	if !strings.HasPrefix(colType, "enum(") || !strings.HasSuffix(colType, ")") {
		return nil
	}
	inner := colType[len("enum(") : len(colType)-1]

	var values []string
	var current strings.Builder
	inQuote := false
	for i := 0; i < len(inner); i++ {
		ch := inner[i]
		switch {
		case ch == '\\' && inQuote && i+1 < len(inner):
			i++
			current.WriteByte(inner[i])
		case ch == '\'' && inQuote && i+1 < len(inner) && inner[i+1] == '\'':
			i++
			current.WriteByte('\'')
		case ch == '\'':
			if inQuote {
				values = append(values, current.String())
				current.Reset()
			}
			inQuote = !inQuote
		case inQuote:
			current.WriteByte(ch)
		}
	}
	return values
}
