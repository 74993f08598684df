package dblib

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

type postgresDialect struct{}

func (postgresDialect) QuoteIdent(ident string) string { return quoteWith(ident, `"`) }

func (postgresDialect) Placeholder(position int) string { return fmt.Sprintf("$%d", position) }

func (postgresDialect) LoadColumns(ctx context.Context, db *sql.DB, table string) ([]Column, error) {
	schema, rel := splitSchema(table, "public")
	rows, err := db.QueryContext(ctx, `SELECT column_name, data_type, udt_name, is_nullable,
			is_generated = 'ALWAYS' OR COALESCE(identity_generation, '') = 'ALWAYS'
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`, schema, rel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var col Column
		var udt, nullable string
		if err := rows.Scan(&col.Name, &col.Type, &udt, &nullable, &col.Generated); err != nil {
			return nil, err
		}
		col.Nullable = strings.EqualFold(nullable, "yes")
		if col.Type == "USER-DEFINED" {
			col.CustomTypeName = udt
		}
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

func (postgresDialect) LoadKey(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	schema, rel := splitSchema(table, "public")

	var pk []string
	err := db.QueryRowContext(ctx, `SELECT COALESCE(array_agg(a.attname ORDER BY k.ord), '{}')
		FROM pg_index i
		JOIN pg_class c ON c.oid = i.indrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		JOIN LATERAL unnest(i.indkey) WITH ORDINALITY AS k(attnum, ord) ON TRUE
		JOIN pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = k.attnum
		WHERE n.nspname = $1 AND c.relname = $2 AND i.indisprimary`, schema, rel).Scan(pq.Array(&pk))
	if err != nil {
		return nil, err
	}
	if len(pk) > 0 {
		return pk, nil
	}

	colType := map[string]string{}
	colLen := map[string]int{}
	ctRows, err := db.QueryContext(ctx, `SELECT column_name, data_type, COALESCE(character_maximum_length, -1)
		FROM information_schema.columns WHERE table_schema = $1 AND table_name = $2`, schema, rel)
	if err != nil {
		return nil, err
	}
	for ctRows.Next() {
		var name, typ string
		var n int
		if err := ctRows.Scan(&name, &typ, &n); err != nil {
			ctRows.Close()
			return nil, err
		}
		colType[name], colLen[name] = typ, n
	}
	ctRows.Close()

	// Unique indexes whose columns are all NOT NULL.
	rows, err := db.QueryContext(ctx, `SELECT ic.relname, array_agg(a.attname ORDER BY k.ord)
		FROM pg_index idx
		JOIN pg_class c ON c.oid = idx.indrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		JOIN pg_class ic ON ic.oid = idx.indexrelid
		JOIN LATERAL unnest(idx.indkey) WITH ORDINALITY AS k(attnum, ord) ON TRUE
		JOIN pg_attribute a ON a.attrelid = idx.indrelid AND a.attnum = k.attnum
		WHERE n.nspname = $1 AND c.relname = $2
			AND idx.indisunique AND NOT idx.indisprimary AND idx.indpred IS NULL
		GROUP BY ic.relname
		HAVING bool_and(a.attnotnull)`, schema, rel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var candidates []keyCandidate
	for rows.Next() {
		var cand keyCandidate
		if err := rows.Scan(&cand.name, pq.Array(&cand.cols)); err != nil {
			return nil, err
		}
		for _, c := range cand.cols {
			cand.totalSz += sizeOf(colType[c], colLen[c])
		}
		candidates = append(candidates, cand)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return shortestKey(candidates), nil
}

func (postgresDialect) LoadEnums(ctx context.Context, db *sql.DB, table string, columns []Column) error {
	for i := range columns {
		if columns[i].CustomTypeName == "" {
			continue
		}
		var values []string
		err := db.QueryRowContext(ctx, `SELECT COALESCE(array_agg(e.enumlabel ORDER BY e.enumsortorder), '{}')
			FROM pg_type t
			JOIN pg_enum e ON t.oid = e.enumtypid
			WHERE t.typname = $1`, columns[i].CustomTypeName).Scan(pq.Array(&values))
		if err != nil {
			return fmt.Errorf("load enum %s: %w", columns[i].CustomTypeName, err)
		}
		if len(values) > 0 {
			columns[i].EnumValues = values
		}
	}
	return nil
}
