package dblib

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"slices"
)

// Dialect isolates the catalog queries and SQL syntax that differ between
// databases.
//
// To add a database:
//  1. Add a DatabaseType constant and its databaseFeatures entry.
//  2. Implement Dialect in dialect_<name>.go.
//  3. Return it from NewDialect.
type Dialect interface {
	// LoadColumns returns the table's columns in ordinal order.
	LoadColumns(ctx context.Context, db *sql.DB, table string) ([]Column, error)
	// LoadKey returns the shortest unique lookup key, or nil if the table
	// has none.
	LoadKey(ctx context.Context, db *sql.DB, table string) ([]string, error)
	// LoadEnums fills EnumValues for enum-typed columns.
	LoadEnums(ctx context.Context, db *sql.DB, table string, columns []Column) error
	QuoteIdent(ident string) string
	// Placeholder returns the parameter marker for the 1-based position.
	Placeholder(position int) string
}

func NewDialect(dbType DatabaseType) (Dialect, error) {
	switch dbType {
	case SQLite:
		return sqliteDialect{}, nil
	case PostgreSQL:
		return postgresDialect{}, nil
	case MySQL:
		return mysqlDialect{}, nil
	}
	return nil, fmt.Errorf("unsupported database type: %v", dbType)
}

type keyCandidate struct {
	name    string
	cols    []string
	totalSz int
}

// shortestKey picks the unique index with the fewest columns, then the
// smallest estimated width, then the lowest name.
func shortestKey(candidates []keyCandidate) []string {
	if len(candidates) == 0 {
		return nil
	}
	slices.SortFunc(candidates, func(a, b keyCandidate) int {
		return cmp.Or(
			cmp.Compare(len(a.cols), len(b.cols)),
			cmp.Compare(a.totalSz, b.totalSz),
			cmp.Compare(a.name, b.name),
		)
	})
	return candidates[0].cols
}
