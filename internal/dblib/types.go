package dblib

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// NullGlyph is what a user types to store NULL.
const NullGlyph = "\\0"

// NullDisplay is how NULL cells are shown.
const NullDisplay = "null"

type DatabaseType int

const (
	SQLite DatabaseType = iota
	PostgreSQL
	MySQL
)

func (t DatabaseType) String() string {
	switch t {
	case SQLite:
		return "sqlite"
	case PostgreSQL:
		return "postgres"
	case MySQL:
		return "mysql"
	}
	return fmt.Sprintf("DatabaseType(%d)", int(t))
}

// DriverName is the database/sql driver registered for t.
func (t DatabaseType) DriverName() string {
	if t == SQLite {
		return "sqlite3"
	}
	return t.String()
}

// ParseDatabaseType accepts the names users type on the command line.
func ParseDatabaseType(s string) (DatabaseType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pg":
		return PostgreSQL, nil
	case "mysql":
		return MySQL, nil
	}
	return 0, fmt.Errorf("unsupported database type %q", s)
}

type databaseFeature struct {
	systemID  string
	returning bool
}

var databaseFeatures = map[DatabaseType]databaseFeature{
	SQLite:     {systemID: "rowid", returning: true},
	PostgreSQL: {systemID: "ctid", returning: true},
	MySQL:      {returning: false},
}

// ColumnKind is the editing behavior derived from a column's declared type.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindInteger
	KindReal
	KindBool
	KindEnum
	KindBinary
)

// Column describes one column of a relation.
type Column struct {
	Name           string
	Type           string
	Nullable       bool
	Generated      bool     // computed column, read-only
	EnumValues     []string // allowed values for ENUM types
	CustomTypeName string   // PostgreSQL user-defined type name
}

// Kind classifies the column by its declared type.
func (c Column) Kind() ColumnKind {
	if len(c.EnumValues) > 0 {
		return KindEnum
	}
	t := strings.ToLower(c.Type)
	switch {
	case strings.Contains(t, "bool"):
		return KindBool
	case strings.Contains(t, "int"):
		return KindInteger
	case strings.Contains(t, "real") || strings.Contains(t, "double") || strings.Contains(t, "float") ||
		strings.Contains(t, "numeric") || strings.Contains(t, "decimal"):
		return KindReal
	case strings.Contains(t, "blob") || strings.Contains(t, "bytea") || strings.Contains(t, "binary"):
		return KindBinary
	}
	return KindText
}

// Relation is a table, or a read-only SELECT, whose rows feed the grid.
type Relation struct {
	DB     *sql.DB
	DBType DatabaseType

	Name         string
	IsQuery      bool   // true for a custom SELECT, which is never editable
	SQLStatement string // the SELECT behind a query relation
	Columns      []Column
	ColumnIndex  map[string]int
	// Key names the lookup key columns. A system key (rowid, ctid) is not
	// among Columns and is fetched after them.
	Key []string

	dialect Dialect
	log     *slog.Logger
}

// SortColumn orders fetched rows.
type SortColumn struct {
	Name string
	Asc  bool
}

func (sc SortColumn) String() string {
	if sc.Asc {
		return sc.Name + " ASC"
	}
	return sc.Name + " DESC"
}
