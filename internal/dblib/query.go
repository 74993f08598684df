package dblib

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pingcap/tidb/parser"
	"github.com/pingcap/tidb/parser/ast"
	_ "github.com/pingcap/tidb/parser/test_driver"
)

// ErrNotSelect is returned for statements other than a single SELECT.
var ErrNotSelect = errors.New("only a single SELECT statement can be browsed")

// SelectInfo summarizes a parsed SELECT.
type SelectInfo struct {
	// Fields holds one label per select-list item; "*" for wildcards.
	Fields []string
	// Tables lists the base tables in the FROM clause.
	Tables   []string
	Distinct bool
	Grouped  bool
	Limited  bool
}

// ParseSelect validates that sqlStr is exactly one SELECT and describes it.
func ParseSelect(sqlStr string) (*SelectInfo, error) {
	p := parser.New()
	stmtNodes, _, err := p.Parse(strings.TrimRight(strings.TrimSpace(sqlStr), ";"), "", "")
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if len(stmtNodes) != 1 {
		return nil, ErrNotSelect
	}
	stmt, ok := stmtNodes[0].(*ast.SelectStmt)
	if !ok {
		return nil, ErrNotSelect
	}

	info := &SelectInfo{
		Distinct: stmt.Distinct,
		Grouped:  stmt.GroupBy != nil,
		Limited:  stmt.Limit != nil,
	}
	if stmt.Fields != nil {
		for _, f := range stmt.Fields.Fields {
			info.Fields = append(info.Fields, fieldLabel(f))
		}
	}
	if stmt.From != nil && stmt.From.TableRefs != nil {
		info.Tables = collectTables(stmt.From.TableRefs, info.Tables)
	}
	return info, nil
}

func fieldLabel(f *ast.SelectField) string {
	if f.WildCard != nil {
		if t := f.WildCard.Table.String(); t != "" {
			return t + ".*"
		}
		return "*"
	}
	if f.AsName.String() != "" {
		return f.AsName.String()
	}
	switch e := f.Expr.(type) {
	case *ast.ColumnNameExpr:
		return e.Name.Name.String()
	case *ast.AggregateFuncExpr:
		return strings.ToLower(e.F)
	case *ast.FuncCallExpr:
		return e.FnName.L
	}
	return f.Text()
}

func collectTables(node ast.ResultSetNode, tables []string) []string {
	switch ref := node.(type) {
	case *ast.Join:
		tables = collectTables(ref.Left, tables)
		if ref.Right != nil {
			tables = collectTables(ref.Right, tables)
		}
	case *ast.TableSource:
		switch src := ref.Source.(type) {
		case *ast.TableName:
			tables = append(tables, src.Name.String())
		case *ast.Join:
			tables = collectTables(src, tables)
		case *ast.SelectStmt:
			if src.From != nil && src.From.TableRefs != nil {
				tables = collectTables(src.From.TableRefs, tables)
			}
		}
	case *ast.TableName:
		tables = append(tables, ref.Name.String())
	}
	return tables
}

// NewQueryRelation wraps a SELECT as a read-only relation. Columns come
// from the driver's result metadata, so expressions and joins are covered.
func NewQueryRelation(ctx context.Context, db *sql.DB, dbType DatabaseType, stmt string, opts ...Option) (*Relation, error) {
	if db == nil {
		return nil, errors.New("database connection is nil")
	}
	stmt = strings.TrimRight(strings.TrimSpace(stmt), ";")
	info, err := ParseSelect(stmt)
	if err != nil {
		// The parser speaks MySQL; other dialects may still run the query.
		if errors.Is(err, ErrNotSelect) || !strings.HasPrefix(strings.ToUpper(stmt), "SELECT") {
			return nil, err
		}
		info = &SelectInfo{}
	}
	rel, err := newRelation(db, dbType, opts)
	if err != nil {
		return nil, err
	}
	rel.IsQuery = true
	rel.SQLStatement = stmt
	rel.Name = "query"
	if len(info.Tables) == 1 {
		rel.Name = info.Tables[0]
	}

	rows, err := db.QueryContext(ctx, "SELECT * FROM ("+stmt+") AS q LIMIT 0")
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}
	defer rows.Close()
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	for _, ct := range types {
		nullable, ok := ct.Nullable()
		rel.Columns = append(rel.Columns, Column{
			Name:     ct.Name(),
			Type:     ct.DatabaseTypeName(),
			Nullable: nullable || !ok,
		})
	}
	rel.indexColumns()
	rel.log.Debug("query relation loaded", "columns", len(rel.Columns), "tables", info.Tables)
	return rel, rows.Err()
}
