package dblib

import (
	"strconv"
	"strings"
)

// quoteWith leaves obviously safe identifiers bare and otherwise wraps them
// in q, doubling any embedded q.
func quoteWith(ident, q string) string {
	if isSafeUnquotedIdent(ident) {
		return ident
	}
	return q + strings.ReplaceAll(ident, q, q+q) + q
}

// quoteQualified quotes each dot-separated part of a schema-qualified name.
func quoteQualified(d Dialect, qualified string) string {
	parts := strings.Split(qualified, ".")
	for i, p := range parts {
		parts[i] = d.QuoteIdent(p)
	}
	return strings.Join(parts, ".")
}

// isSafeUnquotedIdent reports whether ident matches [a-z_][a-z0-9_]* and is
// not a common reserved word.
func isSafeUnquotedIdent(ident string) bool {
	if ident == "" {
		return false
	}
	c0 := ident[0]
	if !((c0 >= 'a' && c0 <= 'z') || c0 == '_') {
		return false
	}
	for i := 1; i < len(ident); i++ {
		c := ident[i]
		if !((c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_') {
			return false
		}
	}
	_, reserved := commonReservedIdents[ident]
	return !reserved
}

var commonReservedIdents = map[string]struct{}{
	"select": {}, "insert": {}, "update": {}, "delete": {}, "into": {}, "values": {},
	"create": {}, "alter": {}, "drop": {}, "table": {}, "index": {}, "view": {},
	"from": {}, "where": {}, "group": {}, "order": {}, "by": {}, "having": {},
	"limit": {}, "offset": {}, "join": {}, "inner": {}, "left": {}, "right": {}, "full": {}, "outer": {},
	"and": {}, "or": {}, "not": {}, "in": {}, "is": {}, "like": {}, "between": {}, "exists": {},
	"null": {}, "true": {}, "false": {},
	"as": {}, "on": {}, "user": {}, "key": {},
}

// splitSchema separates "schema.table", defaulting the schema to def.
func splitSchema(name, def string) (schema, rel string) {
	if dot := strings.IndexByte(name, '.'); dot != -1 {
		return name[:dot], name[dot+1:]
	}
	return def, name
}

// sizeOf estimates the byte width of a column type for key ranking.
func sizeOf(typ string, charLen int) int {
	t := strings.ToLower(strings.TrimSpace(typ))
	if charLen <= 0 {
		if i := strings.Index(t, "("); i != -1 {
			if j := strings.Index(t[i+1:], ")"); j != -1 {
				if n, err := strconv.Atoi(strings.TrimSpace(t[i+1 : i+1+j])); err == nil {
					charLen = n
				}
			}
		}
	}
	switch {
	case strings.Contains(t, "tinyint"):
		return 1
	case strings.Contains(t, "smallint"):
		return 2
	case strings.Contains(t, "bigint"):
		return 8
	case t == "int" || strings.Contains(t, "integer"):
		return 4
	case strings.Contains(t, "real") || strings.Contains(t, "double") || strings.Contains(t, "float"):
		return 8
	case strings.Contains(t, "bool"):
		return 1
	case strings.Contains(t, "uuid"):
		return 16
	case strings.Contains(t, "date") || strings.Contains(t, "time"):
		return 8
	case strings.Contains(t, "char") || strings.Contains(t, "text") || strings.Contains(t, "clob"):
		if charLen > 0 {
			return charLen
		}
		return 1024 * 1024
	case strings.Contains(t, "decimal") || strings.Contains(t, "numeric"):
		return 16
	case strings.Contains(t, "bytea") || strings.Contains(t, "blob") || strings.Contains(t, "binary"):
		return 1024 * 1024
	}
	return 8
}
