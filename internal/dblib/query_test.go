package dblib

import (
	"errors"
	"slices"
	"testing"
)

func TestParseSelect(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		fields []string
		tables []string
		check  func(*SelectInfo) bool
	}{
		{
			name:   "aliases and aggregates",
			sql:    "SELECT id, name AS n, COUNT(*) FROM users GROUP BY id",
			fields: []string{"id", "n", "count"},
			tables: []string{"users"},
			check:  func(s *SelectInfo) bool { return s.Grouped && !s.Distinct && !s.Limited },
		},
		{
			name:   "join",
			sql:    "SELECT DISTINCT u.* FROM users u JOIN orders o ON o.user_id = u.id LIMIT 5",
			fields: []string{"u.*"},
			tables: []string{"users", "orders"},
			check:  func(s *SelectInfo) bool { return s.Distinct && s.Limited },
		},
		{
			name:   "derived table",
			sql:    "SELECT * FROM (SELECT id FROM users) AS t;",
			fields: []string{"*"},
			tables: []string{"users"},
		},
		{
			name:   "no from",
			sql:    "SELECT 1 AS one",
			fields: []string{"one"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ParseSelect(tt.sql)
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(info.Fields, tt.fields) {
				t.Errorf("fields = %v, want %v", info.Fields, tt.fields)
			}
			if !slices.Equal(info.Tables, tt.tables) {
				t.Errorf("tables = %v, want %v", info.Tables, tt.tables)
			}
			if tt.check != nil && !tt.check(info) {
				t.Errorf("info = %+v", info)
			}
		})
	}
}

func TestParseSelectErrors(t *testing.T) {
	if _, err := ParseSelect("UPDATE users SET age = 1"); !errors.Is(err, ErrNotSelect) {
		t.Errorf("update error = %v, want ErrNotSelect", err)
	}
	_, err := ParseSelect("SELEC name FROM users")
	if err == nil || errors.Is(err, ErrNotSelect) {
		t.Errorf("syntax error = %v, want a parse error", err)
	}
}
