package main

import (
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"vgrid/internal/dblib"
)

func sendKeys(t *testing.T, p tablePicker, msgs ...tea.Msg) (tablePicker, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var m tea.Model
		m, cmd = p.Update(msg)
		p = m.(tablePicker)
	}
	return p, cmd
}

func TestTablePickerFilter(t *testing.T) {
	p := newTablePicker("app.db", dblib.SQLite, []string{"orders", "test_users", "users", " "})
	if !slices.Equal(p.filtered, []string{"orders", "test_users", "users"}) {
		t.Fatalf("initial list = %v", p.filtered)
	}

	p, _ = sendKeys(t, p, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("us")})
	if !slices.Equal(p.filtered, []string{"users", "test_users"}) {
		t.Errorf("filtered = %v, want prefix matches first", p.filtered)
	}
	if len(p.positions) != len(p.filtered) {
		t.Errorf("%d position lists for %d tables", len(p.positions), len(p.filtered))
	}
}

func TestTablePickerChoose(t *testing.T) {
	tests := []struct {
		name      string
		keys      []tea.Msg
		choice    string
		cancelled bool
	}{
		{"first", []tea.Msg{tea.KeyMsg{Type: tea.KeyEnter}}, "orders", false},
		{"down", []tea.Msg{tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter}}, "users", false},
		{"clamped", []tea.Msg{
			tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown},
			tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyEnter},
		}, "users", false},
		{"escape", []tea.Msg{tea.KeyMsg{Type: tea.KeyEsc}}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTablePicker("app.db", dblib.SQLite, []string{"orders", "users", "zones"})
			p, cmd := sendKeys(t, p, tt.keys...)
			if p.choice != tt.choice || p.cancelled != tt.cancelled {
				t.Errorf("choice = %q, cancelled = %v; want %q, %v", p.choice, p.cancelled, tt.choice, tt.cancelled)
			}
			if cmd == nil {
				t.Error("picker did not quit")
			}
		})
	}
}

func TestTablePickerEnterWithoutMatches(t *testing.T) {
	p := newTablePicker("app.db", dblib.SQLite, []string{"orders"})
	p, cmd := sendKeys(t, p, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("zzz")}, tea.KeyMsg{Type: tea.KeyEnter})
	if p.choice != "" || cmd != nil {
		t.Errorf("choice = %q with no matches", p.choice)
	}
	if view := p.View(); !strings.Contains(view, "No matching tables") {
		t.Errorf("view = %q", view)
	}
}

func TestTablePickerView(t *testing.T) {
	p := newTablePicker("shop", dblib.PostgreSQL, []string{"a", "b", "c", "d"})
	p, _ = sendKeys(t, p, tea.WindowSizeMsg{Width: 80, Height: 7})
	view := p.View()
	if !strings.Contains(view, "shop") {
		t.Errorf("view lacks the database name: %q", view)
	}
	if !strings.Contains(view, "2 more") {
		t.Errorf("view does not report hidden tables: %q", view)
	}
}

func TestPickTableEmpty(t *testing.T) {
	if _, err := pickTable("app.db", dblib.SQLite, nil); err == nil {
		t.Error("pickTable accepted an empty table list")
	}
}
