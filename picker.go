package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vgrid/internal/dblib"
)

var (
	pickerTitleStyle    = lipgloss.NewStyle().Bold(true)
	pickerDimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	pickerMatchStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	pickerSelectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("4")).Foreground(lipgloss.Color("15"))
)

// tablePicker is the bubbletea model shown before the grid when no table
// was given on the command line.
type tablePicker struct {
	database    string
	icon        string
	tables      []string
	filtered    []string
	positions   [][]int
	filterInput textinput.Model
	selectedIdx int
	maxVisible  int

	choice    string
	cancelled bool
}

func newTablePicker(database string, dbType dblib.DatabaseType, tables []string) tablePicker {
	ti := textinput.New()
	ti.Placeholder = "Type to filter tables..."
	ti.Prompt = "› "
	ti.Width = 40
	ti.Focus()

	p := tablePicker{
		database:    database,
		icon:        databaseIcons[dbType],
		tables:      cleanNames(tables),
		filterInput: ti,
		maxVisible:  12,
	}
	p.applyFilter()
	return p
}

func (p tablePicker) Init() tea.Cmd {
	return textinput.Blink
}

func (p tablePicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.maxVisible = max(msg.Height-5, 1)
		return p, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			p.cancelled = true
			return p, tea.Quit
		case "enter":
			if p.selectedIdx < len(p.filtered) {
				p.choice = p.filtered[p.selectedIdx]
				return p, tea.Quit
			}
			return p, nil
		case "up", "shift+tab":
			if p.selectedIdx > 0 {
				p.selectedIdx--
			}
			return p, nil
		case "down", "tab":
			if p.selectedIdx < len(p.filtered)-1 {
				p.selectedIdx++
			}
			return p, nil
		}
	}

	var cmd tea.Cmd
	p.filterInput, cmd = p.filterInput.Update(msg)
	p.applyFilter()
	return p, cmd
}

// applyFilter refilters the tables from the input, keeping the selection in
// range.
func (p *tablePicker) applyFilter() {
	p.filtered, p.positions = filterItems(p.tables, p.filterInput.Value())
	p.selectedIdx = min(p.selectedIdx, max(len(p.filtered)-1, 0))
}

func (p tablePicker) View() string {
	var sb strings.Builder
	sb.WriteString(pickerTitleStyle.Render(fmt.Sprintf("%s %s", p.icon, p.database)))
	sb.WriteString("  ")
	sb.WriteString(pickerDimStyle.Render("Enter to open · Esc to quit"))
	sb.WriteString("\n\n")
	sb.WriteString(p.filterInput.View())
	sb.WriteString("\n")

	if len(p.filtered) == 0 {
		sb.WriteString(pickerDimStyle.Render("  No matching tables"))
		return sb.String()
	}

	start := 0
	if p.selectedIdx >= p.maxVisible {
		start = p.selectedIdx - p.maxVisible + 1
	}
	end := min(start+p.maxVisible, len(p.filtered))
	for i := start; i < end; i++ {
		line := renderMatch(p.filtered[i], p.positions[i])
		if i == p.selectedIdx {
			line = pickerSelectedStyle.Render(" " + p.filtered[i] + " ")
		} else {
			line = " " + line + " "
		}
		sb.WriteString("\n")
		sb.WriteString(line)
	}
	if end < len(p.filtered) {
		sb.WriteString("\n")
		sb.WriteString(pickerDimStyle.Render(fmt.Sprintf("  … %d more", len(p.filtered)-end)))
	}
	return sb.String()
}

// renderMatch styles the matched runes of name.
func renderMatch(name string, positions []int) string {
	if len(positions) == 0 {
		return name
	}
	matched := make(map[int]bool, len(positions))
	for _, pos := range positions {
		matched[pos] = true
	}
	var sb strings.Builder
	for i, r := range []rune(name) {
		if matched[i] {
			sb.WriteString(pickerMatchStyle.Render(string(r)))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// pickTable runs the picker and returns the chosen table, or "" when the
// user quit.
func pickTable(database string, dbType dblib.DatabaseType, tables []string) (string, error) {
	if len(tables) == 0 {
		return "", fmt.Errorf("no tables in %s", database)
	}
	final, err := tea.NewProgram(newTablePicker(database, dbType, tables), tea.WithAltScreen()).Run()
	if err != nil {
		return "", err
	}
	p := final.(tablePicker)
	if p.cancelled {
		return "", nil
	}
	return p.choice, nil
}
