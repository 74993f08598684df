package main

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"vgrid/internal/dblib"
	"vgrid/internal/grid"
)

// SetStatusMessage shows a plain message in the status bar.
func (e *Editor) SetStatusMessage(message string) {
	e.statusBar.SetText(tview.Escape(message) + e.positionText())
}

// SetStatusError shows an error in red.
func (e *Editor) SetStatusError(err error) {
	e.statusBar.SetText("[red]" + tview.Escape(err.Error()) + "[-]" + e.positionText())
}

// SetStatusErrorWithSentry shows an error and reports it.
func (e *Editor) SetStatusErrorWithSentry(err error) {
	e.log.Error("editor error", "err", err)
	breadcrumbs.Flush()
	CaptureError(err)
	e.SetStatusError(err)
}

// positionText is the right-hand "rows a-b of n" suffix.
func (e *Editor) positionText() string {
	v := e.scroll
	if v.Max <= 0 {
		return ""
	}
	first := v.Pos + 1
	last := min(v.Pos+max(v.Page, 1), v.Max)
	return fmt.Sprintf("  [gray]rows %d-%d of %d[-]", first, last, v.Max)
}

// updateStatusForSelection describes the focus cell and the selection.
func (e *Editor) updateStatusForSelection(blocks []grid.CellBlock) {
	row, col := e.grid.Selection().CurrentCell()
	meta, ok := e.grid.Column(col)
	if row < 0 || !ok {
		e.SetStatusMessage(e.relationTitle())
		return
	}

	var parts []string
	if cells := selectedCellCount(blocks); cells > 1 {
		parts = append(parts, fmt.Sprintf("%d cells in %d blocks", cells, len(blocks)))
	}
	if meta.ID != lineNumberColumnID {
		value := e.source.CellDisplayValue(row, meta.ID)
		if len(value) > 80 {
			value = value[:77] + "..."
		}
		parts = append(parts, fmt.Sprintf("%s: %s", meta.Title, value))
	}
	if len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("row %d", row+1))
	}
	e.SetStatusMessage(strings.Join(parts, " · "))
}

func selectedCellCount(blocks []grid.CellBlock) int64 {
	var n int64
	for _, b := range blocks {
		n += int64(b.Width()) * b.Height()
	}
	return n
}

// updateStatusForEditMode sets helpful status bar text based on column type
// and constraints.
func (e *Editor) updateStatusForEditMode(colID int, current string) {
	col, ok := e.source.column(colID)
	if !ok {
		e.SetStatusMessage("Editing...")
		return
	}

	var parts []string
	switch {
	case len(col.EnumValues) > 0:
		enumStr := formatEnumValuesWithHighlight(col.EnumValues, current)
		if col.CustomTypeName != "" {
			parts = append(parts, fmt.Sprintf("ENUM %s: %s", col.CustomTypeName, enumStr))
		} else {
			parts = append(parts, "ENUM: "+enumStr)
		}
	case col.CustomTypeName != "":
		parts = append(parts, "Custom type: "+col.CustomTypeName)
	default:
		if hint := getTypeHint(col.Type); hint != "" {
			parts = append(parts, hint)
		}
	}

	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	} else {
		parts = append(parts, dblib.NullGlyph+" for null")
	}
	if col.Kind() == dblib.KindInteger {
		parts = append(parts, "Alt+↑/↓ to step")
	}
	parts = append(parts, "Enter to save · Esc to cancel")

	// Enum highlighting carries color tags, so the text is not escaped.
	e.statusBar.SetText(strings.Join(parts, " · ") + e.positionText())
}

// formatEnumValuesWithHighlight formats enum values and highlights the
// matching one.
func formatEnumValuesWithHighlight(values []string, currentValue string) string {
	if len(values) == 0 {
		return ""
	}

	maxDisplay := 5
	maxLength := 60

	var parts []string
	totalLen := 0
	foundMatch := false

	for i, val := range values {
		if i >= maxDisplay {
			parts = append(parts, "...")
			break
		}

		displayVal := val
		if len(displayVal) > 20 {
			displayVal = displayVal[:17] + "..."
		}
		displayVal = tview.Escape(displayVal)

		var formatted string
		if val == currentValue {
			formatted = "[green]'" + displayVal + "'[-]"
			foundMatch = true
		} else {
			formatted = "'" + displayVal + "'"
		}

		// Length without color tags.
		plainLen := len(displayVal) + 2
		if totalLen+plainLen+2 > maxLength && i > 0 {
			parts = append(parts, "...")
			break
		}

		parts = append(parts, formatted)
		totalLen += plainLen + 2
	}

	if !foundMatch && currentValue != "" && currentValue != dblib.NullGlyph {
		for _, val := range values {
			if strings.HasPrefix(val, currentValue) {
				return strings.Join(parts, ", ") + " [yellow](typing...)[-]"
			}
		}
		return strings.Join(parts, ", ") + " [yellow](invalid)[-]"
	}

	return strings.Join(parts, ", ")
}

// getTypeHint returns a user-friendly hint for a database column type.
func getTypeHint(dbType string) string {
	t := strings.ToLower(dbType)

	switch {
	case strings.Contains(t, "bool"):
		return "Boolean (true/false, 1/0, t/f)"
	case strings.Contains(t, "tinyint"):
		return "Integer (-128 to 127)"
	case strings.Contains(t, "smallint"):
		return "Integer (-32768 to 32767)"
	case strings.Contains(t, "bigint"):
		return "Large integer"
	case t == "int" || strings.Contains(t, "integer"):
		return "Integer"
	case strings.Contains(t, "double"):
		return "Decimal number (high precision)"
	case strings.Contains(t, "real") || strings.Contains(t, "float"):
		return "Decimal number"
	case strings.Contains(t, "decimal") || strings.Contains(t, "numeric"):
		return "Exact decimal number"
	case strings.Contains(t, "char"):
		return "Text"
	case strings.Contains(t, "text") || strings.Contains(t, "clob"):
		return "Text (unlimited)"
	case strings.Contains(t, "timestamp"):
		return "Timestamp (ISO 8601)"
	case strings.Contains(t, "date"):
		return "Date (YYYY-MM-DD)"
	case strings.Contains(t, "time"):
		return "Time (HH:MM:SS)"
	case strings.Contains(t, "json"):
		return "JSON"
	case strings.Contains(t, "uuid"):
		return "UUID"
	case strings.Contains(t, "blob") || strings.Contains(t, "bytea") || strings.Contains(t, "binary"):
		return "Binary data"
	default:
		return ""
	}
}
