package dblib

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatValue renders a scanned value for display.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return NullDisplay
	case []byte:
		return string(val)
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(time.DateOnly)
		}
		return val.Format(time.DateTime)
	}
	return fmt.Sprint(v)
}

// EditText renders a scanned value for an editor, so that committing it
// unchanged writes the same value back.
func EditText(v any) string {
	if v == nil {
		return NullGlyph
	}
	return FormatValue(v)
}

// ParseBool accepts the spellings databases use for booleans.
func ParseBool(raw string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "t", "yes", "y":
		return true, true
	case "0", "false", "f", "no", "n":
		return false, true
	}
	return false, false
}

// toDBValue converts editor text to a query argument for col. Text that
// does not parse as the column's type is passed through for the database
// to accept or reject.
func toDBValue(col Column, raw string) any {
	if raw == NullGlyph {
		return nil
	}
	switch col.Kind() {
	case KindBool:
		if b, ok := ParseBool(raw); ok {
			return b
		}
	case KindInteger:
		if v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
			return v
		}
	case KindReal:
		if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return v
		}
	}
	return raw
}
