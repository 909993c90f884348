package datatable

// value.go normalizes cell values coming from Go structs, JSON or pgx scans.
//
// Rows fetched through pgx carry pgtype wrappers (Numeric, Date, Text, ...)
// while rows built in code carry plain Go values. The engine only ever needs
// three views of a value: as a number, as a calendar date, or as text.

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// numericRegex matches integers, decimals and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// dateLayouts are tried in order when a date arrives as text.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// Number returns v as a float64 when v holds a numeric value.
// Strings are not numbers here; use ParseNumber for user input.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), !math.IsNaN(float64(n))
	case float64:
		return n, !math.IsNaN(n)
	case pgtype.Numeric:
		if !n.Valid || n.NaN {
			return 0, false
		}
		f, err := n.Float64Value()
		if err != nil || !f.Valid {
			return 0, false
		}
		return f.Float64, true
	case pgtype.Int2:
		return float64(n.Int16), n.Valid
	case pgtype.Int4:
		return float64(n.Int32), n.Valid
	case pgtype.Int8:
		return float64(n.Int64), n.Valid
	case pgtype.Float4:
		return float64(n.Float32), n.Valid
	case pgtype.Float8:
		return n.Float64, n.Valid
	default:
		return 0, false
	}
}

// Time returns v as a time when v holds a valid date or timestamp.
func Time(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	case pgtype.Date:
		return t.Time, t.Valid && t.InfinityModifier == pgtype.Finite
	case pgtype.Timestamp:
		return t.Time, t.Valid && t.InfinityModifier == pgtype.Finite
	case pgtype.Timestamptz:
		return t.Time, t.Valid && t.InfinityModifier == pgtype.Finite
	default:
		return time.Time{}, false
	}
}

// Text returns the display form of v. Dates render as YYYY-MM-DD and whole
// numbers without a fractional part.
func Text(v any) string {
	if v == nil {
		return ""
	}
	if t, ok := Time(v); ok {
		return t.Format("2006-01-02")
	}
	if f, ok := Number(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	switch s := v.(type) {
	case string:
		return s
	case *string:
		if s == nil {
			return ""
		}
		return *s
	case pgtype.Text:
		if !s.Valid {
			return ""
		}
		return s.String
	case pgtype.Bool:
		if !s.Valid {
			return ""
		}
		return boolText(s.Bool)
	case bool:
		return boolText(s)
	case pgtype.Numeric, pgtype.Date, pgtype.Timestamp, pgtype.Timestamptz,
		pgtype.Int2, pgtype.Int4, pgtype.Int8, pgtype.Float4, pgtype.Float8:
		// Invalid (NULL) wrappers fall through the checks above.
		return ""
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func boolText(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

// IsEmpty reports whether v carries no value (nil, blank text, NULL wrapper).
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	if _, ok := Number(v); ok {
		return false
	}
	if _, ok := Time(v); ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return false
	case pgtype.Bool:
		return !b.Valid
	}
	return strings.TrimSpace(Text(v)) == ""
}

// ParseNumber parses user-typed numeric input. Thousands separators and a
// leading currency symbol are tolerated. A comma is the decimal separator
// when it is the only separator and is not followed by exactly three digits
// ("1,5"), or when it follows the last period ("1.234,5").
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = normalizeSeparators(strings.TrimSpace(s))
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func normalizeSeparators(s string) string {
	comma := strings.LastIndexByte(s, ',')
	if comma < 0 {
		return s
	}
	dot := strings.LastIndexByte(s, '.')
	switch {
	case dot >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	case dot < 0 && strings.Count(s, ",") == 1 && len(s)-comma-1 != 3:
		return strings.Replace(s, ",", ".", 1)
	}
	return strings.ReplaceAll(s, ",", "")
}

// ParseDate parses user-typed or serialized date input.
// It returns false for anything that is not a valid calendar date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// dateOf returns v as a date, accepting dates stored as text in the row.
func dateOf(v any) (time.Time, bool) {
	if t, ok := Time(v); ok {
		return t, true
	}
	if s, ok := v.(string); ok {
		return ParseDate(s)
	}
	return time.Time{}, false
}

// day truncates t to its calendar day, keeping t's own year/month/day.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
