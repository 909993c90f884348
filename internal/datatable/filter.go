package datatable

import (
	"fmt"
	"strings"
)

// rangeSeparator splits the two bounds of a serialized range filter.
const rangeSeparator = ".."

// ParseFilterValue converts the serialized form of a filter into the value
// shape SetFilter expects for kind:
//
//	text    "curso"              -> string
//	number  "5..10", "5..", "..10" -> NumberRange
//	date    "2024-01-01..2024-02-01" -> DateRange
//
// A bound that does not parse is left open. ok is false when nothing usable
// remains, which callers treat as "no filter".
func ParseFilterValue(kind Kind, raw string) (value any, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}

	switch kind {
	case KindNumber:
		lo, hi := splitRange(raw)
		var r NumberRange
		if f, ok := ParseNumber(lo); ok {
			r.Min = Float(f)
		}
		if f, ok := ParseNumber(hi); ok {
			r.Max = Float(f)
		}
		return r, !r.IsZero()
	case KindDate:
		lo, hi := splitRange(raw)
		var r DateRange
		if t, ok := ParseDate(lo); ok {
			r.From = &t
		}
		if t, ok := ParseDate(hi); ok {
			r.To = &t
		}
		return r, !r.IsZero()
	default:
		return raw, true
	}
}

// FormatFilterValue is the inverse of ParseFilterValue.
func FormatFilterValue(v any) string {
	switch f := v.(type) {
	case nil:
		return ""
	case string:
		return f
	case NumberRange:
		var lo, hi string
		if f.Min != nil {
			lo = Text(*f.Min)
		}
		if f.Max != nil {
			hi = Text(*f.Max)
		}
		return lo + rangeSeparator + hi
	case DateRange:
		var lo, hi string
		if f.From != nil {
			lo = f.From.Format("2006-01-02")
		}
		if f.To != nil {
			hi = f.To.Format("2006-01-02")
		}
		return lo + rangeSeparator + hi
	default:
		return fmt.Sprint(v)
	}
}

// splitRange splits "lo..hi". A value without separator is an exact match,
// so it becomes both bounds.
func splitRange(raw string) (string, string) {
	lo, hi, found := strings.Cut(raw, rangeSeparator)
	if !found {
		return raw, raw
	}
	return strings.TrimSpace(lo), strings.TrimSpace(hi)
}

// normalizeFilterValue checks a filter value against the column kind and
// returns it in canonical form. A nil result with a nil error clears the
// filter.
func normalizeFilterValue(kind Kind, value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		if kind == KindText {
			return v, nil
		}
		// Serialized ranges are accepted for numeric and date columns.
		parsed, ok := ParseFilterValue(kind, v)
		if !ok {
			return nil, nil
		}
		return parsed, nil
	case NumberRange:
		if kind != KindNumber {
			return nil, fmt.Errorf("%w: number range on %s column", ErrFilterKind, kind)
		}
		if v.IsZero() {
			return nil, nil
		}
		if v.Min != nil && v.Max != nil && *v.Min > *v.Max {
			v.Min, v.Max = v.Max, v.Min
		}
		return v, nil
	case [2]float64:
		return normalizeFilterValue(kind, NumberRange{Min: Float(v[0]), Max: Float(v[1])})
	case DateRange:
		if kind != KindDate {
			return nil, fmt.Errorf("%w: date range on %s column", ErrFilterKind, kind)
		}
		if v.IsZero() {
			return nil, nil
		}
		if v.From != nil && v.To != nil && v.From.After(*v.To) {
			v.From, v.To = v.To, v.From
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: unsupported value %T", ErrFilterKind, value)
	}
}

// matchFilter reports whether a cell value satisfies a normalized filter.
func matchFilter(r Ranker, value any, filter any) bool {
	switch f := filter.(type) {
	case string:
		if IsEmpty(value) {
			return false
		}
		return r.Rank(Text(value), f).Passed
	case NumberRange:
		n, ok := Number(value)
		if !ok {
			return false
		}
		if f.Min != nil && n < *f.Min {
			return false
		}
		if f.Max != nil && n > *f.Max {
			return false
		}
		return true
	case DateRange:
		t, ok := dateOf(value)
		if !ok {
			return false
		}
		d := day(t)
		if f.From != nil && d.Before(day(*f.From)) {
			return false
		}
		if f.To != nil && d.After(day(*f.To)) {
			return false
		}
		return true
	default:
		return true
	}
}
