package datatable

import (
	"strings"
	"unicode"
)

// CompareAlphanumeric compares two strings case-insensitively, treating
// runs of digits as numbers so "Nivel 2" sorts before "Nivel 10".
// When a text chunk meets a numeric chunk, the text chunk sorts first.
func CompareAlphanumeric(a, b string) int {
	ac := splitAlphanumeric(strings.ToLower(a))
	bc := splitAlphanumeric(strings.ToLower(b))

	for len(ac) > 0 && len(bc) > 0 {
		aa, bb := ac[0], bc[0]
		ac, bc = ac[1:], bc[1:]

		aNum, bNum := isDigits(aa), isDigits(bb)

		switch {
		case !aNum && !bNum:
			if c := strings.Compare(aa, bb); c != 0 {
				return c
			}
		case !aNum:
			return -1
		case !bNum:
			return 1
		default:
			if c := compareDigits(aa, bb); c != 0 {
				return c
			}
		}
	}

	return len(ac) - len(bc)
}

// compareDigits compares two ASCII digit runs as unbounded integers:
// leading zeros are ignored, then the longer run is larger, then the runs
// compare lexically.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return strings.Compare(a, b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// splitAlphanumeric splits s into alternating digit and non-digit chunks.
func splitAlphanumeric(s string) []string {
	var chunks []string
	start := 0
	prevDigit := false
	for i, r := range s {
		isDigit := unicode.IsDigit(r) && r < 0x80
		if i > 0 && isDigit != prevDigit {
			chunks = append(chunks, s[start:i])
			start = i
		}
		prevDigit = isDigit
	}
	if start < len(s) {
		chunks = append(chunks, s[start:])
	}
	return chunks
}

// convertible reports whether a non-empty value converts to kind.
func convertible(kind Kind, v any) bool {
	switch kind {
	case KindNumber:
		_, ok := Number(v)
		return ok
	case KindDate:
		_, ok := dateOf(v)
		return ok
	}
	return true
}

// compareValues orders two non-empty cell values for the given kind.
// Values that do not convert to the kind fall back to text order.
func compareValues(kind Kind, a, b any) int {
	switch kind {
	case KindNumber:
		an, aok := Number(a)
		bn, bok := Number(b)
		if aok && bok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				return 0
			}
		}
	case KindDate:
		at, aok := dateOf(a)
		bt, bok := dateOf(b)
		if aok && bok {
			return at.Compare(bt)
		}
	}
	return CompareAlphanumeric(Text(a), Text(b))
}
