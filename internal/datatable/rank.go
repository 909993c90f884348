package datatable

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Rank is the match tier of a value against a query. Higher is better.
type Rank int

const (
	RankNoMatch Rank = iota
	RankMatches
	RankAcronym
	RankContains
	RankWordStartsWith
	RankStartsWith
	RankEqual
	RankCaseSensitiveEqual
)

// Ranking is the result of ranking one value against a query.
// Score refines Rank for subsequence matches (closer spread scores higher).
type Ranking struct {
	Rank   Rank
	Score  float64
	Passed bool
}

// Compare orders rankings best-first: it returns a negative number when r
// ranks better than o, positive when worse, zero when equal.
func (r Ranking) Compare(o Ranking) int {
	switch {
	case r.Score > o.Score:
		return -1
	case r.Score < o.Score:
		return 1
	default:
		return 0
	}
}

// Ranker scores a cell's text against a query.
// Implementations must be safe for concurrent use.
type Ranker interface {
	Rank(value, query string) Ranking
}

// RankerFunc adapts a function to the Ranker interface.
type RankerFunc func(value, query string) Ranking

// Rank calls f(value, query).
func (f RankerFunc) Rank(value, query string) Ranking {
	return f(value, query)
}

// FuzzyRanker ranks values the way a match-sorter does. Diacritics are
// folded unless KeepDiacritics is set, so "curso" matches "Cursó".
type FuzzyRanker struct {
	// Threshold is the lowest rank that still passes. Zero means RankMatches.
	Threshold      Rank
	KeepDiacritics bool
}

// Rank implements Ranker.
func (f FuzzyRanker) Rank(value, query string) Ranking {
	threshold := f.Threshold
	if threshold == RankNoMatch {
		threshold = RankMatches
	}

	if !f.KeepDiacritics {
		value = foldDiacritics(value)
		query = foldDiacritics(query)
	}

	score := rankString(value, query)
	return Ranking{
		Rank:   Rank(score),
		Score:  score,
		Passed: score >= float64(threshold),
	}
}

// rankString returns the tier of value against query as a float so that
// subsequence matches can carry their closeness as a fraction.
func rankString(value, query string) float64 {
	if utf8.RuneCountInString(query) > utf8.RuneCountInString(value) {
		return float64(RankNoMatch)
	}
	if value == query {
		return float64(RankCaseSensitiveEqual)
	}

	value = strings.ToLower(value)
	query = strings.ToLower(query)

	switch {
	case value == query:
		return float64(RankEqual)
	case strings.HasPrefix(value, query):
		return float64(RankStartsWith)
	case strings.Contains(value, " "+query):
		return float64(RankWordStartsWith)
	case strings.Contains(value, query):
		return float64(RankContains)
	case utf8.RuneCountInString(query) == 1:
		// A single character that is not a substring cannot be a subsequence.
		return float64(RankNoMatch)
	case strings.Contains(acronym(value), query):
		return float64(RankAcronym)
	}

	return closeness(value, query)
}

// acronym returns the first letter of every space or hyphen separated word.
func acronym(s string) string {
	var b strings.Builder
	for _, word := range strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == '-' }) {
		for _, r := range word {
			b.WriteRune(r)
			break
		}
	}
	return b.String()
}

// closeness ranks query as an in-order subsequence of value. The score lies
// in (RankMatches, RankAcronym]: tighter spreads score higher.
func closeness(value, query string) float64 {
	v := []rune(value)
	q := []rune(query)
	matched := 0
	pos := 0

	find := func(c rune) int {
		for j := pos; j < len(v); j++ {
			if v[j] == c {
				matched++
				return j + 1
			}
		}
		return -1
	}

	first := find(q[0])
	if first < 0 {
		return float64(RankNoMatch)
	}
	pos = first
	for i := 1; i < len(q); i++ {
		found := find(q[i])
		if found < 0 {
			return float64(RankNoMatch)
		}
		pos = found
	}

	spread := pos - first
	if spread < 1 {
		spread = 1
	}
	inOrder := float64(matched) / float64(len(q))
	return float64(RankMatches) + inOrder*(1/float64(spread))
}

// foldDiacritics strips combining marks: "Título" becomes "Titulo".
func foldDiacritics(s string) string {
	if isASCII(s) {
		return s
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
