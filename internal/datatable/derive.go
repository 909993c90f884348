package datatable

import (
	"slices"
	"strings"
)

// activeFilter is a column filter resolved against the column set.
type activeFilter struct {
	col   int
	value any
}

// deriveLocked returns the filtered and sorted entries, computing them only
// when rows, filters or sorting changed since the last call.
func (t *Table[T]) deriveLocked() []entry[T] {
	if t.valid {
		return t.derived
	}
	entries := t.filterLocked("")
	t.sortLocked(entries)
	t.derived = entries
	t.valid = true
	return entries
}

// filterLocked applies every column filter except the one on skip, plus the
// global filter. Passing "" applies all of them.
func (t *Table[T]) filterLocked(skip string) []entry[T] {
	active := make([]activeFilter, 0, len(t.state.Filters))
	for _, f := range t.state.Filters {
		if f.ColumnID == skip || f.Value == nil {
			continue
		}
		i, ok := t.byID[f.ColumnID]
		if !ok {
			continue
		}
		active = append(active, activeFilter{col: i, value: f.Value})
	}
	query := strings.TrimSpace(t.state.GlobalFilter)

	out := make([]entry[T], 0, len(t.rows))
	for i, row := range t.rows {
		if !t.matchColumnsLocked(row, active) {
			continue
		}
		e := entry[T]{row: row, index: i}
		if query != "" {
			ranking, value, ok := t.rankGlobalLocked(row, query)
			if !ok {
				continue
			}
			e.ranked = true
			e.ranking = ranking
			e.rankValue = value
		}
		out = append(out, e)
	}
	return out
}

func (t *Table[T]) matchColumnsLocked(row T, active []activeFilter) bool {
	for _, f := range active {
		if !matchFilter(t.ranker, t.columns[f.col].Value(row), f.value) {
			return false
		}
	}
	return true
}

// rankGlobalLocked ranks every filterable column of row against query and
// keeps the best passing ranking.
func (t *Table[T]) rankGlobalLocked(row T, query string) (Ranking, string, bool) {
	var (
		best  Ranking
		value string
		found bool
	)
	for _, col := range t.columns {
		if col.DisableFilter {
			continue
		}
		v := col.Value(row)
		if IsEmpty(v) {
			continue
		}
		text := Text(v)
		r := t.ranker.Rank(text, query)
		if !r.Passed {
			continue
		}
		if !found || r.Compare(best) < 0 {
			best, value, found = r, text, true
		}
	}
	return best, value, found
}

// resolvedSort is a sort entry resolved against the column set.
type resolvedSort struct {
	col  int
	kind Kind
	desc bool
}

// sortLocked orders entries in place. An explicit sort wins; otherwise a
// global query orders rows by rank; otherwise the original order stays.
func (t *Table[T]) sortLocked(entries []entry[T]) {
	specs := make([]resolvedSort, 0, len(t.state.Sorting))
	for _, s := range t.state.Sorting {
		i, ok := t.byID[s.ColumnID]
		if !ok || t.columns[i].DisableSort {
			continue
		}
		specs = append(specs, resolvedSort{col: i, kind: t.kinds[i], desc: s.Desc})
	}

	if len(specs) > 0 {
		slices.SortStableFunc(entries, func(a, b entry[T]) int {
			for _, s := range specs {
				if c := t.compareColumn(s, a.row, b.row); c != 0 {
					return c
				}
			}
			return a.index - b.index
		})
		return
	}

	if strings.TrimSpace(t.state.GlobalFilter) != "" {
		slices.SortStableFunc(entries, compareRanked[T])
	}
}

// compareColumn compares two rows on one sort entry. Empty values sort last
// in both directions.
func (t *Table[T]) compareColumn(s resolvedSort, a, b T) int {
	col := t.columns[s.col]
	av, bv := col.Value(a), col.Value(b)
	// Valid values first, then values of the wrong kind, then empty ones,
	// whatever the direction.
	ag, bg := sortGroup(s.kind, av), sortGroup(s.kind, bv)
	if ag != bg {
		return ag - bg
	}
	if ag == groupEmpty {
		return 0
	}
	c := compareValues(s.kind, av, bv)
	if s.desc {
		c = -c
	}
	return c
}

const (
	groupValid = iota
	groupMismatched
	groupEmpty
)

func sortGroup(kind Kind, v any) int {
	switch {
	case IsEmpty(v):
		return groupEmpty
	case !convertible(kind, v):
		return groupMismatched
	}
	return groupValid
}

// compareRanked orders by rank, best first. Equal ranks fall back to the
// alphanumeric order of the matched value, then the original position.
func compareRanked[T any](a, b entry[T]) int {
	switch {
	case a.ranked && !b.ranked:
		return -1
	case !a.ranked && b.ranked:
		return 1
	case a.ranked && b.ranked:
		if c := a.ranking.Compare(b.ranking); c != 0 {
			return c
		}
	}
	if c := CompareAlphanumeric(a.rankValue, b.rankValue); c != 0 {
		return c
	}
	return a.index - b.index
}
