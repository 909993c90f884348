package datatable

import (
	"fmt"
	"slices"
	"time"
)

// Facet summarizes the values of one column over the rows that pass every
// filter except the column's own, so a filter input never narrows its own
// suggestions.
type Facet struct {
	ColumnID string
	Kind     Kind

	// Unique counts rows per distinct display value.
	Unique map[string]int

	// Suggestions are the sorted distinct values of a text column, capped at
	// the table's suggestion limit. Numeric and date columns have none.
	Suggestions []string

	// Min and Max bound a numeric column.
	Min, Max *float64

	// From and To bound a date column.
	From, To *time.Time
}

// Facets returns the faceted values of a column.
func (t *Table[T]) Facets(columnID string) (Facet, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.byID[columnID]
	if !ok {
		return Facet{}, fmt.Errorf("%w: %q", ErrUnknownColumn, columnID)
	}
	// Facets are cached alongside the derived rows and dropped with them.
	t.deriveLocked()
	if f, ok := t.facets[columnID]; ok {
		return f, nil
	}

	f := t.computeFacetLocked(i, t.filterLocked(columnID))
	if t.facets == nil {
		t.facets = make(map[string]Facet)
	}
	t.facets[columnID] = f
	return f, nil
}

func (t *Table[T]) computeFacetLocked(i int, entries []entry[T]) Facet {
	col := t.columns[i]
	f := Facet{
		ColumnID: col.ID,
		Kind:     t.kinds[i],
		Unique:   make(map[string]int),
	}

	for _, e := range entries {
		v := col.Value(e.row)
		if IsEmpty(v) {
			continue
		}
		f.Unique[Text(v)]++

		switch f.Kind {
		case KindNumber:
			n, ok := Number(v)
			if !ok {
				continue
			}
			if f.Min == nil || n < *f.Min {
				f.Min = Float(n)
			}
			if f.Max == nil || n > *f.Max {
				f.Max = Float(n)
			}
		case KindDate:
			d, ok := dateOf(v)
			if !ok {
				continue
			}
			d = day(d)
			if f.From == nil || d.Before(*f.From) {
				f.From = &d
			}
			if f.To == nil || d.After(*f.To) {
				to := d
				f.To = &to
			}
		}
	}

	if f.Kind == KindText {
		f.Suggestions = make([]string, 0, len(f.Unique))
		for v := range f.Unique {
			f.Suggestions = append(f.Suggestions, v)
		}
		slices.Sort(f.Suggestions)
		if len(f.Suggestions) > t.opts.SuggestionLimit {
			f.Suggestions = f.Suggestions[:t.opts.SuggestionLimit]
		}
	}
	return f
}
