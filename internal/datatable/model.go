package datatable

const (
	// DefaultPageSize is the page size of a new table.
	DefaultPageSize = 10

	// DefaultSuggestionLimit caps the suggestion list of a text filter.
	DefaultSuggestionLimit = 5000
)

// RowModel is the materialized view of a table: the filtered and sorted rows
// plus the page currently on display.
type RowModel[T any] struct {
	// Rows is the current page; RowIDs holds the id of each.
	Rows   []T
	RowIDs []string

	// Filtered is every row that passes the active filters, in display order.
	Filtered []T

	TotalCount    int
	FilteredCount int
	SelectedCount int

	PageIndex int
	PageSize  int
	PageCount int
}

// Empty reports whether no row passes the active filters.
func (m RowModel[T]) Empty() bool {
	return m.FilteredCount == 0
}

// CanPrevious reports whether a previous page exists.
func (m RowModel[T]) CanPrevious() bool {
	return m.PageIndex > 0
}

// CanNext reports whether a next page exists.
func (m RowModel[T]) CanNext() bool {
	return m.PageIndex+1 < m.PageCount
}

// entry is a row carried through the filter and sort stages.
type entry[T any] struct {
	row   T
	index int

	// ranked is set when a fuzzy filter produced a ranking for this row.
	ranked    bool
	ranking   Ranking
	rankValue string
}

// pageCount returns the number of pages for n rows; an empty model still has
// one (empty) page.
func pageCount(n, size int) int {
	if size <= 0 || n == 0 {
		return 1
	}
	return (n + size - 1) / size
}

// clampPage keeps index inside [0, count).
func clampPage(index, count int) int {
	if index >= count {
		index = count - 1
	}
	if index < 0 {
		index = 0
	}
	return index
}

// paginate slices one page out of entries.
func paginate[T any](entries []entry[T], index, size int) []entry[T] {
	if size <= 0 {
		return entries
	}
	start := index * size
	if start >= len(entries) {
		return nil
	}
	return entries[start:min(start+size, len(entries))]
}
