package datatable

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrColumnNotFilterable is returned when a filter targets a column that
// disables filtering.
var ErrColumnNotFilterable = errors.New("column is not filterable")

// Options configures a Table. Every field is optional.
type Options[T any] struct {
	// RowID derives a row's identity. Defaults to Identifier, then the "id"
	// field of a Fielder, then the row's index.
	RowID func(row T) string

	// Ranker scores text filters and the global filter. Defaults to FuzzyRanker.
	Ranker Ranker

	PageSize        int
	SuggestionLimit int

	// OnSelectionChange receives the most recently interacted row (nil when
	// none) and every selected row still present in the collection.
	OnSelectionChange func(last *T, selected []T)

	// OnDataChange receives the filtered and sorted rows whenever they change.
	OnDataChange func(rows []T)

	DeleteAction DeleteAction
	Notifier     Notifier
	Logger       *slog.Logger
}

// Table is the controller of one table instance. It owns the State and
// derives row models from the current rows and columns on demand.
//
// A Table is safe for concurrent use. Callbacks run outside the internal
// lock and may call back into the Table.
type Table[T any] struct {
	mu sync.Mutex

	opts    Options[T]
	ranker  Ranker
	logger  *slog.Logger
	columns []Column[T]
	byID    map[string]int
	kinds   []Kind

	rows    []T
	ids     []string
	present map[string]int

	state State

	// Memoized derivations, dropped whenever rows, filters or sorting change.
	derived []entry[T]
	valid   bool
	facets  map[string]Facet

	last    *T
	pending atomic.Bool
}

// New creates a table over rows. Columns without an ID use their Key.
func New[T any](columns []Column[T], rows []T, opts Options[T]) *Table[T] {
	t := &Table[T]{
		opts:   opts,
		ranker: opts.Ranker,
		logger: opts.Logger,
		state:  NewState(opts.PageSize),
	}
	if t.ranker == nil {
		t.ranker = FuzzyRanker{}
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	if t.opts.SuggestionLimit <= 0 {
		t.opts.SuggestionLimit = DefaultSuggestionLimit
	}

	t.columns = make([]Column[T], 0, len(columns))
	t.byID = make(map[string]int, len(columns))
	for _, col := range columns {
		if col.ID == "" {
			col.ID = col.Key
		}
		if col.Header == "" {
			col.Header = col.ID
		}
		t.byID[col.ID] = len(t.columns)
		t.columns = append(t.columns, col)
	}

	t.setRowsLocked(rows)
	return t
}

// SetRows replaces the row collection. Passing the same slice again is a
// no-op, so callers may hand in their rows on every pass.
func (t *Table[T]) SetRows(rows []T) {
	t.mu.Lock()
	if sameSlice(t.rows, rows) {
		t.mu.Unlock()
		return
	}
	t.setRowsLocked(rows)
	t.state.PageIndex = clampPage(t.state.PageIndex, pageCount(len(t.deriveLocked()), t.state.PageSize))
	notify := t.dataChangedLocked()
	t.mu.Unlock()

	notify()
}

func (t *Table[T]) setRowsLocked(rows []T) {
	t.rows = rows
	t.ids = make([]string, len(rows))
	t.present = make(map[string]int, len(rows))
	for i, row := range rows {
		id := t.rowID(i, row)
		t.ids[i] = id
		t.present[id] = i
	}

	t.kinds = make([]Kind, len(t.columns))
	for i, col := range t.columns {
		t.kinds[i] = InferKind(col, rows)
	}
	t.invalidateLocked()
}

func (t *Table[T]) rowID(index int, row T) string {
	if t.opts.RowID != nil {
		return t.opts.RowID(row)
	}
	switch r := any(row).(type) {
	case Identifier:
		return r.RowID()
	case Fielder:
		if id := IDString(r.Field("id")); id != "" {
			return id
		}
	}
	return strconv.Itoa(index)
}

// sameSlice reports whether a and b share length and backing array.
func sameSlice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return a != nil && b != nil
	}
	return &a[0] == &b[0]
}

func (t *Table[T]) invalidateLocked() {
	t.valid = false
	t.derived = nil
	t.facets = nil
}

// ColumnInfo describes a column together with its current state.
type ColumnInfo struct {
	ID        string
	Header    string
	Kind      Kind
	CanFilter bool
	CanSort   bool
	Visible   bool

	// Sorted is set when the column takes part in the sort state.
	Sorted bool
	Desc   bool

	// Filter is the active filter value, nil when none.
	Filter any
}

// Columns returns every column with its state, in declaration order.
func (t *Table[T]) Columns() []ColumnInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]ColumnInfo, 0, len(t.columns))
	for i, col := range t.columns {
		spec, sorted := t.state.Sort(col.ID)
		out = append(out, ColumnInfo{
			ID:        col.ID,
			Header:    col.Header,
			Kind:      t.kinds[i],
			CanFilter: !col.DisableFilter,
			CanSort:   !col.DisableSort,
			Visible:   t.state.Visible(col.ID),
			Sorted:    sorted,
			Desc:      spec.Desc,
			Filter:    t.state.Filter(col.ID),
		})
	}
	return out
}

// VisibleColumns returns the column definitions currently shown.
func (t *Table[T]) VisibleColumns() []Column[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visibleColumnsLocked()
}

func (t *Table[T]) visibleColumnsLocked() []Column[T] {
	out := make([]Column[T], 0, len(t.columns))
	for _, col := range t.columns {
		if t.state.Visible(col.ID) {
			out = append(out, col)
		}
	}
	return out
}

// Kind returns the value kind of a column.
func (t *Table[T]) Kind(columnID string) (Kind, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i, ok := t.byID[columnID]
	if !ok {
		return KindAuto, fmt.Errorf("%w: %q", ErrUnknownColumn, columnID)
	}
	return t.kinds[i], nil
}

// State returns a snapshot of the table state.
func (t *Table[T]) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.state
	s.Filters = slices.Clone(s.Filters)
	s.Sorting = slices.Clone(s.Sorting)
	return s
}

// Dispatch applies an action to the table state. The typed methods below
// validate their input first and should be preferred.
func (t *Table[T]) Dispatch(a Action) {
	t.mu.Lock()
	notify := t.dispatchLocked(a)
	t.mu.Unlock()

	notify()
}

func (t *Table[T]) dispatchLocked(a Action) func() {
	t.state = Reduce(t.state, a)

	switch a.(type) {
	case SetFilterAction, ClearFiltersAction, SetGlobalFilterAction:
		t.invalidateLocked()
		// Stay on the current page unless it no longer exists.
		if t.state.PageIndex >= pageCount(len(t.deriveLocked()), t.state.PageSize) {
			t.state.PageIndex = 0
		}
		return t.dataChangedLocked()
	case ToggleSortAction, SetSortingAction:
		t.invalidateLocked()
		return t.dataChangedLocked()
	case ToggleRowAction, SetRowsSelectedAction, ClearSelectionAction:
		return t.selectionChangedLocked()
	case SetPageAction, SetPageSizeAction:
		t.state.PageIndex = clampPage(t.state.PageIndex, pageCount(len(t.deriveLocked()), t.state.PageSize))
	}
	return func() {}
}

func (t *Table[T]) dataChangedLocked() func() {
	if t.opts.OnDataChange == nil {
		return func() {}
	}
	rows := rowsOf(t.deriveLocked())
	cb := t.opts.OnDataChange
	return func() { cb(rows) }
}

func (t *Table[T]) selectionChangedLocked() func() {
	if t.opts.OnSelectionChange == nil {
		return func() {}
	}
	selected := t.selectedRowsLocked()
	last := t.last
	cb := t.opts.OnSelectionChange
	return func() { cb(last, selected) }
}

// SetFilter sets the filter of one column. The value must match the
// column kind: a string for text columns, NumberRange for numbers and
// DateRange for dates. Numeric and date columns also accept the serialized
// "min..max" form. A nil or empty value clears the filter.
func (t *Table[T]) SetFilter(columnID string, value any) error {
	t.mu.Lock()
	i, ok := t.byID[columnID]
	if !ok {
		t.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownColumn, columnID)
	}
	if t.columns[i].DisableFilter {
		t.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrColumnNotFilterable, columnID)
	}
	normalized, err := normalizeFilterValue(t.kinds[i], value)
	if err != nil {
		t.mu.Unlock()
		return fmt.Errorf("filter %q: %w", columnID, err)
	}
	notify := t.dispatchLocked(SetFilterAction{ColumnID: columnID, Value: normalized})
	t.mu.Unlock()

	notify()
	return nil
}

// ClearFilters removes every column filter and the global filter.
func (t *Table[T]) ClearFilters() {
	t.Dispatch(ClearFiltersAction{})
}

// SetGlobalFilter sets the fuzzy query applied across all filterable columns.
func (t *Table[T]) SetGlobalFilter(query string) {
	t.Dispatch(SetGlobalFilterAction{Query: strings.TrimSpace(query)})
}

// ToggleSort cycles a column through ascending, descending and unsorted.
// The column replaces any other sort.
func (t *Table[T]) ToggleSort(columnID string) error {
	return t.toggleSort(columnID, false)
}

// ToggleMultiSort is ToggleSort but keeps the sort on other columns.
func (t *Table[T]) ToggleMultiSort(columnID string) error {
	return t.toggleSort(columnID, true)
}

func (t *Table[T]) toggleSort(columnID string, multi bool) error {
	if err := t.checkSortable(columnID); err != nil {
		return err
	}
	t.Dispatch(ToggleSortAction{ColumnID: columnID, Multi: multi})
	return nil
}

// SetSorting replaces the sort state.
func (t *Table[T]) SetSorting(sorting []SortSpec) error {
	for _, spec := range sorting {
		if err := t.checkSortable(spec.ColumnID); err != nil {
			return err
		}
	}
	t.Dispatch(SetSortingAction{Sorting: sorting})
	return nil
}

func (t *Table[T]) checkSortable(columnID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	i, ok := t.byID[columnID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, columnID)
	}
	if t.columns[i].DisableSort {
		return fmt.Errorf("%w: %q", ErrColumnNotSortable, columnID)
	}
	return nil
}

// Touch records id as the most recently interacted row without changing
// the selection.
func (t *Table[T]) Touch(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touchLocked(id)
}

func (t *Table[T]) touchLocked(id string) {
	if i, ok := t.present[id]; ok {
		row := t.rows[i]
		t.last = &row
	}
}

// ToggleRowSelection flips the selection flag of one row.
func (t *Table[T]) ToggleRowSelection(id string) {
	t.mu.Lock()
	t.touchLocked(id)
	notify := t.dispatchLocked(ToggleRowAction{ID: id})
	t.mu.Unlock()

	notify()
}

// ToggleAllVisible selects every row of the current page, or deselects them
// when all are already selected.
func (t *Table[T]) ToggleAllVisible() {
	t.mu.Lock()
	ids := t.modelLocked().RowIDs
	notify := t.dispatchLocked(SetRowsSelectedAction{IDs: ids, Selected: !t.allSelectedLocked(ids)})
	t.mu.Unlock()

	notify()
}

// ToggleAllFiltered selects every row passing the filters, or deselects them
// when all are already selected.
func (t *Table[T]) ToggleAllFiltered() {
	t.mu.Lock()
	entries := t.deriveLocked()
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, t.ids[e.index])
	}
	notify := t.dispatchLocked(SetRowsSelectedAction{IDs: ids, Selected: !t.allSelectedLocked(ids)})
	t.mu.Unlock()

	notify()
}

func (t *Table[T]) allSelectedLocked(ids []string) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if !t.state.Selected(id) {
			return false
		}
	}
	return true
}

// ClearSelection deselects every row.
func (t *Table[T]) ClearSelection() {
	t.Dispatch(ClearSelectionAction{})
}

// SetPage moves to a page, clamped to the available pages.
func (t *Table[T]) SetPage(index int) {
	t.Dispatch(SetPageAction{Index: index})
}

// NextPage moves one page forward when possible.
func (t *Table[T]) NextPage() {
	t.mu.Lock()
	next := t.state.PageIndex + 1
	t.mu.Unlock()
	t.SetPage(next)
}

// PreviousPage moves one page back when possible.
func (t *Table[T]) PreviousPage() {
	t.mu.Lock()
	prev := t.state.PageIndex - 1
	t.mu.Unlock()
	t.SetPage(prev)
}

// SetPageSize changes the number of rows per page.
func (t *Table[T]) SetPageSize(size int) {
	t.Dispatch(SetPageSizeAction{Size: size})
}

// SetColumnVisibility shows or hides a column.
func (t *Table[T]) SetColumnVisibility(columnID string, visible bool) error {
	t.mu.Lock()
	_, ok := t.byID[columnID]
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, columnID)
	}
	t.Dispatch(SetVisibilityAction{ColumnID: columnID, Visible: visible})
	return nil
}

// Model returns the current row model.
func (t *Table[T]) Model() RowModel[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.modelLocked()
}

func (t *Table[T]) modelLocked() RowModel[T] {
	entries := t.deriveLocked()
	filtered := rowsOf(entries)
	size := t.state.PageSize
	pages := pageCount(len(filtered), size)
	index := clampPage(t.state.PageIndex, pages)

	selected := 0
	for id, ok := range t.state.Selection {
		if _, present := t.present[id]; ok && present {
			selected++
		}
	}

	page := paginate(entries, index, size)
	ids := make([]string, len(page))
	for i, e := range page {
		ids[i] = t.ids[e.index]
	}

	return RowModel[T]{
		Rows:          rowsOf(page),
		RowIDs:        ids,
		Filtered:      filtered,
		TotalCount:    len(t.rows),
		FilteredCount: len(filtered),
		SelectedCount: selected,
		PageIndex:     index,
		PageSize:      size,
		PageCount:     pages,
	}
}

// IsSelected reports whether a row id is selected.
func (t *Table[T]) IsSelected(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Selected(id)
}

// SelectedIDs returns the selected ids still present in the row collection,
// in collection order. Stale selections are left out.
func (t *Table[T]) SelectedIDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selectedIDsLocked()
}

func (t *Table[T]) selectedIDsLocked() []string {
	var ids []string
	for _, id := range t.ids {
		if t.state.Selected(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// SelectedRows returns the selected rows still present in the collection.
func (t *Table[T]) SelectedRows() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selectedRowsLocked()
}

func (t *Table[T]) selectedRowsLocked() []T {
	var rows []T
	for i, id := range t.ids {
		if t.state.Selected(id) {
			rows = append(rows, t.rows[i])
		}
	}
	return rows
}

// ExportRows projects the filtered and sorted rows through the visible
// columns. It returns the header labels and one record per row.
func (t *Table[T]) ExportRows() ([]string, [][]string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cols := t.visibleColumnsLocked()
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.Header
	}

	entries := t.deriveLocked()
	records := make([][]string, 0, len(entries))
	for _, e := range entries {
		rec := make([]string, len(cols))
		for i, col := range cols {
			rec[i] = col.Render(e.row)
		}
		records = append(records, rec)
	}
	return header, records
}

func rowsOf[T any](entries []entry[T]) []T {
	rows := make([]T, len(entries))
	for i, e := range entries {
		rows[i] = e.row
	}
	return rows
}
