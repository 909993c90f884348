package datatable

// State is the complete interactive state of one table instance.
// It is a value: Reduce never mutates its input.
type State struct {
	Filters      []ColumnFilter
	GlobalFilter string
	Sorting      []SortSpec
	Selection    map[string]bool
	Visibility   map[string]bool
	PageIndex    int
	PageSize     int
}

// NewState returns the initial state for the given page size.
func NewState(pageSize int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return State{PageSize: pageSize}
}

// Filter returns the filter value for a column, or nil.
func (s State) Filter(columnID string) any {
	for _, f := range s.Filters {
		if f.ColumnID == columnID {
			return f.Value
		}
	}
	return nil
}

// Sort returns the sort entry for a column.
func (s State) Sort(columnID string) (SortSpec, bool) {
	for _, spec := range s.Sorting {
		if spec.ColumnID == columnID {
			return spec, true
		}
	}
	return SortSpec{}, false
}

// Visible reports whether a column is visible. Missing entries are visible.
func (s State) Visible(columnID string) bool {
	v, ok := s.Visibility[columnID]
	return !ok || v
}

// Selected reports whether a row id is selected.
func (s State) Selected(id string) bool {
	return s.Selection[id]
}

// SelectedIDs returns the ids whose selection flag is true, in no order.
func (s State) SelectedIDs() []string {
	ids := make([]string, 0, len(s.Selection))
	for id, ok := range s.Selection {
		if ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Action is a state transition. Actions are applied by Reduce.
type Action interface {
	apply(State) State
}

// SetFilterAction sets or, with a nil Value, clears one column filter.
// Value must already be normalized for the column kind.
type SetFilterAction struct {
	ColumnID string
	Value    any
}

// ClearFiltersAction removes every column filter and the global filter.
type ClearFiltersAction struct{}

// SetGlobalFilterAction sets the global fuzzy query.
type SetGlobalFilterAction struct {
	Query string
}

// ToggleSortAction cycles a column through ascending, descending, unsorted.
// With Multi unset the column replaces the whole sort state.
type ToggleSortAction struct {
	ColumnID string
	Multi    bool
}

// SetSortingAction replaces the sort state.
type SetSortingAction struct {
	Sorting []SortSpec
}

// ToggleRowAction flips the selection flag of one row.
type ToggleRowAction struct {
	ID string
}

// SetRowsSelectedAction sets the selection flag of many rows at once.
type SetRowsSelectedAction struct {
	IDs      []string
	Selected bool
}

// ClearSelectionAction drops the given ids from the selection, or every id
// when IDs is nil.
type ClearSelectionAction struct {
	IDs []string
}

// SetVisibilityAction shows or hides a column.
type SetVisibilityAction struct {
	ColumnID string
	Visible  bool
}

// SetPageAction moves to a page. Bounds are enforced against the row model.
type SetPageAction struct {
	Index int
}

// SetPageSizeAction changes the page size and keeps the first visible row
// on the new page.
type SetPageSizeAction struct {
	Size int
}

// Reduce applies a to s and returns the new state.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}

func (a SetFilterAction) apply(s State) State {
	filters := make([]ColumnFilter, 0, len(s.Filters)+1)
	replaced := false
	for _, f := range s.Filters {
		if f.ColumnID != a.ColumnID {
			filters = append(filters, f)
			continue
		}
		if a.Value != nil {
			filters = append(filters, ColumnFilter{ColumnID: a.ColumnID, Value: a.Value})
		}
		replaced = true
	}
	if !replaced && a.Value != nil {
		filters = append(filters, ColumnFilter{ColumnID: a.ColumnID, Value: a.Value})
	}
	s.Filters = filters
	return s
}

func (ClearFiltersAction) apply(s State) State {
	s.Filters = nil
	s.GlobalFilter = ""
	return s
}

func (a SetGlobalFilterAction) apply(s State) State {
	s.GlobalFilter = a.Query
	return s
}

func (a ToggleSortAction) apply(s State) State {
	current, sorted := s.Sort(a.ColumnID)

	var next *SortSpec
	switch {
	case !sorted:
		next = &SortSpec{ColumnID: a.ColumnID}
	case !current.Desc:
		next = &SortSpec{ColumnID: a.ColumnID, Desc: true}
	}

	if !a.Multi {
		if next == nil {
			s.Sorting = nil
		} else {
			s.Sorting = []SortSpec{*next}
		}
		return s
	}

	sorting := make([]SortSpec, 0, len(s.Sorting)+1)
	for _, spec := range s.Sorting {
		if spec.ColumnID == a.ColumnID {
			if next != nil {
				sorting = append(sorting, *next)
				next = nil
			}
			continue
		}
		sorting = append(sorting, spec)
	}
	if next != nil {
		sorting = append(sorting, *next)
	}
	s.Sorting = sorting
	return s
}

func (a SetSortingAction) apply(s State) State {
	s.Sorting = append([]SortSpec(nil), a.Sorting...)
	return s
}

func (a ToggleRowAction) apply(s State) State {
	sel := copySelection(s.Selection)
	if sel[a.ID] {
		delete(sel, a.ID)
	} else {
		sel[a.ID] = true
	}
	s.Selection = sel
	return s
}

func (a SetRowsSelectedAction) apply(s State) State {
	sel := copySelection(s.Selection)
	for _, id := range a.IDs {
		if a.Selected {
			sel[id] = true
		} else {
			delete(sel, id)
		}
	}
	s.Selection = sel
	return s
}

func (a ClearSelectionAction) apply(s State) State {
	if a.IDs == nil {
		s.Selection = map[string]bool{}
		return s
	}
	sel := copySelection(s.Selection)
	for _, id := range a.IDs {
		delete(sel, id)
	}
	s.Selection = sel
	return s
}

func (a SetVisibilityAction) apply(s State) State {
	vis := make(map[string]bool, len(s.Visibility)+1)
	for k, v := range s.Visibility {
		vis[k] = v
	}
	vis[a.ColumnID] = a.Visible
	s.Visibility = vis
	return s
}

func (a SetPageAction) apply(s State) State {
	if a.Index < 0 {
		a.Index = 0
	}
	s.PageIndex = a.Index
	return s
}

func (a SetPageSizeAction) apply(s State) State {
	if a.Size <= 0 {
		return s
	}
	first := s.PageIndex * s.PageSize
	s.PageSize = a.Size
	s.PageIndex = first / a.Size
	return s
}

func copySelection(sel map[string]bool) map[string]bool {
	out := make(map[string]bool, len(sel)+1)
	for k, v := range sel {
		if v {
			out[k] = true
		}
	}
	return out
}
