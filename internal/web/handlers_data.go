package web

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/JonMunkholm/crefinex/internal/auth"
	"github.com/JonMunkholm/crefinex/internal/core"
	"github.com/JonMunkholm/crefinex/internal/datatable"
	"github.com/JonMunkholm/crefinex/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

var (
	errInvalidPayload = errors.New("invalid payload")
	pageSizes         = []int{10, 20, 30, 40, 50}
)

// handleDashboard renders the resource cards with their row counts.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	counts := s.data.Counts(r.Context())

	var groups []templates.ResourceGroup
	byGroup := make(map[string]int)
	for _, c := range counts {
		i, ok := byGroup[c.Info.Group]
		if !ok {
			i = len(groups)
			byGroup[c.Info.Group] = i
			groups = append(groups, templates.ResourceGroup{Name: c.Info.Group})
		}
		groups[i].Cards = append(groups[i].Cards, c)
	}

	_ = templates.Dashboard(s.sidebar(r, "dashboard", ""), groups).Render(r.Context(), w)
}

// handleListResources returns the registered resources by group.
func (s *Server) handleListResources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.data.ListResourcesByGroup())
}

// loadTable fetches the rows of the {resource} URL parameter and applies the
// query state to a fresh table.
func (s *Server) loadTable(r *http.Request) (*core.RowSet, *datatable.Table[datatable.Record], tableQuery, error) {
	set, err := s.data.Rows(r.Context(), chi.URLParam(r, "resource"))
	if err != nil {
		return nil, nil, tableQuery{}, err
	}
	q := parseTableQuery(r.URL.Query(), s.cfg.Table.PageSize, s.cfg.Table.MaxPageSize)
	t := datatable.New(set.Columns, set.Rows, datatable.Options[datatable.Record]{
		PageSize:        q.Size,
		SuggestionLimit: s.cfg.Table.SuggestionLimit,
		Logger:          logger(r),
	})
	q.apply(t)
	return set, t, q, nil
}

// errorStatus maps service errors to HTTP status codes.
func errorStatus(err error) int {
	if errors.Is(err, core.ErrUnknownResource) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// handleTableView renders the table page, or only the table for HTMX.
func (s *Server) handleTableView(w http.ResponseWriter, r *http.Request) {
	set, t, q, err := s.loadTable(r)
	if err != nil {
		s.respondError(w, r, err, errorStatus(err))
		return
	}

	params := s.tableParams(set, t, q)
	if isHTMX(r) {
		_ = templates.TablePartial(params).Render(r.Context(), w)
		return
	}
	_ = templates.TableView(s.sidebar(r, "", set.Resource.Key), params).Render(r.Context(), w)
}

func (s *Server) tableParams(set *core.RowSet, t *datatable.Table[datatable.Record], q tableQuery) templates.TableParams {
	model := t.Model()
	base := set.Resource.Path
	apiBase := "/api/resources/" + set.Resource.Key

	var columns []templates.ColumnView
	visible := t.VisibleColumns()
	for _, info := range t.Columns() {
		if !info.Visible {
			continue
		}
		cv := templates.ColumnView{
			ID:        info.ID,
			Header:    info.Header,
			Kind:      info.Kind,
			CanFilter: info.CanFilter,
			CanSort:   info.CanSort,
			SortURL:   q.withSortToggled(info.ID).url(base),
		}
		if spec, ok := t.State().Sort(info.ID); ok {
			cv.SortDir = "asc"
			if spec.Desc {
				cv.SortDir = "desc"
			}
		}
		fillFilterView(&cv, info.Filter)
		if info.CanFilter {
			if f, err := t.Facets(info.ID); err == nil {
				fillFacetHints(&cv, f)
			}
		}
		columns = append(columns, cv)
	}

	rows := make([]templates.RowView, len(model.Rows))
	for i, rec := range model.Rows {
		cells := make([]string, len(visible))
		for j, col := range visible {
			cells[j] = col.Render(rec)
		}
		rows[i] = templates.RowView{ID: model.RowIDs[i], Cells: cells}
	}

	params := templates.TableParams{
		Resource:      set.Resource,
		Columns:       columns,
		Rows:          rows,
		Query:         q.Query,
		PageIndex:     model.PageIndex,
		PageCount:     model.PageCount,
		PageSize:      model.PageSize,
		PageSizes:     pageSizes,
		FilteredCount: model.FilteredCount,
		TotalCount:    model.TotalCount,
		BaseURL:       base,
		ExportURL:     q.withPage(0).url(apiBase + "/export"),
		DeleteURL:     apiBase + "/delete",
	}
	if model.CanPrevious() {
		params.PrevURL = q.withPage(model.PageIndex).url(base)
	}
	if model.CanNext() {
		params.NextURL = q.withPage(model.PageIndex + 2).url(base)
	}
	return params
}

func fillFilterView(cv *templates.ColumnView, filter any) {
	switch f := filter.(type) {
	case string:
		cv.FilterValue = f
	case datatable.NumberRange:
		if f.Min != nil {
			cv.FilterMin = datatable.Text(*f.Min)
		}
		if f.Max != nil {
			cv.FilterMax = datatable.Text(*f.Max)
		}
	case datatable.DateRange:
		if f.From != nil {
			cv.FilterMin = f.From.Format(time.DateOnly)
		}
		if f.To != nil {
			cv.FilterMax = f.To.Format(time.DateOnly)
		}
	}
}

func fillFacetHints(cv *templates.ColumnView, f datatable.Facet) {
	cv.Suggestions = f.Suggestions
	switch {
	case f.Min != nil || f.Max != nil:
		if f.Min != nil {
			cv.MinHint = datatable.Text(*f.Min)
		}
		if f.Max != nil {
			cv.MaxHint = datatable.Text(*f.Max)
		}
	case f.From != nil || f.To != nil:
		if f.From != nil {
			cv.MinHint = f.From.Format(time.DateOnly)
		}
		if f.To != nil {
			cv.MaxHint = f.To.Format(time.DateOnly)
		}
	}
}

// RowsResponse is the JSON row model of one table page.
type RowsResponse struct {
	Resource      core.ResourceInfo      `json:"resource"`
	Columns       []ColumnResponse       `json:"columns"`
	Rows          []RowResponse          `json:"rows"`
	TotalCount    int                    `json:"totalCount"`
	FilteredCount int                    `json:"filteredCount"`
	PageIndex     int                    `json:"pageIndex"`
	PageSize      int                    `json:"pageSize"`
	PageCount     int                    `json:"pageCount"`
	Facets        map[string]FacetOutput `json:"facets,omitempty"`
	FetchedAt     time.Time              `json:"fetchedAt"`
}

// ColumnResponse describes a column and its state.
type ColumnResponse struct {
	ID        string `json:"id"`
	Header    string `json:"header"`
	Kind      string `json:"kind"`
	CanFilter bool   `json:"canFilter"`
	CanSort   bool   `json:"canSort"`
	Visible   bool   `json:"visible"`
	Sort      string `json:"sort,omitempty"`
	Filter    string `json:"filter,omitempty"`
}

// RowResponse is one row: raw values plus the rendered cells.
type RowResponse struct {
	ID     string            `json:"id"`
	Values datatable.Record  `json:"values"`
	Cells  map[string]string `json:"cells"`
}

// FacetOutput is the faceted summary of a column.
type FacetOutput struct {
	Unique      map[string]int `json:"unique,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
	Min         *float64       `json:"min,omitempty"`
	Max         *float64       `json:"max,omitempty"`
	From        *time.Time     `json:"from,omitempty"`
	To          *time.Time     `json:"to,omitempty"`
}

// handleRows returns the current page of a table as JSON, with facets for
// every filterable column.
func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	set, t, _, err := s.loadTable(r)
	if err != nil {
		s.respondError(w, r, err, errorStatus(err))
		return
	}

	model := t.Model()
	visible := t.VisibleColumns()
	resp := RowsResponse{
		Resource:      set.Resource,
		TotalCount:    model.TotalCount,
		FilteredCount: model.FilteredCount,
		PageIndex:     model.PageIndex,
		PageSize:      model.PageSize,
		PageCount:     model.PageCount,
		FetchedAt:     set.FetchedAt,
		Rows:          make([]RowResponse, len(model.Rows)),
		Facets:        make(map[string]FacetOutput),
	}

	for _, info := range t.Columns() {
		cr := ColumnResponse{
			ID:        info.ID,
			Header:    info.Header,
			Kind:      info.Kind.String(),
			CanFilter: info.CanFilter,
			CanSort:   info.CanSort,
			Visible:   info.Visible,
			Filter:    datatable.FormatFilterValue(info.Filter),
		}
		if info.Sorted {
			cr.Sort = "asc"
			if info.Desc {
				cr.Sort = "desc"
			}
		}
		resp.Columns = append(resp.Columns, cr)

		if !info.CanFilter {
			continue
		}
		if f, err := t.Facets(info.ID); err == nil {
			resp.Facets[info.ID] = FacetOutput{
				Unique:      f.Unique,
				Suggestions: f.Suggestions,
				Min:         f.Min,
				Max:         f.Max,
				From:        f.From,
				To:          f.To,
			}
		}
	}

	for i, rec := range model.Rows {
		cells := make(map[string]string, len(visible))
		for _, col := range visible {
			cells[col.ID] = col.Render(rec)
		}
		resp.Rows[i] = RowResponse{ID: model.RowIDs[i], Values: rec, Cells: cells}
	}

	writeJSON(w, r, http.StatusOK, resp)
}

// handleExport writes the filtered and sorted rows through the visible
// columns as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	set, t, _, err := s.loadTable(r)
	if err != nil {
		s.respondError(w, r, err, errorStatus(err))
		return
	}

	header, records := t.ExportRows()

	filename := fmt.Sprintf("%s_%s.csv", set.Resource.Key, time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return
	}
	if err := cw.WriteAll(records); err != nil {
		logger(r).Warn("export interrupted", "resource", set.Resource.Key, "error", err)
	}
}

// sidebar builds the navigation for the signed-in user.
func (s *Server) sidebar(r *http.Request, page, table string) templates.SidebarParams {
	groups := s.data.ListResourcesByGroup()
	order := make([]string, 0, len(groups))
	for g := range groups {
		order = append(order, g)
	}
	sort.Strings(order)

	sp := templates.SidebarParams{
		ActivePage:  page,
		ActiveTable: table,
		Groups:      groups,
		GroupOrder:  order,
	}
	if c, ok := auth.ClaimsFromContext(r.Context()); ok {
		sp.User = c.Email
	}
	return sp
}
