package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/crefinex/internal/core"
	"github.com/JonMunkholm/crefinex/internal/datatable"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

type inputMode int

const (
	modeNormal inputMode = iota
	modeSearch
	modeFilter
)

// tableScreen shows one resource through a datatable.Table.
type tableScreen struct {
	gen      int
	resource core.ResourceInfo
	table    *datatable.Table[datatable.Record]
	debounce *datatable.Debouncer[filterInput]
	notes    chan datatable.Notification
	timeout  time.Duration

	input     textinput.Model
	mode      inputMode
	filterCol string

	cursor    int
	colCursor int
	note      *datatable.Notification
	deleting  bool
}

func newTableScreen(gen int, set *core.RowSet, m *Model) *tableScreen {
	s := &tableScreen{
		gen:      gen,
		resource: set.Resource,
		notes:    make(chan datatable.Notification, 1),
		timeout:  m.opts.Timeout,
	}

	key, data := set.Resource.Key, m.data
	s.table = datatable.New(set.Columns, set.Rows, datatable.Options[datatable.Record]{
		PageSize:        m.opts.PageSize,
		SuggestionLimit: m.opts.SuggestionLimit,
		Logger:          m.opts.Logger.With("resource", key),
		DeleteAction: func(ctx context.Context, ids []string) (datatable.DeleteResult, error) {
			res, err := data.DeleteMany(ctx, key, ids)
			if err != nil {
				return datatable.DeleteResult{}, err
			}
			return res.TableResult(), nil
		},
		Notifier: datatable.NotifierFunc(func(n datatable.Notification) {
			select {
			case s.notes <- n:
			default:
			}
		}),
	})

	commits := m.commits
	s.debounce = datatable.NewDebouncer(m.opts.Debounce, func(in filterInput) {
		// Never block the debouncer; a full buffer means the UI is gone.
		select {
		case commits <- filterCommitMsg{gen: gen, input: in}:
		default:
		}
	})

	ti := textinput.New()
	ti.CharLimit = 100
	ti.Width = 40
	s.input = ti
	return s
}

func (s *tableScreen) close() {
	s.debounce.Stop()
}

// update handles a key press. back is true when the user leaves the screen.
func (s *tableScreen) update(msg tea.KeyMsg) (cmd tea.Cmd, back bool) {
	if s.mode != modeNormal {
		return s.updateInput(msg), false
	}

	model := s.table.Model()
	switch {
	case key.Matches(msg, tableKeys.Back):
		return nil, true

	case key.Matches(msg, tableKeys.Up):
		if s.cursor > 0 {
			s.cursor--
		}

	case key.Matches(msg, tableKeys.Down):
		if s.cursor < len(model.Rows)-1 {
			s.cursor++
		}

	case key.Matches(msg, tableKeys.Left):
		if s.colCursor > 0 {
			s.colCursor--
		}

	case key.Matches(msg, tableKeys.Right):
		if s.colCursor < len(s.visibleColumns())-1 {
			s.colCursor++
		}

	case key.Matches(msg, tableKeys.Sort):
		col, ok := s.focused()
		if !ok {
			break
		}
		if err := s.table.ToggleSort(col.ID); err != nil {
			s.notify("Esta columna no se puede ordenar", datatable.VariantDefault)
		}

	case key.Matches(msg, tableKeys.Search):
		s.startInput(modeSearch, "", "Buscar: ", "Buscar...", s.table.State().GlobalFilter)
		return textinput.Blink, false

	case key.Matches(msg, tableKeys.Filter):
		col, ok := s.focused()
		if !ok {
			break
		}
		if !col.CanFilter {
			s.notify("Esta columna no se puede filtrar", datatable.VariantDefault)
			break
		}
		s.startInput(modeFilter, col.ID, col.Header+": ", filterHint(col.Kind), datatable.FormatFilterValue(col.Filter))
		return textinput.Blink, false

	case key.Matches(msg, tableKeys.Clear):
		s.debounce.Reset(filterInput{})
		s.table.ClearFilters()
		s.cursor = 0

	case key.Matches(msg, tableKeys.Toggle):
		if s.cursor < len(model.RowIDs) {
			s.table.ToggleRowSelection(model.RowIDs[s.cursor])
		}

	case key.Matches(msg, tableKeys.ToggleAll):
		s.table.ToggleAllVisible()

	case key.Matches(msg, tableKeys.Delete):
		return s.requestDelete(), false

	case key.Matches(msg, tableKeys.Next):
		s.table.NextPage()
		s.cursor = 0

	case key.Matches(msg, tableKeys.Prev):
		s.table.PreviousPage()
		s.cursor = 0
	}
	s.clampCursor()
	return nil, false
}

func filterHint(kind datatable.Kind) string {
	switch kind {
	case datatable.KindNumber:
		return "min..max"
	case datatable.KindDate:
		return "2024-01-01..2024-12-31"
	default:
		return "Filtrar..."
	}
}

func (s *tableScreen) startInput(mode inputMode, columnID, prompt, placeholder, value string) {
	s.mode = mode
	s.filterCol = columnID
	s.input.Prompt = prompt
	s.input.Placeholder = placeholder
	s.input.SetValue(value)
	s.input.CursorEnd()
	s.input.Focus()
	s.debounce.Reset(filterInput{ColumnID: columnID, Raw: value})
}

// updateInput edits the search or column filter box. Typing is debounced;
// enter commits at once and esc clears the filter.
func (s *tableScreen) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		s.debounce.Stop()
		s.applyFilter(s.debounce.Value())
		s.endInput()
		return nil
	case tea.KeyEsc:
		cleared := filterInput{ColumnID: s.filterCol}
		s.debounce.Reset(cleared)
		s.applyFilter(cleared)
		s.endInput()
		return nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.debounce.Input(filterInput{ColumnID: s.filterCol, Raw: s.input.Value()})
	return cmd
}

func (s *tableScreen) endInput() {
	s.mode = modeNormal
	s.filterCol = ""
	s.input.Blur()
}

// commit applies a debounced value unless newer input replaced it.
func (s *tableScreen) commit(in filterInput) {
	if in != s.debounce.Value() {
		return
	}
	s.applyFilter(in)
}

func (s *tableScreen) applyFilter(in filterInput) {
	if in.ColumnID == "" {
		s.table.SetGlobalFilter(in.Raw)
	} else if err := s.table.SetFilter(in.ColumnID, in.Raw); err != nil {
		s.notify("Filtro inválido", datatable.VariantDestructive)
	}
	s.clampCursor()
}

func (s *tableScreen) requestDelete() tea.Cmd {
	ids := s.table.SelectedIDs()
	if len(ids) == 0 {
		s.notify("No hay filas seleccionadas", datatable.VariantDefault)
		return nil
	}
	if s.deleting {
		return nil
	}
	s.deleting = true
	s.notify(fmt.Sprintf("Eliminando %d registros...", len(ids)), datatable.VariantDefault)

	t, notes, gen, timeout := s.table, s.notes, s.gen, s.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		outcome, err := t.RequestBulkDelete(ctx, ids)
		msg := deleteDoneMsg{gen: gen, outcome: outcome, err: err}
		select {
		case n := <-notes:
			msg.note = &n
		default:
		}
		return msg
	}
}

// deleted records the outcome of a bulk delete and reports whether the rows
// must be reloaded.
func (s *tableScreen) deleted(msg deleteDoneMsg) bool {
	s.deleting = false
	s.note = nil
	switch {
	case errors.Is(msg.err, datatable.ErrNoRowsSelected):
		s.notify("No hay filas seleccionadas", datatable.VariantDefault)
	case msg.err != nil:
		s.notify(core.MapError(msg.err).Message, datatable.VariantDestructive)
	case msg.note != nil:
		s.note = msg.note
	}
	return msg.outcome == datatable.BulkSuccess
}

func (s *tableScreen) setRows(rows []datatable.Record) {
	s.table.SetRows(rows)
	s.clampCursor()
}

func (s *tableScreen) notify(title string, v datatable.Variant) {
	s.note = &datatable.Notification{Title: title, Variant: v}
}

func (s *tableScreen) visibleColumns() []datatable.ColumnInfo {
	var out []datatable.ColumnInfo
	for _, c := range s.table.Columns() {
		if c.Visible {
			out = append(out, c)
		}
	}
	return out
}

func (s *tableScreen) focused() (datatable.ColumnInfo, bool) {
	cols := s.visibleColumns()
	if s.colCursor >= len(cols) {
		return datatable.ColumnInfo{}, false
	}
	return cols[s.colCursor], true
}

func (s *tableScreen) clampCursor() {
	n := len(s.table.Model().Rows)
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s *tableScreen) view(width int) string {
	model := s.table.Model()
	cols := s.visibleColumns()
	defs := s.table.VisibleColumns()

	var b strings.Builder
	b.WriteString(titleStyle.Render(s.resource.Label))
	b.WriteString("\n")

	switch {
	case s.mode != modeNormal:
		b.WriteString(s.input.View())
		b.WriteString("\n\n")
	case s.table.State().GlobalFilter != "":
		b.WriteString(subtleStyle.Render("Búsqueda: " + s.table.State().GlobalFilter))
		b.WriteString("\n\n")
	}

	widths := make([]int, len(cols))
	headers := make([]string, len(cols))
	for i, c := range cols {
		h := c.Header
		if c.Sorted {
			if c.Desc {
				h += " ▼"
			} else {
				h += " ▲"
			}
		}
		if c.Filter != nil {
			h += " *"
		}
		headers[i] = h
		widths[i] = min(lipgloss.Width(h), maxColWidth)
	}
	cells := make([][]string, len(model.Rows))
	for r, row := range model.Rows {
		cells[r] = make([]string, len(defs))
		for i, def := range defs {
			text := strings.ReplaceAll(def.Render(row), "\n", " ")
			cells[r][i] = text
			widths[i] = min(max(widths[i], lipgloss.Width(text)), maxColWidth)
		}
	}

	line := []string{"    "}
	for i, h := range headers {
		style := headerStyle
		if i == s.colCursor {
			style = focusedHeader
		}
		line = append(line, style.Width(widths[i]+2).Render(ansi.Truncate(h, widths[i], "…")))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, line...))
	b.WriteString("\n")

	if len(model.Rows) == 0 {
		b.WriteString(subtleStyle.Render("Sin resultados."))
		b.WriteString("\n")
	}
	for r := range model.Rows {
		mark := "[ ] "
		if s.table.IsSelected(model.RowIDs[r]) {
			mark = "[x] "
		}
		parts := []string{mark}
		for i, text := range cells[r] {
			parts = append(parts, cellStyle.Width(widths[i]+2).Render(ansi.Truncate(text, widths[i], "…")))
		}
		row := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
		if r == s.cursor {
			row = cursorRow.Render(row)
		}
		if width > 0 {
			row = ansi.Truncate(row, width, "")
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(fmt.Sprintf("%d de %d registros · Página %d de %d · %d seleccionados",
		model.FilteredCount, model.TotalCount, model.PageIndex+1, model.PageCount, model.SelectedCount)))
	b.WriteString("\n")

	if s.note != nil {
		text := s.note.Title
		if s.note.Description != "" {
			text += ": " + s.note.Description
		}
		b.WriteString(noteStyle(s.note.Variant).Render(text))
		b.WriteString("\n")
	}
	return b.String()
}
