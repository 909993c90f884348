package datatable

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priceRows() []Record {
	return []Record{
		{"id": 1, "price": 10},
		{"id": 2, "price": 25},
		{"id": 3, "price": 5},
	}
}

func priceColumns() []Column[Record] {
	return []Column[Record]{
		{ID: "id", Header: "ID", DisableFilter: true},
		{ID: "price", Header: "Precio"},
	}
}

func ids(rows []Record) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.RowID()
	}
	return out
}

func TestTable_NumberRangeThenSort(t *testing.T) {
	table := New(priceColumns(), priceRows(), Options[Record]{})

	kind, err := table.Kind("price")
	require.NoError(t, err)
	assert.Equal(t, KindNumber, kind)

	require.NoError(t, table.SetFilter("price", NumberRange{Min: Float(5), Max: Float(10)}))
	assert.Equal(t, []string{"1", "3"}, ids(table.Model().Filtered))

	require.NoError(t, table.ToggleSort("price"))
	assert.Equal(t, []string{"3", "1"}, ids(table.Model().Filtered))
}

func TestTable_NumberRangeBoundsInclusive(t *testing.T) {
	table := New(priceColumns(), priceRows(), Options[Record]{})

	tests := []struct {
		name string
		r    NumberRange
		want []string
	}{
		{"exact min", NumberRange{Min: Float(25)}, []string{"2"}},
		{"exact max", NumberRange{Max: Float(5)}, []string{"3"}},
		{"both exact", NumberRange{Min: Float(10), Max: Float(10)}, []string{"1"}},
		{"reversed bounds", NumberRange{Min: Float(10), Max: Float(5)}, []string{"1", "3"}},
		{"open bounds clear the filter", NumberRange{}, []string{"1", "2", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, table.SetFilter("price", tt.r))
			assert.Equal(t, tt.want, ids(table.Model().Filtered))
		})
	}
}

func TestTable_SerializedNumberFilter(t *testing.T) {
	table := New(priceColumns(), priceRows(), Options[Record]{})

	require.NoError(t, table.SetFilter("price", "6.."))
	assert.Equal(t, []string{"1", "2"}, ids(table.Model().Filtered))

	require.NoError(t, table.SetFilter("price", "25"))
	assert.Equal(t, []string{"2"}, ids(table.Model().Filtered))

	require.NoError(t, table.SetFilter("price", ""))
	assert.Equal(t, 3, table.Model().FilteredCount)
	assert.Empty(t, table.State().Filters)
}

func TestTable_SetFilterErrors(t *testing.T) {
	table := New(priceColumns(), priceRows(), Options[Record]{})

	assert.ErrorIs(t, table.SetFilter("missing", "x"), ErrUnknownColumn)
	assert.ErrorIs(t, table.SetFilter("id", "1"), ErrColumnNotFilterable)
	assert.ErrorIs(t, table.SetFilter("price", DateRange{From: Date(2024, 1, 1)}), ErrFilterKind)
	assert.ErrorIs(t, table.SetFilter("price", 42), ErrFilterKind)
	assert.Empty(t, table.State().Filters)
}

func TestTable_EqualityFilterKeepsOriginalOrder(t *testing.T) {
	rows := []Record{
		{"id": 1, "level": "B1"},
		{"id": 2, "level": "A1"},
		{"id": 3, "level": "B1"},
		{"id": 4, "level": "C2"},
		{"id": 5, "level": "B1"},
	}
	table := New([]Column[Record]{{ID: "level"}}, rows, Options[Record]{})

	require.NoError(t, table.SetFilter("level", "B1"))
	assert.Equal(t, []string{"1", "3", "5"}, ids(table.Model().Filtered))
}

func TestTable_SortToggleThreeTimesRestoresOrder(t *testing.T) {
	table := New(priceColumns(), priceRows(), Options[Record]{})
	original := ids(table.Model().Filtered)

	require.NoError(t, table.ToggleSort("price"))
	assert.Equal(t, []string{"3", "1", "2"}, ids(table.Model().Filtered))

	require.NoError(t, table.ToggleSort("price"))
	assert.Equal(t, []string{"2", "1", "3"}, ids(table.Model().Filtered))

	require.NoError(t, table.ToggleSort("price"))
	assert.Equal(t, original, ids(table.Model().Filtered))
	assert.Empty(t, table.State().Sorting)
}

func TestTable_SortEmptyValuesLast(t *testing.T) {
	rows := []Record{
		{"id": 1, "name": ""},
		{"id": 2, "name": "Nivel 10"},
		{"id": 3, "name": nil},
		{"id": 4, "name": "Nivel 2"},
	}
	table := New([]Column[Record]{{ID: "name"}}, rows, Options[Record]{})

	require.NoError(t, table.ToggleSort("name"))
	assert.Equal(t, []string{"4", "2", "1", "3"}, ids(table.Model().Filtered))

	require.NoError(t, table.ToggleSort("name"))
	assert.Equal(t, []string{"2", "4", "1", "3"}, ids(table.Model().Filtered))
}

func TestTable_SortMismatchedValuesAfterValid(t *testing.T) {
	cols := []Column[Record]{
		{ID: "id", Header: "ID", DisableFilter: true},
		{ID: "price", Header: "Precio", Kind: KindNumber},
	}
	rows := []Record{
		{"id": 1, "price": nil},
		{"id": 2, "price": 3},
		{"id": 3, "price": "abc"},
		{"id": 4, "price": 7},
	}
	table := New(cols, rows, Options[Record]{})

	require.NoError(t, table.ToggleSort("price"))
	assert.Equal(t, []string{"2", "4", "3", "1"}, ids(table.Model().Filtered))

	require.NoError(t, table.ToggleSort("price"))
	assert.Equal(t, []string{"4", "2", "3", "1"}, ids(table.Model().Filtered))
}

func TestTable_SortErrors(t *testing.T) {
	cols := []Column[Record]{{ID: "id", DisableSort: true}, {ID: "price"}}
	table := New(cols, priceRows(), Options[Record]{})

	assert.ErrorIs(t, table.ToggleSort("id"), ErrColumnNotSortable)
	assert.ErrorIs(t, table.ToggleSort("nope"), ErrUnknownColumn)
	assert.ErrorIs(t, table.SetSorting([]SortSpec{{ColumnID: "nope"}}), ErrUnknownColumn)
}

func TestTable_GlobalFilter(t *testing.T) {
	rows := []Record{
		{"id": 1, "title": "Curso A"},
		{"id": 2, "title": "Manual B"},
	}
	table := New([]Column[Record]{{ID: "id"}, {ID: "title"}}, rows, Options[Record]{})

	table.SetGlobalFilter("curs")
	m := table.Model()
	assert.Equal(t, []string{"1"}, ids(m.Filtered))
	assert.Equal(t, 2, m.TotalCount)
	assert.Equal(t, 1, m.FilteredCount)
}

func TestTable_GlobalFilterRankOrder(t *testing.T) {
	rows := []Record{
		{"id": 1, "title": "Recursos"},
		{"id": 2, "title": "Manual de cursos"},
		{"id": 3, "title": "Curso B"},
		{"id": 4, "title": "curs"},
		{"id": 5, "title": "Curso A"},
		{"id": 6, "title": "Libro"},
	}
	table := New([]Column[Record]{{ID: "id"}, {ID: "title"}}, rows, Options[Record]{})

	table.SetGlobalFilter("curs")
	assert.Equal(t, []string{"4", "5", "3", "2", "1"}, ids(table.Model().Filtered))

	// An explicit sort wins over rank order.
	require.NoError(t, table.ToggleSort("id"))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(table.Model().Filtered))
}

func TestTable_FiltersCombineWithAnd(t *testing.T) {
	rows := []Record{
		{"id": 1, "title": "Curso A", "price": 10},
		{"id": 2, "title": "Curso B", "price": 30},
		{"id": 3, "title": "Manual", "price": 12},
	}
	cols := []Column[Record]{{ID: "title"}, {ID: "price"}}
	table := New(cols, rows, Options[Record]{})

	require.NoError(t, table.SetFilter("price", NumberRange{Max: Float(20)}))
	table.SetGlobalFilter("curso")
	assert.Equal(t, []string{"1"}, ids(table.Model().Filtered))

	table.ClearFilters()
	assert.Equal(t, 3, table.Model().FilteredCount)
}

func TestTable_DateRangeFilter(t *testing.T) {
	rows := []Record{
		{"id": 1, "created": time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC)},
		{"id": 2, "created": time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)},
		{"id": 3, "created": time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"id": 4, "created": "not a date"},
		{"id": 5, "created": "2024-01-15"},
	}
	table := New([]Column[Record]{{ID: "created"}}, rows, Options[Record]{})

	kind, err := table.Kind("created")
	require.NoError(t, err)
	assert.Equal(t, KindDate, kind)

	require.NoError(t, table.SetFilter("created", DateRange{From: Date(2024, 1, 1), To: Date(2024, 1, 31)}))
	assert.Equal(t, []string{"1", "2", "5"}, ids(table.Model().Filtered))

	require.NoError(t, table.SetFilter("created", "2024-02-01.."))
	assert.Equal(t, []string{"3"}, ids(table.Model().Filtered))

	// A malformed bound is ignored rather than rejected.
	require.NoError(t, table.SetFilter("created", "garbage..2024-01-01"))
	assert.Equal(t, []string{"1"}, ids(table.Model().Filtered))
}

func TestTable_SelectionSurvivesNarrowing(t *testing.T) {
	table := New(priceColumns(), priceRows(), Options[Record]{})

	table.ToggleAllVisible()
	assert.Equal(t, []string{"1", "2", "3"}, table.SelectedIDs())

	require.NoError(t, table.SetFilter("price", NumberRange{Min: Float(5), Max: Float(10)}))
	assert.True(t, table.IsSelected("2"))
	assert.Equal(t, 3, table.Model().SelectedCount)

	// Toggling the visible page only touches visible rows.
	table.ToggleAllVisible()
	assert.Equal(t, []string{"2"}, table.SelectedIDs())
}

func TestTable_StaleSelectionExcluded(t *testing.T) {
	rows := priceRows()
	table := New(priceColumns(), rows, Options[Record]{})

	table.ToggleRowSelection("1")
	table.ToggleRowSelection("2")
	table.SetRows(rows[1:])

	assert.Equal(t, []string{"2"}, table.SelectedIDs())
	assert.Equal(t, 1, table.Model().SelectedCount)
	assert.True(t, table.State().Selected("1"))
}

func TestTable_ToggleAllFiltered(t *testing.T) {
	rows := make([]Record, 25)
	for i := range rows {
		rows[i] = Record{"id": i + 1, "price": i + 1}
	}
	table := New(priceColumns(), rows, Options[Record]{})
	require.NoError(t, table.SetFilter("price", NumberRange{Max: Float(15)}))

	// Spans both pages of the filtered rows, not only the visible one.
	table.ToggleAllFiltered()
	assert.Len(t, table.SelectedIDs(), 15)
	assert.False(t, table.IsSelected("16"))

	selected := table.SelectedRows()
	require.Len(t, selected, 15)
	assert.Equal(t, "1", selected[0].RowID())

	table.ToggleAllFiltered()
	assert.Empty(t, table.SelectedIDs())
}

func TestTable_MultiSort(t *testing.T) {
	cols := []Column[Record]{
		{ID: "id", Header: "ID", DisableFilter: true},
		{ID: "group", Header: "Grupo"},
		{ID: "price", Header: "Precio"},
	}
	rows := []Record{
		{"id": 1, "group": "a", "price": 10},
		{"id": 2, "group": "b", "price": 5},
		{"id": 3, "group": "a", "price": 30},
		{"id": 4, "group": "b", "price": 20},
	}
	table := New(cols, rows, Options[Record]{})

	require.NoError(t, table.ToggleSort("group"))
	require.NoError(t, table.ToggleMultiSort("price"))
	assert.Equal(t, []string{"1", "3", "2", "4"}, ids(table.Model().Filtered))

	require.NoError(t, table.ToggleMultiSort("price"))
	assert.Equal(t, []string{"3", "1", "4", "2"}, ids(table.Model().Filtered))
	assert.Len(t, table.State().Sorting, 2)

	// Third toggle drops the secondary key only.
	require.NoError(t, table.ToggleMultiSort("price"))
	assert.Equal(t, []SortSpec{{ColumnID: "group"}}, table.State().Sorting)
	assert.Equal(t, []string{"1", "3", "2", "4"}, ids(table.Model().Filtered))

	// A plain toggle replaces the whole sort.
	require.NoError(t, table.ToggleSort("price"))
	assert.Equal(t, []SortSpec{{ColumnID: "price"}}, table.State().Sorting)
}

func TestTable_Pagination(t *testing.T) {
	rows := make([]Record, 25)
	for i := range rows {
		rows[i] = Record{"id": i + 1, "price": i + 1}
	}
	table := New(priceColumns(), rows, Options[Record]{})

	m := table.Model()
	assert.Equal(t, 3, m.PageCount)
	assert.Len(t, m.Rows, 10)
	assert.False(t, m.CanPrevious())

	table.SetPage(2)
	m = table.Model()
	assert.Equal(t, 2, m.PageIndex)
	assert.Equal(t, []string{"21", "22", "23", "24", "25"}, m.RowIDs)
	assert.False(t, m.CanNext())

	table.NextPage()
	assert.Equal(t, 2, table.Model().PageIndex)

	// Still 25 rows, page 2 exists: stay.
	require.NoError(t, table.SetFilter("price", NumberRange{Min: Float(1)}))
	assert.Equal(t, 2, table.Model().PageIndex)

	// Only 10 rows left: page 2 would be empty.
	require.NoError(t, table.SetFilter("price", NumberRange{Max: Float(10)}))
	assert.Equal(t, 0, table.State().PageIndex)

	table.SetPageSize(5)
	assert.Equal(t, 2, table.Model().PageCount)
}

func TestTable_EmptyModel(t *testing.T) {
	table := New(priceColumns(), priceRows(), Options[Record]{})

	require.NoError(t, table.SetFilter("price", NumberRange{Min: Float(1000)}))
	m := table.Model()
	assert.True(t, m.Empty())
	assert.Empty(t, m.Rows)
	assert.Equal(t, 1, m.PageCount)
}

func TestTable_Facets(t *testing.T) {
	rows := []Record{
		{"id": 1, "level": "B1", "price": 10},
		{"id": 2, "level": "A1", "price": 25},
		{"id": 3, "level": "B1", "price": 5},
		{"id": 4, "level": "", "price": 40},
	}
	cols := []Column[Record]{{ID: "level"}, {ID: "price"}}
	table := New(cols, rows, Options[Record]{SuggestionLimit: 1})

	f, err := table.Facets("level")
	require.NoError(t, err)
	assert.Equal(t, KindText, f.Kind)
	assert.Equal(t, map[string]int{"B1": 2, "A1": 1}, f.Unique)
	assert.Equal(t, []string{"A1"}, f.Suggestions)

	// A column's own filter does not narrow its facets; others do.
	require.NoError(t, table.SetFilter("level", "B1"))
	require.NoError(t, table.SetFilter("price", NumberRange{Min: Float(20)}))

	f, err = table.Facets("level")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A1": 1}, f.Unique)

	f, err = table.Facets("price")
	require.NoError(t, err)
	require.NotNil(t, f.Min)
	require.NotNil(t, f.Max)
	assert.Equal(t, 5.0, *f.Min)
	assert.Equal(t, 10.0, *f.Max)
	assert.Nil(t, f.Suggestions)

	_, err = table.Facets("missing")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestTable_Callbacks(t *testing.T) {
	var (
		data     [][]string
		last     []string
		selected [][]string
	)
	table := New(priceColumns(), priceRows(), Options[Record]{
		OnDataChange: func(rows []Record) {
			data = append(data, ids(rows))
		},
		OnSelectionChange: func(row *Record, rows []Record) {
			if row != nil {
				last = append(last, row.RowID())
			}
			selected = append(selected, ids(rows))
		},
	})

	require.NoError(t, table.SetFilter("price", NumberRange{Max: Float(10)}))
	table.ToggleRowSelection("3")
	table.ToggleRowSelection("1")

	assert.Equal(t, [][]string{{"1", "3"}}, data)
	assert.Equal(t, []string{"3", "1"}, last)
	assert.Equal(t, [][]string{{"3"}, {"1", "3"}}, selected)

	// Touch changes the reported row without a callback of its own.
	table.Touch("2")
	assert.Len(t, selected, 2)
	table.ToggleAllVisible()
	assert.Equal(t, []string{"3", "1", "2"}, last)
}

func TestTable_SetRowsSameSliceIsNoop(t *testing.T) {
	calls := 0
	rows := priceRows()
	table := New(priceColumns(), rows, Options[Record]{
		OnDataChange: func([]Record) { calls++ },
	})

	table.SetRows(rows)
	assert.Equal(t, 0, calls)

	table.SetRows(priceRows())
	assert.Equal(t, 1, calls)
}

func TestTable_ColumnVisibilityAndExport(t *testing.T) {
	rows := []Record{
		{"id": 1, "title": "Curso A", "price": 10},
		{"id": 2, "title": "Curso B", "price": 30},
	}
	cols := []Column[Record]{
		{ID: "id", Header: "ID"},
		{ID: "title", Header: "Título"},
		{ID: "price", Header: "Precio", Cell: func(r Record) string {
			return fmt.Sprintf("$%v", r["price"])
		}},
	}
	table := New(cols, rows, Options[Record]{})

	require.NoError(t, table.SetColumnVisibility("id", false))
	require.NoError(t, table.ToggleSort("price"))
	require.NoError(t, table.ToggleSort("price"))

	header, records := table.ExportRows()
	assert.Equal(t, []string{"Título", "Precio"}, header)
	assert.Equal(t, [][]string{{"Curso B", "$30"}, {"Curso A", "$10"}}, records)

	info := table.Columns()
	require.Len(t, info, 3)
	assert.False(t, info[0].Visible)
	assert.True(t, info[2].Sorted)
	assert.True(t, info[2].Desc)

	assert.ErrorIs(t, table.SetColumnVisibility("nope", true), ErrUnknownColumn)
}

type course struct {
	ID    int
	Title string
}

func TestTable_StructRowsWithAccessor(t *testing.T) {
	rows := []course{{ID: 7, Title: "Inglés B2"}, {ID: 9, Title: "Francés A1"}}
	cols := []Column[course]{
		{ID: "title", Accessor: func(c course) any { return c.Title }},
	}
	table := New(cols, rows, Options[course]{
		RowID: func(c course) string { return fmt.Sprint(c.ID) },
	})

	table.SetGlobalFilter("ingles")
	m := table.Model()
	require.Len(t, m.Rows, 1)
	assert.Equal(t, "7", m.RowIDs[0])
}

func TestTable_ConcurrentUse(t *testing.T) {
	rows := make([]Record, 100)
	for i := range rows {
		rows[i] = Record{"id": i, "price": i % 17}
	}
	table := New(priceColumns(), rows, Options[Record]{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = table.SetFilter("price", NumberRange{Min: Float(float64(j % 5))})
				table.ToggleRowSelection(fmt.Sprint(j))
				_ = table.Model()
				_, _ = table.Facets("price")
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 100, table.Model().TotalCount)
}

func TestTable_RequestBulkDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("error keeps selection", func(t *testing.T) {
		var notes []Notification
		var got []string
		table := New(priceColumns(), priceRows(), Options[Record]{
			DeleteAction: func(_ context.Context, ids []string) (DeleteResult, error) {
				got = ids
				return DeleteResult{Error: "db locked"}, nil
			},
			Notifier: NotifierFunc(func(n Notification) { notes = append(notes, n) }),
		})
		table.ToggleRowSelection("1")
		table.ToggleRowSelection("2")

		outcome, err := table.RequestBulkDelete(ctx, []string{"1", "2"})
		require.NoError(t, err)
		assert.Equal(t, BulkError, outcome)
		assert.Equal(t, []string{"1", "2"}, got)

		assert.True(t, table.IsSelected("1"))
		assert.True(t, table.IsSelected("2"))
		assert.Equal(t, 3, table.Model().TotalCount)

		require.Len(t, notes, 1)
		assert.Equal(t, VariantDestructive, notes[0].Variant)
		assert.Equal(t, "Parece que hubo un problema", notes[0].Title)
		assert.Equal(t, "db locked", notes[0].Description)
	})

	t.Run("transport error keeps selection", func(t *testing.T) {
		var notes []Notification
		table := New(priceColumns(), priceRows(), Options[Record]{
			DeleteAction: func(context.Context, []string) (DeleteResult, error) {
				return DeleteResult{}, fmt.Errorf("connection reset")
			},
			Notifier: NotifierFunc(func(n Notification) { notes = append(notes, n) }),
		})
		table.ToggleRowSelection("1")

		outcome, err := table.RequestBulkDeleteSelected(ctx)
		require.NoError(t, err)
		assert.Equal(t, BulkError, outcome)
		assert.True(t, table.IsSelected("1"))
		require.Len(t, notes, 1)
		assert.Equal(t, VariantDestructive, notes[0].Variant)
	})

	t.Run("success clears deleted ids", func(t *testing.T) {
		var notes []Notification
		table := New(priceColumns(), priceRows(), Options[Record]{
			DeleteAction: func(context.Context, []string) (DeleteResult, error) {
				return DeleteResult{Success: "Registros eliminados"}, nil
			},
			Notifier: NotifierFunc(func(n Notification) { notes = append(notes, n) }),
		})
		table.ToggleAllVisible()

		outcome, err := table.RequestBulkDelete(ctx, []string{"1", "2"})
		require.NoError(t, err)
		assert.Equal(t, BulkSuccess, outcome)
		assert.Equal(t, []string{"3"}, table.SelectedIDs())
		// Rows stay until the caller refreshes them.
		assert.Equal(t, 3, table.Model().TotalCount)

		require.Len(t, notes, 1)
		assert.Equal(t, VariantSuccess, notes[0].Variant)
		assert.Equal(t, "Registros eliminados", notes[0].Title)
	})

	t.Run("empty result is a no-op", func(t *testing.T) {
		table := New(priceColumns(), priceRows(), Options[Record]{
			DeleteAction: func(context.Context, []string) (DeleteResult, error) {
				return DeleteResult{}, nil
			},
			Notifier: NotifierFunc(func(Notification) { t.Fatal("unexpected notification") }),
		})
		table.ToggleRowSelection("1")

		outcome, err := table.RequestBulkDelete(ctx, []string{"1"})
		require.NoError(t, err)
		assert.Equal(t, BulkNoop, outcome)
		assert.True(t, table.IsSelected("1"))
	})

	t.Run("empty and stale ids never invoke the action", func(t *testing.T) {
		called := false
		table := New(priceColumns(), priceRows(), Options[Record]{
			DeleteAction: func(context.Context, []string) (DeleteResult, error) {
				called = true
				return DeleteResult{Success: "ok"}, nil
			},
		})

		_, err := table.RequestBulkDelete(ctx, nil)
		assert.ErrorIs(t, err, ErrNoRowsSelected)

		_, err = table.RequestBulkDelete(ctx, []string{"99"})
		assert.ErrorIs(t, err, ErrNoRowsSelected)

		assert.False(t, called)
	})

	t.Run("disabled without action", func(t *testing.T) {
		table := New(priceColumns(), priceRows(), Options[Record]{})
		assert.False(t, table.BulkDeleteEnabled())
		_, err := table.RequestBulkDelete(ctx, []string{"1"})
		assert.ErrorIs(t, err, ErrNoDeleteAction)
	})

	t.Run("overlapping requests are rejected", func(t *testing.T) {
		release := make(chan struct{})
		table := New(priceColumns(), priceRows(), Options[Record]{
			DeleteAction: func(context.Context, []string) (DeleteResult, error) {
				<-release
				return DeleteResult{Success: "ok"}, nil
			},
		})

		done := make(chan BulkOutcome)
		go func() {
			outcome, _ := table.RequestBulkDelete(ctx, []string{"1"})
			done <- outcome
		}()

		require.Eventually(t, table.BulkDeleteInFlight, time.Second, time.Millisecond)
		_, err := table.RequestBulkDelete(ctx, []string{"2"})
		assert.ErrorIs(t, err, ErrBulkDeleteInFlight)

		close(release)
		assert.Equal(t, BulkSuccess, <-done)
		assert.False(t, table.BulkDeleteInFlight())
	})
}
