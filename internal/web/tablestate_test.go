package web

import (
	"net/url"
	"testing"

	"github.com/JonMunkholm/crefinex/internal/datatable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTableQuery(t *testing.T) {
	v, err := url.ParseQuery("page=3&size=500&sort=title,price&dir=,desc&q=+ingles+" +
		"&filter[title]=curso&min[price]=10&max[price]=50&min[startDate]=2024-01-01" +
		"&filter[level]=A1&min[level]=9&hide=id,+createdAt")
	require.NoError(t, err)

	q := parseTableQuery(v, 10, 100)

	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 100, q.Size, "size is clamped")
	assert.Equal(t, "ingles", q.Query)
	assert.Equal(t, []datatable.SortSpec{{ColumnID: "title"}, {ColumnID: "price", Desc: true}}, q.Sorting)
	assert.Equal(t, map[string]string{
		"title":     "curso",
		"price":     "10..50",
		"startDate": "2024-01-01..",
		"level":     "A1",
	}, q.Filters, "explicit filter wins over bounds")
	assert.Equal(t, []string{"id", "createdAt"}, q.Hidden)
}

func TestParseTableQuery_Defaults(t *testing.T) {
	q := parseTableQuery(url.Values{"page": {"-1"}, "size": {"x"}}, 20, 100)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 20, q.Size)
	assert.Empty(t, q.Filters)
	assert.Nil(t, q.Sorting)
}

func TestTableQuery_SortToggleCycle(t *testing.T) {
	q := tableQuery{Page: 4, Size: 10}

	q = q.withSortToggled("price")
	assert.Equal(t, []datatable.SortSpec{{ColumnID: "price"}}, q.Sorting)
	assert.Equal(t, 1, q.Page)

	q = q.withSortToggled("price")
	assert.Equal(t, []datatable.SortSpec{{ColumnID: "price", Desc: true}}, q.Sorting)

	q = q.withSortToggled("price")
	assert.Empty(t, q.Sorting)

	q = q.withSortToggled("title").withSortToggled("price")
	assert.Equal(t, []datatable.SortSpec{{ColumnID: "price"}}, q.Sorting, "another column starts ascending")
}

func TestTableQuery_URLRoundTrip(t *testing.T) {
	q := tableQuery{
		Page:    2,
		Size:    20,
		Query:   "inglés",
		Sorting: []datatable.SortSpec{{ColumnID: "price", Desc: true}},
		Filters: map[string]string{"price": "10..", "title": "a&b"},
		Hidden:  []string{"id"},
	}
	u, err := url.Parse(q.url("/dashboard/courses"))
	require.NoError(t, err)
	assert.Equal(t, "/dashboard/courses", u.Path)

	back := parseTableQuery(u.Query(), 10, 100)
	assert.Equal(t, q, back)
}

func TestTableQuery_ApplySkipsUnknownColumns(t *testing.T) {
	rows := []datatable.Record{
		{"id": "1", "title": "Inglés", "price": 100.0},
		{"id": "2", "title": "Francés", "price": 50.0},
	}
	cols := []datatable.Column[datatable.Record]{
		{ID: "id", DisableFilter: true, DisableSort: true},
		{ID: "title"},
		{ID: "price", Kind: datatable.KindNumber},
	}
	tbl := datatable.New(cols, rows, datatable.Options[datatable.Record]{})

	q := tableQuery{
		Page:    1,
		Size:    10,
		Sorting: []datatable.SortSpec{{ColumnID: "id"}, {ColumnID: "ghost"}, {ColumnID: "price"}},
		Filters: map[string]string{"ghost": "x", "id": "1", "price": "..60"},
	}
	q.apply(tbl)

	m := tbl.Model()
	assert.Equal(t, []string{"2"}, m.RowIDs)
	assert.Equal(t, []datatable.SortSpec{{ColumnID: "price"}}, tbl.State().Sorting)
}
