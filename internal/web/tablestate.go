package web

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/JonMunkholm/crefinex/internal/datatable"
)

// tableQuery is the table state carried in a page URL:
//
//	page=2 size=20 sort=title,price dir=asc,desc q=ingles
//	filter[title]=curso filter[price]=10..50 filter[startDate]=2024-01-01..2024-06-30
//	min[price]=10 max[price]=50   (form inputs, merged into filter[price])
//	hide=id,createdAt
type tableQuery struct {
	Page    int
	Size    int
	Sorting []datatable.SortSpec
	Query   string
	Filters map[string]string
	Hidden  []string
}

// parseTableQuery reads the table state from v. size is clamped to
// [1, maxSize] and defaults to defaultSize.
func parseTableQuery(v url.Values, defaultSize, maxSize int) tableQuery {
	q := tableQuery{
		Page:    parsePositive(v.Get("page"), 1),
		Size:    parsePositive(v.Get("size"), defaultSize),
		Query:   strings.TrimSpace(v.Get("q")),
		Sorting: parseSorts(v.Get("sort"), v.Get("dir")),
		Filters: make(map[string]string),
	}
	if maxSize > 0 && q.Size > maxSize {
		q.Size = maxSize
	}

	bounds := make(map[string][2]string)
	for key, values := range v {
		if len(values) == 0 {
			continue
		}
		val := strings.TrimSpace(values[0])
		switch {
		case bracketed(key, "filter"):
			if val != "" {
				q.Filters[key[len("filter["):len(key)-1]] = val
			}
		case bracketed(key, "min"):
			col := key[len("min[") : len(key)-1]
			b := bounds[col]
			b[0] = val
			bounds[col] = b
		case bracketed(key, "max"):
			col := key[len("max[") : len(key)-1]
			b := bounds[col]
			b[1] = val
			bounds[col] = b
		}
	}
	for col, b := range bounds {
		if _, set := q.Filters[col]; set || (b[0] == "" && b[1] == "") {
			continue
		}
		q.Filters[col] = b[0] + ".." + b[1]
	}

	for _, col := range strings.Split(v.Get("hide"), ",") {
		if col = strings.TrimSpace(col); col != "" {
			q.Hidden = append(q.Hidden, col)
		}
	}
	return q
}

func bracketed(key, prefix string) bool {
	return len(key) > len(prefix)+2 && strings.HasPrefix(key, prefix+"[") && strings.HasSuffix(key, "]")
}

func parsePositive(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// parseSorts pairs comma-separated columns with directions; missing
// directions are ascending.
func parseSorts(sortStr, dirStr string) []datatable.SortSpec {
	if sortStr == "" {
		return nil
	}
	dirs := strings.Split(dirStr, ",")
	var out []datatable.SortSpec
	seen := make(map[string]bool)
	for i, col := range strings.Split(sortStr, ",") {
		col = strings.TrimSpace(col)
		if col == "" || seen[col] {
			continue
		}
		seen[col] = true
		desc := i < len(dirs) && strings.TrimSpace(dirs[i]) == "desc"
		out = append(out, datatable.SortSpec{ColumnID: col, Desc: desc})
	}
	return out
}

// apply pushes the query onto t. Unknown columns and values that do not fit
// a column are skipped so a stale bookmark still opens.
func (q tableQuery) apply(t *datatable.Table[datatable.Record]) {
	cols := make(map[string]datatable.ColumnInfo)
	for _, c := range t.Columns() {
		cols[c.ID] = c
	}

	for _, id := range q.Hidden {
		_ = t.SetColumnVisibility(id, false)
	}

	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, id := range keys {
		c, ok := cols[id]
		if !ok || !c.CanFilter {
			continue
		}
		if val, ok := datatable.ParseFilterValue(c.Kind, q.Filters[id]); ok {
			_ = t.SetFilter(id, val)
		}
	}

	var sorting []datatable.SortSpec
	for _, s := range q.Sorting {
		if c, ok := cols[s.ColumnID]; ok && c.CanSort {
			sorting = append(sorting, s)
		}
	}
	if len(sorting) > 0 {
		_ = t.SetSorting(sorting)
	}

	t.SetGlobalFilter(q.Query)
	t.SetPageSize(q.Size)
	t.SetPage(q.Page - 1)
}

// values encodes q back into URL parameters.
func (q tableQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	if q.Query != "" {
		v.Set("q", q.Query)
	}
	if len(q.Sorting) > 0 {
		cols := make([]string, len(q.Sorting))
		dirs := make([]string, len(q.Sorting))
		for i, s := range q.Sorting {
			cols[i] = s.ColumnID
			dirs[i] = "asc"
			if s.Desc {
				dirs[i] = "desc"
			}
		}
		v.Set("sort", strings.Join(cols, ","))
		v.Set("dir", strings.Join(dirs, ","))
	}
	for col, raw := range q.Filters {
		v.Set("filter["+col+"]", raw)
	}
	if len(q.Hidden) > 0 {
		v.Set("hide", strings.Join(q.Hidden, ","))
	}
	return v
}

func (q tableQuery) url(base string) string {
	enc := q.values().Encode()
	if enc == "" {
		return base
	}
	return base + "?" + enc
}

// withPage returns a copy of q on page (1-based).
func (q tableQuery) withPage(page int) tableQuery {
	q.Page = page
	return q
}

// withSortToggled cycles a single-column sort on col: ascending, descending,
// then unsorted, and returns to the first page.
func (q tableQuery) withSortToggled(col string) tableQuery {
	next := []datatable.SortSpec{{ColumnID: col}}
	if len(q.Sorting) > 0 && q.Sorting[0].ColumnID == col {
		if q.Sorting[0].Desc {
			next = nil
		} else {
			next[0].Desc = true
		}
	}
	q.Sorting = next
	q.Page = 1
	return q
}
