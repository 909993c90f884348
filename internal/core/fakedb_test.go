package core

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDB is an in-memory DBTX. Each method matches the first registered
// handler whose key is contained in the SQL text.
type fakeDB struct {
	mu sync.Mutex

	execs   map[string]func(args []any) (pgconn.CommandTag, error)
	queries map[string]func(args []any) (*fakeRows, error)
	rows    map[string]func(args []any) *fakeRow

	calls []fakeCall
}

type fakeCall struct {
	sql  string
	args []any
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		execs:   map[string]func([]any) (pgconn.CommandTag, error){},
		queries: map[string]func([]any) (*fakeRows, error){},
		rows:    map[string]func([]any) *fakeRow{},
	}
}

func (f *fakeDB) record(sql string, args []any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{sql: sql, args: args})
}

// callsMatching returns the recorded calls whose SQL contains fragment.
func (f *fakeDB) callsMatching(fragment string) []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fakeCall
	for _, c := range f.calls {
		if strings.Contains(c.sql, fragment) {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	f.record(sql, args)
	for key, h := range f.execs {
		if strings.Contains(sql, key) {
			return h(args)
		}
	}
	return pgconn.CommandTag{}, fmt.Errorf("unexpected exec: %s", sql)
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	f.record(sql, args)
	for key, h := range f.queries {
		if strings.Contains(sql, key) {
			rows, err := h(args)
			if err != nil {
				return nil, err
			}
			return rows, nil
		}
	}
	return nil, fmt.Errorf("unexpected query: %s", sql)
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...interface{}) pgx.Row {
	f.record(sql, args)
	for key, h := range f.rows {
		if strings.Contains(sql, key) {
			return h(args)
		}
	}
	return &fakeRow{err: fmt.Errorf("unexpected query row: %s", sql)}
}

// fakeRow scans fixed values into destinations of matching types.
type fakeRow struct {
	values []any
	err    error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

// fakeRows iterates over fixed rows.
type fakeRows struct {
	fields []pgconn.FieldDescription
	data   [][]any
	pos    int
	err    error
	closed bool
}

func newFakeRows(columns []string, data ...[]any) *fakeRows {
	fields := make([]pgconn.FieldDescription, len(columns))
	for i, c := range columns {
		fields[i] = pgconn.FieldDescription{Name: c}
	}
	return &fakeRows{fields: fields, data: data}
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return r.fields }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.closed || r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	if r.pos == 0 {
		return nil, errors.New("Values called before Next")
	}
	return r.data[r.pos-1], nil
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.pos == 0 {
		return errors.New("Scan called before Next")
	}
	return assign(dest, r.data[r.pos-1])
}

func assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, d := range dest {
		if values[i] == nil {
			continue
		}
		target := reflect.ValueOf(d).Elem()
		v := reflect.ValueOf(values[i])
		if !v.Type().AssignableTo(target.Type()) {
			return fmt.Errorf("scan: cannot assign %T to %s", values[i], target.Type())
		}
		target.Set(v)
	}
	return nil
}
