package datatable

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	// ErrUnknownColumn is returned when an operation references a column id
	// that is not defined on the table.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrFilterKind is returned when a filter value does not match the
	// column's value kind.
	ErrFilterKind = errors.New("filter value does not match column kind")

	// ErrColumnNotSortable is returned when sorting is requested on a column
	// that disables it.
	ErrColumnNotSortable = errors.New("column is not sortable")
)

// Kind is the value kind of a column. It drives the filter input and the
// comparator used for sorting.
type Kind int

const (
	// KindAuto asks the engine to infer the kind from the rows.
	KindAuto Kind = iota
	KindText
	KindNumber
	KindDate
)

// String returns the lowercase kind name used by views and JSON payloads.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "auto"
	}
}

// Fielder is implemented by rows that expose named fields, allowing columns
// to be declared with a plain field key instead of an accessor function.
type Fielder interface {
	Field(key string) any
}

// Identifier is implemented by rows that know their own id.
type Identifier interface {
	RowID() string
}

// Record is a generic map-backed row. The "id" field is its identity.
type Record map[string]any

// Field returns the value stored under key.
func (r Record) Field(key string) any {
	return r[key]
}

// RowID returns the record's "id" field normalized to a string.
func (r Record) RowID() string {
	return IDString(r["id"])
}

// IDString normalizes a string or numeric id into the key used by selection
// state. Numbers and their string spelling map to the same key.
func IDString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case int:
		return strconv.Itoa(id)
	case int32:
		return strconv.FormatInt(int64(id), 10)
	case int64:
		return strconv.FormatInt(id, 10)
	case uint:
		return strconv.FormatUint(uint64(id), 10)
	case uint32:
		return strconv.FormatUint(uint64(id), 10)
	case uint64:
		return strconv.FormatUint(id, 10)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case fmt.Stringer:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}

// Column declares how one column of a table reads and renders its values.
// Either Key (with rows implementing Fielder) or Accessor must be set.
type Column[T any] struct {
	ID     string
	Header string

	// Key reads the value from a Fielder row.
	Key string

	// Accessor derives the value from a row. Takes precedence over Key.
	Accessor func(row T) any

	// Cell renders the display text of a cell. Defaults to the value's text form.
	Cell func(row T) string

	// Kind forces the value kind instead of sampling the rows.
	Kind Kind

	DisableFilter bool
	DisableSort   bool
}

// Value returns the raw value of the column for row.
func (c Column[T]) Value(row T) any {
	if c.Accessor != nil {
		return c.Accessor(row)
	}
	key := c.Key
	if key == "" {
		key = c.ID
	}
	if f, ok := any(row).(Fielder); ok {
		return f.Field(key)
	}
	return nil
}

// Render returns the display text of the column for row.
func (c Column[T]) Render(row T) string {
	if c.Cell != nil {
		return c.Cell(row)
	}
	return Text(c.Value(row))
}

// ColumnFilter is one entry of the filter state.
type ColumnFilter struct {
	ColumnID string
	Value    any
}

// SortSpec is one entry of the sort state.
type SortSpec struct {
	ColumnID string
	Desc     bool
}

// NumberRange is the filter value for numeric columns. A nil bound is open.
type NumberRange struct {
	Min *float64
	Max *float64
}

// IsZero reports whether both bounds are open.
func (r NumberRange) IsZero() bool {
	return r.Min == nil && r.Max == nil
}

// DateRange is the filter value for date columns. A nil bound is open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// IsZero reports whether both bounds are open.
func (r DateRange) IsZero() bool {
	return r.From == nil && r.To == nil
}

// Float returns a pointer to f, for building NumberRange literals.
func Float(f float64) *float64 {
	return &f
}

// Date returns a pointer to the UTC midnight of the given calendar day.
func Date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}
