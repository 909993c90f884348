package datatable

import (
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func TestCompareAlphanumeric(t *testing.T) {
	tests := []struct {
		a, b string
		want int // sign only
	}{
		{"Nivel 2", "Nivel 10", -1},
		{"nivel 10", "Nivel 2", 1},
		{"Curso A", "curso a", 0},
		{"a", "1", -1},
		{"1", "a", 1},
		{"abc", "abd", -1},
		{"item", "item 1", -1},
		{"B1", "A2", 1},
		{"", "", 0},
		{"a99999999999999999999999", "a5", 1},
		{"x18446744073709551616", "x18446744073709551615", 1},
		{"Nivel 007", "Nivel 7", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			got := CompareAlphanumeric(tt.a, tt.b)
			switch {
			case tt.want < 0:
				assert.Negative(t, got)
			case tt.want > 0:
				assert.Positive(t, got)
			default:
				assert.Zero(t, got)
			}
		})
	}
}

func TestCompareValues(t *testing.T) {
	jan := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	assert.Negative(t, compareValues(KindNumber, 9, 10.5))
	assert.Positive(t, compareValues(KindNumber, pgtype.Numeric{Int: big.NewInt(1234), Exp: -2, Valid: true}, 12))
	assert.Negative(t, compareValues(KindDate, jan, feb))
	assert.Negative(t, compareValues(KindDate, "2024-01-02", feb))
	// Text order would put "10" before "9".
	assert.Positive(t, compareValues(KindNumber, 10, 9))
	assert.Negative(t, compareValues(KindText, "Nivel 9", "Nivel 10"))
}

func TestInferKind(t *testing.T) {
	rows := []Record{
		{"id": 1, "price": nil, "title": "", "created": "2024-01-01", "note": nil},
		{"id": 2, "price": 10, "title": "Curso", "created": nil, "note": nil},
	}

	tests := []struct {
		col  Column[Record]
		want Kind
	}{
		{Column[Record]{ID: "price"}, KindNumber},
		{Column[Record]{ID: "title"}, KindText},
		{Column[Record]{ID: "created"}, KindDate},
		{Column[Record]{ID: "note"}, KindText},
		{Column[Record]{ID: "price", Kind: KindText}, KindText},
	}

	for _, tt := range tests {
		t.Run(tt.col.ID, func(t *testing.T) {
			assert.Equal(t, tt.want, InferKind(tt.col, rows))
		})
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "Curso", "Curso"},
		{"int", 42, "42"},
		{"float", 10.5, "10.5"},
		{"bool", true, "Sí"},
		{"date", time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), "2024-03-05"},
		{"pg text", pgtype.Text{String: "Libro", Valid: true}, "Libro"},
		{"pg null text", pgtype.Text{}, ""},
		{"pg null int", pgtype.Int8{}, ""},
		{"pg numeric", pgtype.Numeric{Int: big.NewInt(1050), Exp: -2, Valid: true}, "10.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(nil))
	assert.True(t, IsEmpty("  "))
	assert.True(t, IsEmpty(pgtype.Date{}))
	assert.False(t, IsEmpty(0))
	assert.False(t, IsEmpty(false))
	assert.False(t, IsEmpty("x"))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"10", 10, true},
		{" $1,250.50 ", 1250.5, true},
		{"1,5", 1.5, true},
		{"-0,25", -0.25, true},
		{"1,500", 1500, true},
		{"1,234,567", 1234567, true},
		{"1.234,5", 1234.5, true},
		{"1.234.567,89", 1234567.89, true},
		{",5", 0.5, true},
		{"-3", -3, true},
		{"1e3", 1000, true},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2024-01-15", "2024-01-15T10:00:00Z", "15/01/2024", "2024/01/15"} {
		got, ok := ParseDate(in)
		if assert.True(t, ok, in) {
			assert.Equal(t, "2024-01-15", got.Format("2006-01-02"), in)
		}
	}

	_, ok := ParseDate("2024-02-30")
	assert.False(t, ok)
	_, ok = ParseDate("mañana")
	assert.False(t, ok)
}
