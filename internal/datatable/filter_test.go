package datatable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilterValue(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		v, ok := ParseFilterValue(KindText, "  curso ")
		require.True(t, ok)
		assert.Equal(t, "curso", v)
	})

	t.Run("number range", func(t *testing.T) {
		v, ok := ParseFilterValue(KindNumber, "5..10")
		require.True(t, ok)
		r := v.(NumberRange)
		assert.Equal(t, 5.0, *r.Min)
		assert.Equal(t, 10.0, *r.Max)
	})

	t.Run("open number bound", func(t *testing.T) {
		v, ok := ParseFilterValue(KindNumber, "..10")
		require.True(t, ok)
		r := v.(NumberRange)
		assert.Nil(t, r.Min)
		assert.Equal(t, 10.0, *r.Max)
	})

	t.Run("unparsable number", func(t *testing.T) {
		_, ok := ParseFilterValue(KindNumber, "abc..def")
		assert.False(t, ok)
	})

	t.Run("date range", func(t *testing.T) {
		v, ok := ParseFilterValue(KindDate, "2024-01-01..2024-02-01")
		require.True(t, ok)
		r := v.(DateRange)
		assert.Equal(t, "2024-01-01", r.From.Format("2006-01-02"))
		assert.Equal(t, "2024-02-01", r.To.Format("2006-01-02"))
	})

	t.Run("empty", func(t *testing.T) {
		_, ok := ParseFilterValue(KindText, "   ")
		assert.False(t, ok)
	})
}

func TestFormatFilterValue(t *testing.T) {
	assert.Equal(t, "", FormatFilterValue(nil))
	assert.Equal(t, "curso", FormatFilterValue("curso"))
	assert.Equal(t, "5..10.5", FormatFilterValue(NumberRange{Min: Float(5), Max: Float(10.5)}))
	assert.Equal(t, "..10", FormatFilterValue(NumberRange{Max: Float(10)}))
	assert.Equal(t, "2024-01-01..", FormatFilterValue(DateRange{From: Date(2024, 1, 1)}))

	v, ok := ParseFilterValue(KindNumber, FormatFilterValue(NumberRange{Min: Float(5)}))
	require.True(t, ok)
	assert.Equal(t, 5.0, *v.(NumberRange).Min)
}

func TestMatchFilter(t *testing.T) {
	var r FuzzyRanker

	assert.True(t, matchFilter(r, "Curso A", "curs"))
	assert.False(t, matchFilter(r, nil, "curs"))
	assert.False(t, matchFilter(r, "texto", NumberRange{Min: Float(1)}))
	assert.True(t, matchFilter(r, 5, NumberRange{Min: Float(5), Max: Float(5)}))
	assert.False(t, matchFilter(r, "31/02/2024", DateRange{From: Date(2024, 1, 1)}))
	assert.True(t, matchFilter(r, "2024-01-01", DateRange{To: Date(2024, 1, 1)}))
}
