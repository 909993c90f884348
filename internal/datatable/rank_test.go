package datatable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuzzyRanker_Rank(t *testing.T) {
	tests := []struct {
		value  string
		query  string
		want   Rank
		passed bool
	}{
		{"Curso", "Curso", RankCaseSensitiveEqual, true},
		{"Curso", "curso", RankEqual, true},
		{"Curso A", "curs", RankStartsWith, true},
		{"Manual de cursos", "cur", RankWordStartsWith, true},
		{"Recursos", "cur", RankContains, true},
		{"Libro de Texto", "ldt", RankAcronym, true},
		{"Matemáticas", "mtc", RankMatches, true},
		{"Manual B", "curs", RankNoMatch, false},
		{"ab", "abc", RankNoMatch, false},
		{"abc", "z", RankNoMatch, false},
		{"Título", "titulo", RankEqual, true},
	}

	var r FuzzyRanker
	for _, tt := range tests {
		t.Run(tt.value+"/"+tt.query, func(t *testing.T) {
			got := r.Rank(tt.value, tt.query)
			assert.Equal(t, tt.want, got.Rank)
			assert.Equal(t, tt.passed, got.Passed)
		})
	}
}

func TestFuzzyRanker_Threshold(t *testing.T) {
	r := FuzzyRanker{Threshold: RankContains}

	assert.True(t, r.Rank("Recursos", "cur").Passed)
	assert.False(t, r.Rank("Libro de Texto", "ldt").Passed)
}

func TestFuzzyRanker_KeepDiacritics(t *testing.T) {
	r := FuzzyRanker{KeepDiacritics: true}
	assert.False(t, r.Rank("Título", "titulo").Passed)
}

func TestFuzzyRanker_ClosenessOrdersSubsequences(t *testing.T) {
	var r FuzzyRanker
	tight := r.Rank("xaxbc", "abc")
	loose := r.Rank("axxxxxxbxxxxxxc", "abc")

	assert.Equal(t, RankMatches, tight.Rank)
	assert.Equal(t, RankMatches, loose.Rank)
	assert.Negative(t, tight.Compare(loose))
}

func TestRanking_Compare(t *testing.T) {
	var r FuzzyRanker
	equal := r.Rank("Curso", "curso")
	prefix := r.Rank("Curso A", "curso")

	assert.Negative(t, equal.Compare(prefix))
	assert.Positive(t, prefix.Compare(equal))
	assert.Zero(t, prefix.Compare(prefix))
}

func TestRankerFunc(t *testing.T) {
	exact := RankerFunc(func(value, query string) Ranking {
		if value == query {
			return Ranking{Rank: RankEqual, Score: float64(RankEqual), Passed: true}
		}
		return Ranking{}
	})

	rows := []Record{{"id": 1, "t": "Curso"}, {"id": 2, "t": "Curso A"}}
	table := New([]Column[Record]{{ID: "t"}}, rows, Options[Record]{Ranker: exact})
	table.SetGlobalFilter("Curso")

	assert.Equal(t, []string{"1"}, table.Model().RowIDs)
}
