package core

import "testing"

func TestNormalizeIDs(t *testing.T) {
	got := normalizeIDs([]string{" 3", "1", "", "3", "2 ", "1"})
	want := []string{"3", "1", "2"}
	if len(got) != len(want) {
		t.Fatalf("normalizeIDs() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("normalizeIDs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestQuoteIdentifier(t *testing.T) {
	tests := map[string]string{
		"courses":      `"courses"`,
		"order":        `"order"`,
		`bad"; DROP x`: `"bad""; DROP x"`,
	}
	for in, want := range tests {
		if got := quoteIdentifier(in); got != want {
			t.Errorf("quoteIdentifier(%q) = %q, want %q", in, got, want)
		}
	}
}
