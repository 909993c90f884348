// Package datatable is the tabular view engine behind every dashboard listing.
//
// A [Table] takes a row collection and caller-supplied column definitions and
// derives, on demand:
//
//   - a filtered and sorted row model (column filters and the global filter
//     combine with AND logic),
//   - a paginated slice of that model for display,
//   - faceted values per column (unique values for suggestion lists, min/max
//     for numeric bounds),
//   - a selection set the caller can read and bulk-act upon.
//
// # State
//
// Filter, sort, selection, visibility and pagination state live in a plain
// [State] value. Every transition is a pure function of (State, Action) via
// [Reduce], so the engine is testable without any UI harness. A [Table] owns
// one State exclusively; nothing is shared between instances and nothing is
// persisted.
//
// # Filters
//
// The filter input for a column is chosen by its [Kind]. A column may declare
// its kind explicitly; otherwise [InferKind] samples the rows:
//
//   - any row holding a date value makes the column a date column (range picker),
//   - a numeric first non-empty value makes it numeric (min/max inputs),
//   - anything else is text (free input with suggestions, capped at
//     [DefaultSuggestionLimit]).
//
// Text filters and the global filter use a pluggable [Ranker]. The default
// [FuzzyRanker] ranks like a match-sorter: exact, prefix, word prefix,
// substring, acronym, then in-order subsequence.
//
// # Bulk delete
//
// [Table.RequestBulkDelete] delegates to a caller-supplied [DeleteAction].
// Outcomes are reported through a [Notifier]; selection is cleared only on
// success and the row collection is never modified optimistically.
package datatable
