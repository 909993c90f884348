package core

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ============================================================================
// Conversion Benchmarks
// ============================================================================

// BenchmarkNormalizeValue benchmarks the per-cell conversion run on every
// value fetched by Rows.
func BenchmarkNormalizeValue(b *testing.B) {
	var price pgtype.Numeric
	_ = price.Scan("1234.56")
	values := []any{
		[16]byte(uuid.New()),
		price,
		pgtype.Date{Time: time.Now(), Valid: true},
		"Inglés básico",
		int64(42),
		nil,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, v := range values {
			normalizeValue(v)
		}
	}
}

// BenchmarkNormalizeValue_Numeric benchmarks NUMERIC to float64 conversion.
func BenchmarkNormalizeValue_Numeric(b *testing.B) {
	var n pgtype.Numeric
	_ = n.Scan("98765.4321")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		normalizeValue(n)
	}
}

// ============================================================================
// Query Building Benchmarks
// ============================================================================

// BenchmarkWhereBuilder benchmarks audit filter construction.
func BenchmarkWhereBuilder(b *testing.B) {
	since := time.Now().AddDate(0, -1, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var wb whereBuilder
		wb.add("action", "bulk_delete")
		wb.add("resource_key", "courses")
		wb.addSince("created_at", since)
		wb.build()
	}
}

// BenchmarkQuoteIdentifier benchmarks SQL identifier quoting.
func BenchmarkQuoteIdentifier(b *testing.B) {
	names := []string{"courses", "marketing_sections", `weird"name`}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, n := range names {
			quoteIdentifier(n)
		}
	}
}

// BenchmarkNormalizeIDs benchmarks id cleanup for a full bulk delete.
func BenchmarkNormalizeIDs(b *testing.B) {
	ids := make([]string, DefaultMaxIDs)
	for i := range ids {
		ids[i] = " " + strconv.Itoa(i%(DefaultMaxIDs/2)) + " "
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		normalizeIDs(ids)
	}
}

// ============================================================================
// Error Mapping Benchmarks
// ============================================================================

// BenchmarkMapError benchmarks pattern matching of known and unknown errors.
func BenchmarkMapError(b *testing.B) {
	errs := []error{
		errors.New("connection refused"),
		errors.New(`violates foreign key constraint "enrollments_course_id_fkey"`),
		ErrUnknownResource,
		errors.New("something nobody has seen before"),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, err := range errs {
			MapError(err)
		}
	}
}

// ============================================================================
// Parallel Benchmarks
// ============================================================================

func BenchmarkNormalizeValueParallel(b *testing.B) {
	var n pgtype.Numeric
	_ = n.Scan("1234.56")

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			normalizeValue(n)
		}
	})
}

func BenchmarkMapErrorParallel(b *testing.B) {
	err := errors.New("connection refused")

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			MapError(err)
		}
	})
}
