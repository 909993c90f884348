package core

// convert.go converts between pgx values and the plain Go values the table
// engine works with.
//
// Rows come back from rows.Values() in pgx's own representations: UUIDs as
// byte arrays, NUMERIC as pgtype.Numeric, nullable wrappers with Valid=false.
// normalizeValue flattens those into strings, float64, time.Time and nil so
// kind inference, sorting and filtering see ordinary values.

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// normalizeValue converts a value returned by pgx into the form the table
// engine understands. Unknown types pass through unchanged.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case [16]byte:
		return uuid.UUID(val).String()
	case pgtype.UUID:
		if !val.Valid {
			return nil
		}
		return uuid.UUID(val.Bytes).String()
	case []byte:
		return string(val)
	case pgtype.Numeric:
		return numericToFloat(val)
	case pgtype.Text:
		if !val.Valid {
			return nil
		}
		return val.String
	case pgtype.Date:
		if !val.Valid || val.InfinityModifier != pgtype.Finite {
			return nil
		}
		return val.Time
	case pgtype.Timestamptz:
		if !val.Valid || val.InfinityModifier != pgtype.Finite {
			return nil
		}
		return val.Time
	case pgtype.Timestamp:
		if !val.Valid || val.InfinityModifier != pgtype.Finite {
			return nil
		}
		return val.Time
	case pgtype.Int8:
		if !val.Valid {
			return nil
		}
		return val.Int64
	case pgtype.Bool:
		if !val.Valid {
			return nil
		}
		return val.Bool
	case time.Time:
		if val.IsZero() {
			return nil
		}
		return val
	default:
		return v
	}
}

// numericToFloat returns n as float64, or nil for NULL and NaN.
func numericToFloat(n pgtype.Numeric) any {
	if !n.Valid || n.NaN {
		return nil
	}
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return nil
	}
	return f.Float64
}

// toPgText converts a string to pgtype.Text. An empty string is NULL.
func toPgText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

// toPgInt8 converts an int64 to a non-NULL pgtype.Int8.
func toPgInt8(n int64) pgtype.Int8 {
	return pgtype.Int8{Int64: n, Valid: true}
}

// toPgTimestamptz converts t to pgtype.Timestamptz. The zero time is NULL.
func toPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}
