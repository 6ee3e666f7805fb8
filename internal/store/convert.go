package store

// convert.go maps parsed course values onto pgtype values for COPY.
//
// Text is stored exactly as parsed. Numeric columns are always valid: a parsed
// record never carries a missing number, and zero is a real measurement here.
// Integers outside the int4 range are rejected rather than truncated.

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

func toPgText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

// toPgDate converts a launch date to pgtype.Date, NULL for the zero time.
func toPgDate(t time.Time) pgtype.Date {
	if t.IsZero() {
		return pgtype.Date{Valid: false}
	}
	return pgtype.Date{Time: t, Valid: true}
}

func toPgInt4(i int) (pgtype.Int4, error) {
	if i < math.MinInt32 || i > math.MaxInt32 {
		return pgtype.Int4{}, fmt.Errorf("value %d out of int4 range", i)
	}
	return pgtype.Int4{Int32: int32(i), Valid: true}, nil
}

// int4Row converts the integer columns of one row and keeps the first
// failure.
type int4Row struct {
	err error
}

func (c *int4Row) convert(column string, i int) pgtype.Int4 {
	v, err := toPgInt4(i)
	if err != nil && c.err == nil {
		c.err = fmt.Errorf("%s: %w", column, err)
	}
	return v
}

func toPgFloat8(f float64) pgtype.Float8 {
	return pgtype.Float8{Float64: f, Valid: true}
}

func toPgBool(b bool) pgtype.Bool {
	return pgtype.Bool{Bool: b, Valid: true}
}

func toPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func toPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// pgUUIDToString returns the canonical form of u, or "" when NULL.
func pgUUIDToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}
