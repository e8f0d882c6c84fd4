package store

// convert.go maps catalogue values to and from pgtype values.
//
// All ToPg* functions return pgtype values with Valid=false for empty input,
// which the database stores as NULL.

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgNumeric converts an amount to a two-decimal pgtype.Numeric.
// NaN and infinities are invalid.
func ToPgNumeric(f float64) pgtype.Numeric {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return pgtype.Numeric{Valid: false}
	}

	var n pgtype.Numeric
	if err := n.Scan(strconv.FormatFloat(f, 'f', 2, 64)); err != nil {
		return pgtype.Numeric{Valid: false}
	}
	return n
}

// NumericToFloat converts a pgtype.Numeric to float64. NULL reads as 0.
func NumericToFloat(n pgtype.Numeric) float64 {
	if !n.Valid {
		return 0
	}
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return 0
	}
	return f.Float64
}

// ToPgUUID converts a string to pgtype.UUID.
// Returns invalid if the string is empty or not a valid UUID.
func ToPgUUID(s string) pgtype.UUID {
	if s == "" {
		return pgtype.UUID{Valid: false}
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

// PgUUIDToString converts a pgtype.UUID to its string representation.
// Returns empty string if the UUID is invalid.
func PgUUIDToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}

// categoryParam converts an optional category id. Empty clears the category;
// anything that is not a UUID is rejected rather than silently dropped.
func categoryParam(s string) (pgtype.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.UUID{Valid: false}, nil
	}
	u := ToPgUUID(s)
	if !u.Valid {
		return u, fmt.Errorf("invalid category id %q", s)
	}
	return u, nil
}

// uuidList converts product ids for an ANY($n) parameter.
func uuidList(ids []string) ([]pgtype.UUID, error) {
	out := make([]pgtype.UUID, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		u := ToPgUUID(strings.TrimSpace(id))
		if !u.Valid {
			return nil, fmt.Errorf("invalid product id %q", id)
		}
		key := PgUUIDToString(u)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, u)
	}
	return out, nil
}

// nonNil replaces a nil slice with an empty one so TEXT[] columns get '{}'.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
