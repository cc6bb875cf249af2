// Package sqltime stores timestamps as RFC 3339 text so the same queries
// work on sqlite and postgres.
package sqltime

import (
	"database/sql"
	"time"
)

const layout = time.RFC3339Nano

func Format(t time.Time) string {
	return t.UTC().Format(layout)
}

// Parse returns the zero time for empty or malformed input.
func Parse(s string) time.Time {
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func Null(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: Format(*t), Valid: true}
}

func FromNull(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := Parse(s.String)
	return &t
}
