// Package apitime implements the platform's wire format for timestamps.
// All values are UTC with a trailing Z; the fractional part varies by
// server component, so decoding accepts nanosecond, millisecond and
// whole-second precision. Encoding always emits milliseconds.
package apitime

import (
	"fmt"
	"time"
)

const (
	layoutNano    = "2006-01-02T15:04:05.000000000Z"
	layoutMilli   = "2006-01-02T15:04:05.000Z"
	layoutSeconds = "2006-01-02T15:04:05Z"
)

// decodeLayouts is ordered: most precise first.
var decodeLayouts = []string{layoutNano, layoutMilli, layoutSeconds}

// Time is a time.Time that round-trips through the platform's JSON
// date convention.
type Time struct {
	time.Time
}

// New wraps t, normalizing to UTC.
func New(t time.Time) Time {
	return Time{t.UTC()}
}

// Parse decodes s against each accepted layout in order and returns
// the first success. It never panics on malformed input.
func Parse(s string) (Time, error) {
	for _, layout := range decodeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return Time{t.UTC()}, nil
		}
	}
	return Time{}, fmt.Errorf("apitime: unsupported timestamp %q", s)
}

// Format encodes t in the canonical millisecond form.
func Format(t time.Time) string {
	return t.UTC().Format(layoutMilli)
}

func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + Format(t.Time) + `"`), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("apitime: timestamp is not a JSON string: %s", data)
	}
	parsed, err := Parse(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
