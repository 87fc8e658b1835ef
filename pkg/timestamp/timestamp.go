// Package timestamp provides ISO-8601 timestamp parsing and Unix-millisecond
// conversion utilities.
//
// SPARQL endpoints serialize xsd:dateTime literals in several ISO-8601
// variants: with a Z designator, with a numeric offset, or with fractional
// seconds. ParseISO accepts all of them. Unix milliseconds are the canonical
// integer form for callers that persist or compare instants; a value of 0
// means "not set".
package timestamp

import (
	"fmt"
	"time"
)

// isoLayouts lists accepted xsd:dateTime lexical forms, most specific first.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseISO parses an ISO-8601 timestamp with or without an offset.
// Offset-less forms are interpreted as UTC, matching how SPARQL endpoints
// treat timezone-less xsd:dateTime values.
func ParseISO(value string) (time.Time, error) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized ISO-8601 timestamp %q", value)
}

// Now returns the current time as Unix milliseconds.
func Now() int64 {
	return time.Now().UnixMilli()
}

// ToUnixMs converts a time.Time to Unix milliseconds.
func ToUnixMs(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// FromUnixMs converts Unix milliseconds to time.Time.
// Returns zero time if the timestamp is 0.
func FromUnixMs(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// Format converts Unix milliseconds to an RFC3339 string for display.
// Returns empty string if the timestamp is 0.
func Format(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
