// Package timeutil provides shared time parsing utilities.
package timeutil

import (
	"fmt"
	"time"
)

// EntryLayout is the timestamp layout used inside log entry headers,
// e.g. "[2024-01-15 10:30:45] production.ERROR: ...".
const EntryLayout = "2006-01-02 15:04:05"

// ParseEntry parses an entry header timestamp. Header timestamps carry no
// zone, so the result is in UTC.
func ParseEntry(input string) (time.Time, error) {
	t, err := time.ParseInLocation(EntryLayout, input, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid entry timestamp %q: %w", input, err)
	}
	return t, nil
}

// FormatEntry formats t using the entry header layout.
func FormatEntry(t time.Time) string {
	return t.UTC().Format(EntryLayout)
}

// CompareEntry orders two header timestamps. Both strings are parsed; when
// either fails to parse the raw strings are compared instead, which is still
// correct for zero-padded timestamps.
// Returns -1 if a is earlier than b, 1 if later, 0 if equal.
func CompareEntry(a, b string) int {
	ta, errA := ParseEntry(a)
	tb, errB := ParseEntry(b)
	if errA != nil || errB != nil {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
	return ta.Compare(tb)
}
