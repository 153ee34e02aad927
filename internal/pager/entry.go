// Package pager reads pages of entries from large, append-only log files
// whose entries start with a "[YYYY-MM-DD HH:MM:SS] env.LEVEL:" header.
//
// A page is fetched by seeking to a byte offset and reading fixed-size
// chunks forward or backward until enough entry headers have been seen.
// Partial entries at page edges are trimmed, so a multi-line entry (for
// example one carrying a stack trace) is never split across two pages.
// Every page reports the exact byte span it consumed, which is what callers
// feed back in to fetch the adjacent page.
package pager

import (
	"strings"
	"time"
)

// Level is the raw severity string from an entry header.
type Level = string

// Severity vocabulary, most to least severe.
const (
	LevelEmergency Level = "EMERGENCY"
	LevelAlert     Level = "ALERT"
	LevelCritical  Level = "CRITICAL"
	LevelError     Level = "ERROR"
	LevelWarning   Level = "WARNING"
	LevelNotice    Level = "NOTICE"
	LevelInfo      Level = "INFO"
	LevelDebug     Level = "DEBUG"
)

// Levels lists the recognized severities, most severe first.
var Levels = []Level{
	LevelEmergency, LevelAlert, LevelCritical, LevelError,
	LevelWarning, LevelNotice, LevelInfo, LevelDebug,
}

// KnownLevel reports whether level is part of the severity vocabulary.
func KnownLevel(level string) bool {
	for _, l := range Levels {
		if l == level {
			return true
		}
	}
	return false
}

// Entry is a single parsed log entry.
type Entry struct {
	Timestamp   string    `json:"timestamp"`
	Time        time.Time `json:"-"`
	Environment string    `json:"environment"`
	Level       Level     `json:"level"`
	Message     string    `json:"message"`
	Trace       string    `json:"trace,omitempty"`
}

// HasTrace reports whether the entry carries exception detail.
func (e Entry) HasTrace() bool {
	return e.Trace != ""
}

// Text joins all fields with a space. Keyword filtering matches against it.
func (e Entry) Text() string {
	return strings.Join([]string{e.Timestamp, e.Environment, e.Level, e.Message, e.Trace}, " ")
}

// Offset is the byte span [Start, End) a page was read from.
type Offset struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Len returns the number of bytes in the span.
func (o Offset) Len() int64 {
	return o.End - o.Start
}
