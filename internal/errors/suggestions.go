// Package errors provides enhanced error messages with suggestions.
package errors

import (
	"fmt"
	"sort"
	"strings"
)

// SuggestiveError is an error that includes suggestions for fixing the problem.
type SuggestiveError struct {
	Message     string
	Suggestions []string
	HelpCommand string
}

func (e *SuggestiveError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nDid you mean one of these?\n")
		for _, s := range e.Suggestions {
			b.WriteString("  ")
			b.WriteString(s)
			b.WriteString("\n")
		}
	}

	if e.HelpCommand != "" {
		b.WriteString("\nRun '")
		b.WriteString(e.HelpCommand)
		b.WriteString("' for more information.")
	}

	return b.String()
}

// SourceNotFoundError creates an error for when a source alias isn't found.
func SourceNotFoundError(alias string, available []string) error {
	similar := findSimilar(alias, available, 3)
	return &SuggestiveError{
		Message:     fmt.Sprintf("source %q not found", alias),
		Suggestions: similar,
		HelpCommand: "leaf sources",
	}
}

// FileNotFoundError creates an error for a log file missing from the log
// directory, suggesting files with similar names.
func FileNotFoundError(name string, available []string) error {
	return &SuggestiveError{
		Message:     fmt.Sprintf("log file %q not found", name),
		Suggestions: findSimilar(name, available, 4),
		HelpCommand: "leaf files",
	}
}

// NoLogFilesError creates an error for an empty or missing log directory.
func NoLogFilesError(dir string) error {
	return &SuggestiveError{
		Message: fmt.Sprintf("no log files in %s", dir),
		Suggestions: []string{
			"leaf files /path/to/storage/logs        - Point at another directory",
			"leaf page ./storage/logs/laravel.log    - Open a file directly",
			"export LEAF_LOG_DIR=/path/to/logs        - Change the default",
		},
	}
}

// InvalidSeekError creates an error for an offset or cursor that can't be parsed.
func InvalidSeekError(input string) error {
	return &SuggestiveError{
		Message: fmt.Sprintf("invalid offset %q", input),
		Suggestions: []string{
			"0: newest page (read back from the end of the file)",
			"-1234: the page ending at byte 1234",
			"1234: the page starting at byte 1234",
			"file:///var/log/app.log#-1234: a cursor printed by 'leaf page'",
		},
	}
}

// findSimilar finds strings similar to target using Levenshtein distance.
func findSimilar(target string, candidates []string, maxDistance int) []string {
	type match struct {
		value    string
		distance int
	}

	var matches []match
	targetLower := strings.ToLower(target)

	for _, c := range candidates {
		cLower := strings.ToLower(c)
		d := levenshtein(targetLower, cLower)
		if d <= maxDistance {
			matches = append(matches, match{value: c, distance: d})
		}
	}

	// Sort by distance (closest first)
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	// Return top 3
	var result []string
	for i := 0; i < len(matches) && i < 3; i++ {
		result = append(result, matches[i].value)
	}

	return result
}

// levenshtein calculates the Levenshtein distance between two strings.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Create matrix
	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
	}

	// Initialize first column
	for i := 0; i <= len(a); i++ {
		matrix[i][0] = i
	}

	// Initialize first row
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}

	// Fill matrix
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			matrix[i][j] = min3(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
