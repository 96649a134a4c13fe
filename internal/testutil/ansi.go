// Package testutil holds helpers for asserting on terminal output in tests:
// stripping colors, masking run times and splitting aligned tables.
package testutil

import (
	"regexp"
	"strings"
)

// ansiRegex matches CSI escape sequences: ESC [ parameters final-letter.
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// durationRegex matches Go duration strings such as 25µs, 1.5ms or 1m2.5s.
var durationRegex = regexp.MustCompile(`\b(?:\d+h)?(?:\d+m)?\d+(?:\.\d+)?(?:ns|µs|us|ms|s)\b`)

// StripAnsiCodes removes ANSI escape codes from a string.
func StripAnsiCodes(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// ScrubDurations replaces every duration in s with "<dur>" so output that
// includes run times can be compared exactly.
func ScrubDurations(s string) string {
	return durationRegex.ReplaceAllString(s, "<dur>")
}

// TableRows splits the rows of a tabwriter table into whitespace-separated
// fields after stripping colors. Blank lines are dropped.
func TableRows(s string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(StripAnsiCodes(s), "\n") {
		if fields := strings.Fields(line); len(fields) > 0 {
			rows = append(rows, fields)
		}
	}
	return rows
}

// FindRow returns the first row of TableRows(s) whose first field is key.
func FindRow(s, key string) ([]string, bool) {
	for _, row := range TableRows(s) {
		if row[0] == key {
			return row, true
		}
	}
	return nil, false
}
