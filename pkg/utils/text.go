// Package utils provides shared utilities for text handling and logging.
package utils

import (
	"strings"
	"unicode/utf8"
)

// Truncate returns s cut to at most maxLen bytes, with "..." appended if truncated.
// The cut never splits a UTF-8 sequence. If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// Normalize trims s and lower-cases it.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ContainsFold reports whether the lower-cased s contains substr. substr must already
// be lower-case; an empty substr always matches.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
