// Package utils provides shared helpers for text, vectors and logging.
package utils

import "strings"

// Clip returns at most maxRunes runes of s without splitting a character.
// maxRunes <= 0 returns s unchanged.
func Clip(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}

// TruncateForLog trims s and shortens it to limit runes for log fields.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// CollapseSpace replaces every run of whitespace with a single space and trims the ends.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
