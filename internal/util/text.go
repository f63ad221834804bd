package util

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Truncate returns at most limit runes of s. A non-positive limit means no cap.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

var slugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns an identifier such as a claim number into a file name stem.
func Slug(s string) string {
	s = slugChars.ReplaceAllString(strings.ToLower(s), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "claim"
	}
	return Truncate(s, 100)
}
