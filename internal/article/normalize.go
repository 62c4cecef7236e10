package article

import (
	"regexp"
	"strings"
)

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	punctPattern      = regexp.MustCompile(`[^A-Za-z0-9 \t\n]`)
)

// CompressWhitespace replaces every run of whitespace with a single space.
func CompressWhitespace(s string) string {
	return whitespacePattern.ReplaceAllString(s, " ")
}

// StripPunct removes everything except ASCII letters, digits and whitespace.
func StripPunct(s string) string {
	return punctPattern.ReplaceAllString(s, "")
}

// NormalizeTitle produces the canonical comparison key for a title.
//
//	NormalizeTitle("  K-Means  Clustering Algorithms.  ") == "kmeans clustering algorithms"
//
// Whitespace is compressed after punctuation is stripped so that removing a
// lone symbol between two spaces cannot leave a double space behind, and the
// result is trimmed again so the function is idempotent.
func NormalizeTitle(title string) string {
	t := StripPunct(strings.TrimSpace(title))
	return strings.ToLower(strings.TrimSpace(CompressWhitespace(t)))
}
