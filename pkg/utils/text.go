package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	spaceRe    = regexp.MustCompile(`\s+`)
	nonSlugRe  = regexp.MustCompile(`[^a-z0-9-]`)
	nonColRe   = regexp.MustCompile(`[^a-z0-9_]`)
	multiDash  = regexp.MustCompile(`-{2,}`)
	multiScore = regexp.MustCompile(`_{2,}`)
)

// CleanText collapses runs of whitespace and trims the result.
func CleanText(text string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// Slugify converts a display name into the URL-safe form the source
// uses in profile paths, e.g. "John Doe" -> "john-doe".
func Slugify(name string) string {
	s := strings.ToLower(CleanText(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = nonSlugRe.ReplaceAllString(s, "")
	s = multiDash.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// NormalizeColumn lower-cases a source column header and reduces it to
// an identifier-like form, e.g. "Date of Injury" -> "date_of_injury".
func NormalizeColumn(header string) string {
	s := strings.ToLower(CleanText(header))
	s = strings.ReplaceAll(s, " ", "_")
	s = nonColRe.ReplaceAllString(s, "")
	s = multiScore.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// UniqueColumns normalizes a header row and suffixes repeated names
// with _2, _3, ... so every column keeps a distinct key. Empty headers
// become col_N by position.
func UniqueColumns(headers []string) []string {
	out := make([]string, 0, len(headers))
	seen := make(map[string]int)
	for i, h := range headers {
		name := NormalizeColumn(h)
		if name == "" {
			name = fmt.Sprintf("col_%d", i+1)
		}
		seen[name]++
		if seen[name] > 1 {
			name = fmt.Sprintf("%s_%d", name, seen[name])
		}
		out = append(out, name)
	}
	return out
}

// ShortestLen returns the shortest length among parallel field slices.
// Broken markup occasionally yields mismatched vectors; callers keep
// the shorter consistent prefix rather than failing outright.
func ShortestLen(slices ...[]string) int {
	shortest := -1
	for _, s := range slices {
		if shortest < 0 || len(s) < shortest {
			shortest = len(s)
		}
	}
	if shortest < 0 {
		return 0
	}
	return shortest
}
