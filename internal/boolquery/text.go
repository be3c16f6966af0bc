package boolquery

import "strings"

// normalizeSpaces collapses whitespace runs to single spaces and trims.
func normalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripOuterQuotes removes one layer of matching quotes that enclose the
// whole (space-normalised) string.
func stripOuterQuotes(s string) string {
	s = normalizeSpaces(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

// IsAuthorTerm reports whether a term is author-scoped.
func IsAuthorTerm(term string) bool {
	return strings.HasPrefix(strings.ToLower(normalizeSpaces(term)), authorPrefix)
}

// padded lower-cases and space-normalises s and surrounds it with single
// spaces, so that substring checks only match on word boundaries.
func padded(s string) string {
	s = strings.ToLower(normalizeSpaces(s))
	if s == "" {
		return " "
	}
	return " " + s + " "
}
