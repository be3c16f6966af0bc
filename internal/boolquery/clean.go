package boolquery

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Word operators are only accepted when both neighbours are non-word runes;
// regexp's \b is ASCII-only, so the boundary is checked in standalone.
var (
	operatorPattern     = regexp.MustCompile(`(?i)AND|OR|NOT|&&|\|\||!`)
	authorMarkerPattern = regexp.MustCompile(`(?i)author\s*:\s*`)
	parenReplacer       = strings.NewReplacer("(", " ", ")", " ")
)

// HasBooleanSyntax reports whether raw contains a parenthesis or a boolean
// operator, either as a standalone word or as a symbol. Queries without
// boolean syntax are scored as plain phrases.
func HasBooleanSyntax(raw string) bool {
	if raw == "" {
		return false
	}
	if strings.ContainsAny(raw, "()") {
		return true
	}
	return len(operatorMatches(raw)) > 0
}

// CleanForEmbedding flattens a boolean query into a natural-language phrase
// for semantic matching: operators, parentheses and author: markers are
// removed, whitespace is collapsed and one layer of enclosing quotes is
// stripped. It works on any input, parseable or not.
func CleanForEmbedding(raw string) string {
	if raw == "" {
		return ""
	}
	s := parenReplacer.Replace(raw)
	s = blankOut(s, operatorMatches(s))
	s = blankOut(s, authorMarkerMatches(s))
	return stripOuterQuotes(s)
}

// operatorMatches returns the spans of symbol operators and of word
// operators that stand alone.
func operatorMatches(s string) [][]int {
	var out [][]int
	for _, m := range operatorPattern.FindAllStringIndex(s, -1) {
		r, _ := utf8.DecodeRuneInString(s[m[0]:])
		if isWordRune(r) && !standalone(s, m[0], m[1]) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// authorMarkerMatches returns the spans of author: markers that start a word.
func authorMarkerMatches(s string) [][]int {
	var out [][]int
	for _, m := range authorMarkerPattern.FindAllStringIndex(s, -1) {
		if startsWord(s, m[0]) {
			out = append(out, m)
		}
	}
	return out
}

// blankOut replaces each span of s with a single space.
func blankOut(s string, spans [][]int) string {
	if len(spans) == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, m := range spans {
		b.WriteString(s[last:m[0]])
		b.WriteByte(' ')
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

func standalone(s string, start, end int) bool {
	if !startsWord(s, start) {
		return false
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		return !isWordRune(r)
	}
	return true
}

func startsWord(s string, start int) bool {
	if start == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:start])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r)
}
