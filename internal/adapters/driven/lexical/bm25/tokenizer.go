package bm25

import (
	"strings"
	"unicode"
)

// stopWords are dropped from both documents and queries.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "in": {}, "is": {}, "it": {},
	"its": {}, "of": {}, "on": {}, "or": {}, "that": {}, "the": {}, "to": {},
	"was": {}, "were": {}, "with": {}, "this": {}, "we": {}, "our": {},
	"not": {}, "can": {}, "which": {},
}

// Tokenize lower-cases text and splits it on anything that is not a letter
// or digit. Stop words and single-character tokens are dropped.
func Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		if tok := current.String(); isIndexable(tok) {
			tokens = append(tokens, tok)
		}
		current.Reset()
	}

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	return tokens
}

func isIndexable(token string) bool {
	if len([]rune(token)) < 2 {
		return false
	}
	_, stop := stopWords[token]
	return !stop
}
