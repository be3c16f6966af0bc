package boolquery

import (
	"strings"
	"unicode"
)

// authorPrefix is the field marker for author-scoped terms.
const authorPrefix = "author:"

// Lexer splits a raw query into tokens.
type Lexer struct {
	input []rune
	pos   int
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: []rune(input)}
}

// Tokenize turns a raw query into tokens, inserting implicit AND operators
// between adjacent operands. It never fails: an unterminated quote captures
// the rest of the input.
func Tokenize(raw string) []Token {
	return insertImplicitAnd(NewLexer(raw).All())
}

// All scans the remaining input and returns the raw token sequence,
// without implicit AND insertion.
func (l *Lexer) All() []Token {
	var out []Token
	for {
		tok, ok := l.Next()
		if !ok {
			return out
		}
		out = append(out, tok)
	}
}

// Next returns the next token. The boolean is false at end of input.
func (l *Lexer) Next() (Token, bool) {
	l.skipWhitespace()
	if l.pos >= len(l.input) {
		return Token{}, false
	}

	ch := l.input[l.pos]
	switch {
	case ch == '(':
		l.pos++
		return lparenToken, true
	case ch == ')':
		l.pos++
		return rparenToken, true
	case l.hasPrefix("&&"):
		l.pos += 2
		return andToken, true
	case l.hasPrefix("||"):
		l.pos += 2
		return orToken, true
	case ch == '!':
		l.pos++
		return notToken, true
	}

	if tok, ok := l.readAuthorQuoted(); ok {
		return tok, true
	}

	if ch == '"' || ch == '\'' {
		return l.readQuoted(ch), true
	}

	return l.readWord(), true
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && unicode.IsSpace(l.input[l.pos]) {
		l.pos++
	}
}

func (l *Lexer) hasPrefix(s string) bool {
	rs := []rune(s)
	if l.pos+len(rs) > len(l.input) {
		return false
	}
	for i, r := range rs {
		if l.input[l.pos+i] != r {
			return false
		}
	}
	return true
}

// readAuthorQuoted matches author:"..." or author:'...' (case-insensitive,
// optional whitespace around the colon) at the current position. The quoted
// part must be closed and non-empty; otherwise nothing is consumed.
func (l *Lexer) readAuthorQuoted() (Token, bool) {
	const word = "author"
	i := l.pos
	if i+len(word) > len(l.input) {
		return Token{}, false
	}
	if !strings.EqualFold(string(l.input[i:i+len(word)]), word) {
		return Token{}, false
	}
	i += len(word)
	i = skipSpaces(l.input, i)
	if i >= len(l.input) || l.input[i] != ':' {
		return Token{}, false
	}
	i = skipSpaces(l.input, i+1)
	if i >= len(l.input) {
		return Token{}, false
	}
	quote := l.input[i]
	if quote != '"' && quote != '\'' {
		return Token{}, false
	}
	start := i + 1
	end := start
	for end < len(l.input) && l.input[end] != quote {
		end++
	}
	if end >= len(l.input) || end == start {
		return Token{}, false
	}
	l.pos = end + 1
	return Token{Type: TokenTerm, Value: authorPrefix + string(l.input[start:end])}, true
}

// readQuoted reads a quoted span verbatim. No operator interpretation
// happens inside quotes.
func (l *Lexer) readQuoted(quote rune) Token {
	l.pos++ // skip opening quote
	start := l.pos
	for l.pos < len(l.input) && l.input[l.pos] != quote {
		l.pos++
	}
	value := string(l.input[start:l.pos])
	if l.pos < len(l.input) {
		l.pos++ // skip closing quote
	}
	return Token{Type: TokenTerm, Value: value}
}

// readWord reads a run of non-space, non-paren characters and recognises
// word-form operators.
func (l *Lexer) readWord() Token {
	start := l.pos
	for l.pos < len(l.input) {
		r := l.input[l.pos]
		if unicode.IsSpace(r) || r == '(' || r == ')' {
			break
		}
		l.pos++
	}
	value := string(l.input[start:l.pos])

	switch strings.ToUpper(value) {
	case "AND":
		return andToken
	case "OR":
		return orToken
	case "NOT":
		return notToken
	}
	return Token{Type: TokenTerm, Value: value}
}

func skipSpaces(rs []rune, i int) int {
	for i < len(rs) && unicode.IsSpace(rs[i]) {
		i++
	}
	return i
}

// insertImplicitAnd returns a new sequence with an AND placed between a term
// or closing paren and a following term, opening paren or NOT.
func insertImplicitAnd(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	prev := classNone
	for _, tok := range tokens {
		curr := tok.class()
		if (prev == classTerm || prev == classRParen) &&
			(curr == classTerm || curr == classLParen || curr == classOp) &&
			tok.Type != TokenAnd && tok.Type != TokenOr {
			out = append(out, andToken)
		}
		out = append(out, tok)
		prev = curr
	}
	return out
}
