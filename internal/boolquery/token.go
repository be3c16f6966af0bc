package boolquery

import "fmt"

// TokenType represents the type of a lexical token.
type TokenType int

const (
	TokenTerm TokenType = iota
	TokenAnd
	TokenOr
	TokenNot
	TokenLParen
	TokenRParen
)

// String returns the canonical spelling of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenTerm:
		return "TERM"
	case TokenAnd:
		return "AND"
	case TokenOr:
		return "OR"
	case TokenNot:
		return "NOT"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token.
// Value holds the literal text for terms, including any author: prefix.
type Token struct {
	Type  TokenType
	Value string
}

// Pre-built operator tokens.
var (
	andToken    = Token{Type: TokenAnd, Value: "AND"}
	orToken     = Token{Type: TokenOr, Value: "OR"}
	notToken    = Token{Type: TokenNot, Value: "NOT"}
	lparenToken = Token{Type: TokenLParen, Value: "("}
	rparenToken = Token{Type: TokenRParen, Value: ")"}
)

// String renders the token for diagnostics, e.g. TERM("graph neural").
func (t Token) String() string {
	if t.Type == TokenTerm {
		return fmt.Sprintf("TERM(%q)", t.Value)
	}
	return t.Type.String()
}

// IsOperator reports whether the token is AND, OR or NOT.
func (t Token) IsOperator() bool {
	return t.Type == TokenAnd || t.Type == TokenOr || t.Type == TokenNot
}

// tokenClass groups token types for implicit AND insertion.
type tokenClass int

const (
	classNone tokenClass = iota
	classTerm
	classLParen
	classRParen
	classOp
)

func (t Token) class() tokenClass {
	switch t.Type {
	case TokenTerm:
		return classTerm
	case TokenLParen:
		return classLParen
	case TokenRParen:
		return classRParen
	default:
		return classOp
	}
}
