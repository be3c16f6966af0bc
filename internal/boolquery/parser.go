package boolquery

import (
	"errors"
	"fmt"
)

// Parse errors returned by ParseStrict.
var (
	// ErrEmptyExpression indicates the query has no tokens.
	ErrEmptyExpression = errors.New("empty expression")

	// ErrUnexpectedToken indicates an operator or ')' where a term or '(' was expected.
	ErrUnexpectedToken = errors.New("unexpected token")

	// ErrUnexpectedEnd indicates the input ended where an operand was expected.
	ErrUnexpectedEnd = errors.New("unexpected end of expression")

	// ErrUnclosedParen indicates a '(' without a matching ')'.
	ErrUnclosedParen = errors.New("unclosed parenthesis")

	// ErrTrailingTokens indicates tokens left over after a complete expression.
	ErrTrailingTokens = errors.New("trailing tokens")

	// ErrEmptyTerm indicates an empty quoted span such as "".
	ErrEmptyTerm = errors.New("empty term")
)

// Parser builds an AST from a token sequence.
type Parser struct {
	tokens []Token
	pos    int
}

// Parse parses a raw query and returns the AST root, or nil if the query is
// empty or malformed. Callers treat nil as "no boolean filter".
func Parse(raw string) Node {
	node, _ := ParseStrict(raw)
	return node
}

// ParseStrict is like Parse but reports why a query was rejected.
func ParseStrict(raw string) (Node, error) {
	s := normalizeSpaces(raw)
	if s == "" {
		return nil, ErrEmptyExpression
	}
	return parseTokens(Tokenize(s))
}

// ParseTokens parses an already tokenized query. It returns nil on any
// structural error; a partial tree is never returned.
func ParseTokens(tokens []Token) Node {
	node, _ := parseTokens(tokens)
	return node
}

func parseTokens(tokens []Token) (Node, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyExpression
	}
	p := &Parser{tokens: tokens}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, fmt.Errorf("%w: %s at position %d", ErrTrailingTokens, p.tokens[p.pos], p.pos)
	}
	return node, nil
}

func (p *Parser) peek() (Token, bool) {
	if p.pos >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.pos], true
}

// eat consumes the next token if it has the given type.
func (p *Parser) eat(typ TokenType) bool {
	if tok, ok := p.peek(); ok && tok.Type == typ {
		p.pos++
		return true
	}
	return false
}

// parseOr handles OR expressions (lowest precedence).
func (p *Parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.eat(TokenOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or{Left: left, Right: right}
	}

	return left, nil
}

// parseAnd handles AND expressions.
func (p *Parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.eat(TokenAnd) {
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = And{Left: left, Right: right}
	}

	return left, nil
}

// parseNot handles NOT expressions.
func (p *Parser) parseNot() (Node, error) {
	if p.eat(TokenNot) {
		expr, err := p.parseNot() // NOT is right-associative
		if err != nil {
			return nil, err
		}
		return Not{Expr: expr}, nil
	}
	return p.parsePrimary()
}

// parsePrimary handles a term or a parenthesised expression.
func (p *Parser) parsePrimary() (Node, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, ErrUnexpectedEnd
	}

	switch tok.Type {
	case TokenLParen:
		open := p.pos
		p.pos++
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.eat(TokenRParen) {
			return nil, fmt.Errorf("%w: opened at position %d", ErrUnclosedParen, open)
		}
		return expr, nil

	case TokenTerm:
		if tok.Value == "" {
			return nil, fmt.Errorf("%w at position %d", ErrEmptyTerm, p.pos)
		}
		p.pos++
		return Term{Value: tok.Value}, nil

	default:
		return nil, fmt.Errorf("%w: %s at position %d", ErrUnexpectedToken, tok, p.pos)
	}
}
