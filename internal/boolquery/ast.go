package boolquery

import (
	"strconv"
	"strings"
)

// Node is the interface implemented by all AST nodes.
// The set of implementations is closed: Term, And, Or, Not.
type Node interface {
	node() // marker method

	// String renders the node in a fully parenthesised canonical form.
	String() string
}

// Term is a leaf: a word or phrase to match, possibly starting with author:.
type Term struct {
	Value string
}

func (Term) node() {}

func (t Term) String() string {
	if t.Value == "" || strings.ContainsAny(t.Value, " \t\n()\"") {
		return strconv.Quote(t.Value)
	}
	return t.Value
}

// And is a conjunction of two sub-expressions.
type And struct {
	Left  Node
	Right Node
}

func (And) node() {}

func (a And) String() string {
	return "(" + a.Left.String() + " AND " + a.Right.String() + ")"
}

// Or is a disjunction of two sub-expressions.
type Or struct {
	Left  Node
	Right Node
}

func (Or) node() {}

func (o Or) String() string {
	return "(" + o.Left.String() + " OR " + o.Right.String() + ")"
}

// Not negates its inner expression.
type Not struct {
	Expr Node
}

func (Not) node() {}

func (n Not) String() string {
	return "NOT " + n.Expr.String()
}

// Format returns the canonical form of node, or the empty string for nil.
func Format(node Node) string {
	if node == nil {
		return ""
	}
	return node.String()
}
