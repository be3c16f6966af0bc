package boolquery

import "strings"

// authorSeparator joins author names before matching, so a term never
// matches across two authors.
const authorSeparator = " ; "

// Document is the read-only view of a paper that terms are matched against.
type Document struct {
	Title    string
	Abstract string
	Authors  []string
}

// Evaluate reports whether doc satisfies the expression. A nil node never
// matches.
func Evaluate(node Node, doc Document) bool {
	if node == nil {
		return false
	}
	s := newScope(doc)
	return s.eval(node)
}

// EvaluateFields is Evaluate for callers holding the fields separately.
func EvaluateFields(node Node, title, abstract string, authors []string) bool {
	return Evaluate(node, Document{Title: title, Abstract: abstract, Authors: authors})
}

// MatchTerm reports whether a single term matches doc.
func MatchTerm(term string, doc Document) bool {
	return newScope(doc).matchTerm(term)
}

// scope holds the padded haystacks for one document.
type scope struct {
	text    string
	authors string
}

func newScope(doc Document) scope {
	return scope{
		text:    padded(doc.Title + "\n" + doc.Abstract),
		authors: padded(strings.Join(doc.Authors, authorSeparator)),
	}
}

func (s scope) eval(node Node) bool {
	switch n := node.(type) {
	case Term:
		return s.matchTerm(n.Value)
	case Not:
		return !s.eval(n.Expr)
	case And:
		return s.eval(n.Left) && s.eval(n.Right)
	case Or:
		return s.eval(n.Left) || s.eval(n.Right)
	default:
		return false
	}
}

func (s scope) matchTerm(term string) bool {
	t := stripOuterQuotes(term)
	if t == "" {
		return false
	}

	lower := strings.ToLower(t)
	if strings.HasPrefix(lower, authorPrefix) {
		name := stripOuterQuotes(t[strings.Index(t, ":")+1:])
		if name == "" {
			return false
		}
		return strings.Contains(s.authors, padded(name))
	}

	return strings.Contains(s.text, padded(lower))
}
