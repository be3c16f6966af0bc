package boolquery

import "strings"

// SplitOrBranches splits a tree at its top-level disjunctions and returns
// every disjunct in source order. (A OR B) OR C and A OR (B OR C) both yield
// [A, B, C]. A non-OR node is returned as a single branch; nil yields none.
func SplitOrBranches(node Node) []Node {
	if node == nil {
		return []Node{}
	}
	if or, ok := node.(Or); ok {
		return append(SplitOrBranches(or.Left), SplitOrBranches(or.Right)...)
	}
	return []Node{node}
}

// CollectPositiveTerms returns every term that is not effectively negated
// and not author-scoped, quote-trimmed, in source order. Duplicates are kept.
func CollectPositiveTerms(node Node) []string {
	var out []string
	collectPositive(node, false, &out)
	return out
}

func collectPositive(node Node, negated bool, out *[]string) {
	switch n := node.(type) {
	case Term:
		if negated {
			return
		}
		term := stripOuterQuotes(n.Value)
		if term == "" || IsAuthorTerm(term) {
			return
		}
		*out = append(*out, term)
	case Not:
		collectPositive(n.Expr, !negated, out)
	case And:
		collectPositive(n.Left, negated, out)
		collectPositive(n.Right, negated, out)
	case Or:
		collectPositive(n.Left, negated, out)
		collectPositive(n.Right, negated, out)
	}
}

// CollectUniquePositiveTerms is CollectPositiveTerms with duplicates removed.
// Terms are compared case- and whitespace-insensitively; the first spelling
// seen wins.
func CollectUniquePositiveTerms(node Node) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, t := range CollectPositiveTerms(node) {
		key := strings.ToLower(normalizeSpaces(t))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Terms returns every term value in the tree in source order, including
// negated and author-scoped ones.
func Terms(node Node) []string {
	var out []string
	walk(node, func(t Term) { out = append(out, t.Value) })
	return out
}

func walk(node Node, fn func(Term)) {
	switch n := node.(type) {
	case Term:
		fn(n)
	case Not:
		walk(n.Expr, fn)
	case And:
		walk(n.Left, fn)
		walk(n.Right, fn)
	case Or:
		walk(n.Left, fn)
		walk(n.Right, fn)
	}
}
