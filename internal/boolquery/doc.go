// Package boolquery implements the boolean query language used to filter and
// re-rank papers on the lexical retrieval path.
//
// A query such as
//
//	diffusion AND (physics OR astronomy) AND NOT survey author:"Yoshua Bengio"
//
// is turned into an abstract syntax tree in two steps:
//
//   - Tokenize splits the raw string into terms, operators and parentheses.
//     Operators may be written as words (AND, OR, NOT, any case) or symbols
//     (&&, ||, !). Quoted spans are single terms. An author: prefix followed
//     by a quoted span is kept as one author-scoped term.
//   - ParseTokens builds the tree with a precedence-climbing recursive
//     descent parser: OR binds loosest, then AND, then unary NOT.
//     Adjacent terms without an explicit connective are joined with AND.
//
// An empty quoted span ("") is a syntax error rather than a term that can
// never match.
//
// Parse combines both steps and returns nil for any syntax error; callers
// treat a nil tree as "no filter" and fall back to scoring the raw string as
// a plain phrase. ParseStrict returns the reason instead.
//
// The tree is consumed by Evaluate (does a paper match?), SplitOrBranches
// (independently scorable alternatives), CollectUniquePositiveTerms (terms
// for BM25 scoring). CleanForEmbedding works on the raw string and produces
// a phrase for semantic matching.
//
// # Concurrency
//
// Every function in this package is pure. Trees are never mutated after
// construction and may be evaluated from several goroutines at once.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package boolquery
