package domain

// FilteredScore is assigned to papers that fail the boolean filter.
// Matching papers always score >= 0.
const FilteredScore = -1.0

// SearchOptions configures a search query.
type SearchOptions struct {
	// Date restricts candidates to one archive day. Empty means all days.
	Date string

	// Limit is the maximum number of results.
	Limit int

	// Offset is the number of results to skip.
	Offset int

	// Semantic blends embedding similarity into the score.
	Semantic bool

	// ORSoftWeight overrides the configured weight given to matching OR
	// branches other than the best one. Nil uses the configured value.
	ORSoftWeight *float64

	// IncludeFiltered keeps papers that fail the boolean filter, scored
	// FilteredScore, at the end of the results.
	IncludeFiltered bool
}

// SearchResult represents a single search hit.
type SearchResult struct {
	// Paper is the matched paper.
	Paper Paper

	// Score is the final ranking score.
	Score float64

	// LexicalScore is the BM25-based component.
	LexicalScore float64

	// SemanticScore is the cosine similarity component (0 when unused).
	SemanticScore float64

	// Matched is false for papers that failed the boolean filter.
	Matched bool

	// Branches lists the indices of OR branches the paper satisfies.
	Branches []int

	// Highlights contains abstract sentences with matched terms.
	Highlights []string
}

// QueryMode describes how a raw query was interpreted.
type QueryMode string

// Query interpretation modes.
const (
	// QueryModeBoolean means the query parsed into a boolean tree.
	QueryModeBoolean QueryMode = "boolean"

	// QueryModePhrase means the query had no boolean syntax.
	QueryModePhrase QueryMode = "phrase"

	// QueryModeFallback means the query had boolean syntax but failed to
	// parse, so it is scored as a plain phrase.
	QueryModeFallback QueryMode = "fallback"
)

// Description returns a human-readable description of the mode.
func (m QueryMode) Description() string {
	switch m {
	case QueryModeBoolean:
		return "Boolean filter with per-branch BM25 scoring"
	case QueryModePhrase:
		return "Plain phrase (no boolean syntax)"
	case QueryModeFallback:
		return "Plain phrase (boolean syntax error)"
	default:
		return "Unknown"
	}
}

// QueryExplanation describes how a query will be evaluated.
type QueryExplanation struct {
	// Raw is the query as given.
	Raw string

	// Mode is how the query is interpreted.
	Mode QueryMode

	// Tokens lists the tokens after implicit AND insertion.
	Tokens []string

	// Tree is the canonical parenthesised form; empty when not boolean.
	Tree string

	// ParseError is the reason the query was rejected, if any.
	ParseError string

	// Branches lists the OR alternatives with their scoring terms.
	Branches []BranchExplanation

	// PositiveTerms are the terms used for lexical scoring.
	PositiveTerms []string

	// EmbeddingText is the phrase sent to the embedding model.
	EmbeddingText string
}

// BranchExplanation describes one OR alternative.
type BranchExplanation struct {
	// Expr is the canonical form of the branch.
	Expr string

	// Terms are the branch's positive terms.
	Terms []string
}
