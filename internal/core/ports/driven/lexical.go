package driven

import (
	"context"

	"github.com/custodia-labs/papersift/internal/core/domain"
)

// LexicalScorer scores papers against a list of terms or phrases.
// Backed by an in-process BM25 implementation.
type LexicalScorer interface {
	// Score returns one relevance score per paper, in input order.
	// Scores are non-negative; papers sharing no term with the query score 0.
	Score(ctx context.Context, papers []domain.Paper, terms []string) ([]float64, error)
}
