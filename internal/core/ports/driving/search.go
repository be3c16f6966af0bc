package driving

import (
	"context"

	"github.com/custodia-labs/papersift/internal/core/domain"
)

// SearchService filters and ranks papers with boolean queries.
type SearchService interface {
	// Search filters candidate papers with the query and ranks the matches.
	// Queries that are not valid boolean expressions are scored as phrases.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// Explain describes how a query is tokenized, parsed and scored.
	Explain(query string) domain.QueryExplanation
}
