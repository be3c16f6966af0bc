package driven

import (
	"context"

	"github.com/custodia-labs/papersift/internal/core/domain"
)

// PaperPublisher upserts papers into a remote store.
// This is an optional port - when nil, sync only stores papers locally.
type PaperPublisher interface {
	// Upsert merges papers into the remote table by ID, in batches.
	// It returns the number of papers accepted before any failure.
	Upsert(ctx context.Context, papers []domain.Paper) (int, error)

	// Target describes the destination (e.g. table URL) for logging.
	Target() string
}
