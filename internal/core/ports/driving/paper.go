package driving

import (
	"context"

	"github.com/custodia-labs/papersift/internal/core/domain"
)

// PaperService gives read access to locally stored papers.
type PaperService interface {
	// List returns papers matching the filter.
	List(ctx context.Context, filter domain.PaperFilter) ([]domain.Paper, error)

	// Get retrieves a paper by ID.
	Get(ctx context.Context, id string) (*domain.Paper, error)
}
