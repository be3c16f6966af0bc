package driven

import (
	"context"

	"github.com/custodia-labs/papersift/internal/core/domain"
)

// PaperStore persists papers and sync history.
// Backed by SQLite for local storage.
type PaperStore interface {
	// SavePapers stores or updates papers by ID.
	SavePapers(ctx context.Context, papers []domain.Paper) error

	// GetPaper retrieves a paper by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetPaper(ctx context.Context, id string) (*domain.Paper, error)

	// ListPapers returns papers matching the filter, ordered by ID.
	ListPapers(ctx context.Context, filter domain.PaperFilter) ([]domain.Paper, error)

	// DeletePaper removes a paper.
	DeletePaper(ctx context.Context, id string) error

	// SaveSyncRun records a finished sync run.
	SaveSyncRun(ctx context.Context, run domain.SyncRun) error

	// LastSyncRun returns the most recent run for a date.
	// Returns domain.ErrNotFound if the date was never synced.
	LastSyncRun(ctx context.Context, date string) (*domain.SyncRun, error)
}
