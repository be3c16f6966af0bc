package driving

import (
	"context"

	"github.com/custodia-labs/papersift/internal/core/domain"
)

// SyncService imports archive days into the local store and publishes them.
type SyncService interface {
	// Sync imports one archive day. Only one sync runs at a time.
	Sync(ctx context.Context, opts domain.SyncOptions) (*domain.SyncRun, error)

	// Status returns the current sync progress.
	Status() domain.SyncStatus

	// LastRun returns the most recent run for a date.
	LastRun(ctx context.Context, date string) (*domain.SyncRun, error)
}
