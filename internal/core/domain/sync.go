package domain

import "time"

// SyncRunStatus is the terminal state of a sync run.
type SyncRunStatus string

// Sync run states.
const (
	SyncRunSucceeded SyncRunStatus = "succeeded"
	SyncRunFailed    SyncRunStatus = "failed"
	SyncRunSkipped   SyncRunStatus = "skipped"
)

// SyncOptions configures one archive synchronisation.
type SyncOptions struct {
	// Date is the archive day to sync (YYYYMMDD).
	Date string

	// WithEmbeddings computes passage embeddings before storing.
	WithEmbeddings bool

	// EmbeddingModel selects the embedding model for this sync, overriding
	// the configured one. Empty uses the configured model.
	EmbeddingModel string
}

// SyncRun records the outcome of one synchronisation.
type SyncRun struct {
	// ID uniquely identifies the run.
	ID string

	// Date is the archive day that was synced.
	Date string

	// Papers is the number of normalised papers.
	Papers int

	// Published is the number of papers upserted to the remote store.
	Published int

	// EmbeddingModel is the model used, empty without embeddings.
	EmbeddingModel string

	// EmbeddingDim is the vector size, zero without embeddings.
	EmbeddingDim int

	// Status is the terminal state.
	Status SyncRunStatus

	// Error holds the failure message for failed runs.
	Error string

	// StartedAt is when the run began.
	StartedAt time.Time

	// FinishedAt is when the run ended.
	FinishedAt time.Time
}

// Duration returns how long the run took.
func (r SyncRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// SyncStatus represents the current state of the sync service.
type SyncStatus struct {
	// Running indicates if a sync is in progress.
	Running bool

	// Date is the day being synced.
	Date string

	// Stage names the current pipeline step.
	Stage string

	// PapersProcessed is the count of papers handled so far.
	PapersProcessed int
}
