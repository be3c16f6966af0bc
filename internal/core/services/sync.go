package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/papersift/internal/core/domain"
	"github.com/custodia-labs/papersift/internal/core/ports/driven"
	"github.com/custodia-labs/papersift/internal/core/ports/driving"
	"github.com/custodia-labs/papersift/internal/logger"
)

// Ensure SyncService implements the interface.
var _ driving.SyncService = (*SyncService)(nil)

// Sync pipeline stages reported by Status.
const (
	stageLoad    = "load"
	stageEmbed   = "embed"
	stageStore   = "store"
	stagePublish = "publish"
)

// SyncService imports one archive day: load, normalise, embed, store and
// publish.
type SyncService struct {
	source           driven.PaperSource
	paperStore       driven.PaperStore
	embeddingService driven.EmbeddingService
	publisher        driven.PaperPublisher
	embeddingFactory driven.EmbeddingFactory
	now              func() time.Time

	mu     sync.RWMutex
	status domain.SyncStatus
}

// NewSyncService creates a new sync service.
// The embeddingService and publisher are optional (can be nil).
func NewSyncService(
	source driven.PaperSource,
	paperStore driven.PaperStore,
	embeddingService driven.EmbeddingService,
	publisher driven.PaperPublisher,
) *SyncService {
	return &SyncService{
		source:           source,
		paperStore:       paperStore,
		embeddingService: embeddingService,
		publisher:        publisher,
		now:              time.Now,
	}
}

// SetEmbeddingFactory enables SyncOptions.EmbeddingModel: a sync asking for
// a model other than the configured one embeds with a service built by f.
func (s *SyncService) SetEmbeddingFactory(f driven.EmbeddingFactory) {
	s.embeddingFactory = f
}

// Sync imports the archive for opts.Date (today when empty).
// A failed run is recorded and returned together with the error.
func (s *SyncService) Sync(ctx context.Context, opts domain.SyncOptions) (*domain.SyncRun, error) {
	date := opts.Date
	if date == "" {
		date = domain.Today()
	}
	if err := domain.ValidateDate(date); err != nil {
		return nil, err
	}

	if !s.begin(date) {
		return nil, domain.ErrSyncInProgress
	}
	defer s.end()

	run := &domain.SyncRun{
		ID:        uuid.NewString(),
		Date:      date,
		StartedAt: s.now(),
	}

	logger.Section("Sync " + date)
	logger.Info("Starting sync %s from %s", run.ID, s.source.Location(date))

	if err := s.run(ctx, opts, run); err != nil {
		run.Status = domain.SyncRunFailed
		run.Error = err.Error()
		run.FinishedAt = s.now()
		if saveErr := s.paperStore.SaveSyncRun(ctx, *run); saveErr != nil {
			logger.Warn("Failed to record sync run: %v", saveErr)
		}
		logger.Error("Sync %s failed: %v", date, err)
		return run, err
	}

	run.FinishedAt = s.now()
	if err := s.paperStore.SaveSyncRun(ctx, *run); err != nil {
		return run, fmt.Errorf("save sync run: %w", err)
	}

	logger.Info("Sync complete: %d papers, %d published (%s)",
		run.Papers, run.Published, run.Duration().Round(time.Millisecond))
	return run, nil
}

// run executes the pipeline, filling in run as it goes.
func (s *SyncService) run(ctx context.Context, opts domain.SyncOptions, run *domain.SyncRun) error {
	s.setStage(stageLoad, 0)
	raw, err := s.source.Load(ctx, run.Date)
	if err != nil {
		return fmt.Errorf("load archive: %w", err)
	}

	now := s.now()
	papers := make([]domain.Paper, 0, len(raw))
	for _, r := range raw {
		p, ok := domain.NormalizePaper(r, run.Date, now)
		if !ok {
			logger.Debug("Skipping record without id")
			continue
		}
		papers = append(papers, p)
	}
	run.Papers = len(papers)
	logger.Info("Loaded %d papers (%d raw records)", len(papers), len(raw))

	if len(papers) == 0 {
		run.Status = domain.SyncRunSkipped
		logger.Warn("No papers found for %s", run.Date)
		return nil
	}

	if opts.WithEmbeddings {
		s.setStage(stageEmbed, 0)
		if err := s.embed(ctx, opts, papers, run); err != nil {
			return err
		}
	}

	s.setStage(stageStore, len(papers))
	if err := s.paperStore.SavePapers(ctx, papers); err != nil {
		return fmt.Errorf("save papers: %w", err)
	}

	if s.publisher == nil {
		logger.Info("Remote store not configured, skipping publish")
	} else {
		s.setStage(stagePublish, len(papers))
		logger.Info("Publishing to %s", s.publisher.Target())
		n, err := s.publisher.Upsert(ctx, papers)
		run.Published = n
		if err != nil {
			return fmt.Errorf("publish: %w", err)
		}
	}

	run.Status = domain.SyncRunSucceeded
	return nil
}

// embed computes passage embeddings for papers that have text.
func (s *SyncService) embed(
	ctx context.Context, opts domain.SyncOptions, papers []domain.Paper, run *domain.SyncRun,
) error {
	embedder, release, err := s.embedderFor(ctx, opts.EmbeddingModel)
	if err != nil {
		return err
	}
	defer release()

	var idx []int
	var texts []string
	for i := range papers {
		if text := domain.BuildEmbeddingText(papers[i]); text != "" {
			idx = append(idx, i)
			texts = append(texts, text)
		}
	}
	if len(texts) == 0 {
		logger.Warn("No paper text to embed")
		return nil
	}

	model := embedder.ModelName()
	logger.Info("Embedding %d papers with %s", len(texts), model)

	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed papers: %w", err)
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("%w: %d vectors for %d texts", domain.ErrEmbeddingMismatch, len(vectors), len(texts))
	}

	stamp := s.now()
	dim := 0
	for i, vec := range vectors {
		p := &papers[idx[i]]
		p.Embedding = vec
		p.EmbeddingModel = model
		p.EmbeddingDim = len(vec)
		p.EmbeddingUpdatedAt = stamp
		dim = len(vec)
	}
	run.EmbeddingModel = model
	run.EmbeddingDim = dim
	s.setStage(stageEmbed, len(vectors))
	return nil
}

// embedderFor returns the service that embeds with model, or the configured
// service when model is empty or already in use. release closes a service
// built for this sync only.
func (s *SyncService) embedderFor(
	ctx context.Context, model string,
) (svc driven.EmbeddingService, release func(), err error) {
	noop := func() {}
	if model == "" || (s.embeddingService != nil && s.embeddingService.ModelName() == model) {
		if s.embeddingService == nil {
			return nil, noop, domain.ErrEmbeddingUnavailable
		}
		return s.embeddingService, noop, nil
	}

	if s.embeddingFactory == nil {
		return nil, noop, fmt.Errorf("%w: cannot switch to model %s", domain.ErrEmbeddingUnavailable, model)
	}
	svc, err = s.embeddingFactory(ctx, model)
	if err != nil {
		return nil, noop, fmt.Errorf("embedding model %s: %w", model, err)
	}
	if svc == nil {
		return nil, noop, domain.ErrEmbeddingUnavailable
	}
	return svc, func() {
		if err := svc.Close(); err != nil {
			logger.Warn("Closing embedding service: %v", err)
		}
	}, nil
}

// Status returns the current sync progress.
func (s *SyncService) Status() domain.SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// LastRun returns the most recent run for a date.
func (s *SyncService) LastRun(ctx context.Context, date string) (*domain.SyncRun, error) {
	if err := domain.ValidateDate(date); err != nil {
		return nil, err
	}
	return s.paperStore.LastSyncRun(ctx, date)
}

func (s *SyncService) begin(date string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Running {
		return false
	}
	s.status = domain.SyncStatus{Running: true, Date: date}
	return true
}

func (s *SyncService) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = domain.SyncStatus{}
}

func (s *SyncService) setStage(stage string, processed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Stage = stage
	s.status.PapersProcessed = processed
}
