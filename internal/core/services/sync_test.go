package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papersift/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/papersift/internal/core/domain"
	"github.com/custodia-labs/papersift/internal/core/ports/driven"
)

var fixedNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func testRecords() []domain.RawPaper {
	return []domain.RawPaper{
		{
			"id":       "2401.00001",
			"title":    "  Graph neural networks ",
			"abstract": "We apply graph methods.",
			"authors":  []any{"Ada Lovelace", "", "Alan Turing"},
		},
		{"title": "no id, dropped"},
		{"id": "2401.00002", "abstract": "Abstract only.", "source": "arxiv"},
		{"id": "2401.00003"},
	}
}

func newTestSyncService(
	source *mockPaperSource, store *memory.PaperStore, emb *mockEmbeddingService, pub *mockPublisher,
) *SyncService {
	var svc *SyncService
	switch {
	case emb == nil && pub == nil:
		svc = NewSyncService(source, store, nil, nil)
	case emb == nil:
		svc = NewSyncService(source, store, nil, pub)
	case pub == nil:
		svc = NewSyncService(source, store, emb, nil)
	default:
		svc = NewSyncService(source, store, emb, pub)
	}
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestSyncService_Sync(t *testing.T) {
	ctx := context.Background()
	source := &mockPaperSource{records: testRecords()}
	store := memory.NewPaperStore()
	pub := &mockPublisher{}
	svc := newTestSyncService(source, store, nil, pub)

	run, err := svc.Sync(ctx, domain.SyncOptions{Date: "20240101"})
	require.NoError(t, err)

	_, uuidErr := uuid.Parse(run.ID)
	assert.NoError(t, uuidErr)
	assert.Equal(t, "20240101", run.Date)
	assert.Equal(t, domain.SyncRunSucceeded, run.Status)
	assert.Equal(t, 3, run.Papers)
	assert.Equal(t, 3, run.Published)
	assert.Empty(t, run.EmbeddingModel)
	assert.Equal(t, []string{"20240101"}, source.loaded)

	papers, err := store.ListPapers(ctx, domain.PaperFilter{Date: "20240101"})
	require.NoError(t, err)
	require.Len(t, papers, 3)
	assert.Equal(t, "Graph neural networks", papers[0].Title)
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, papers[0].Authors)
	assert.Equal(t, domain.DefaultPaperSource, papers[0].Source)
	assert.Equal(t, "arxiv", papers[1].Source)
	assert.False(t, papers[0].HasEmbedding())

	assert.Len(t, pub.published, 3)

	last, err := svc.LastRun(ctx, "20240101")
	require.NoError(t, err)
	assert.Equal(t, run.ID, last.ID)

	assert.False(t, svc.Status().Running)
}

func TestSyncService_SyncWithEmbeddings(t *testing.T) {
	ctx := context.Background()
	store := memory.NewPaperStore()
	emb := &mockEmbeddingService{}
	svc := newTestSyncService(&mockPaperSource{records: testRecords()}, store, emb, nil)

	run, err := svc.Sync(ctx, domain.SyncOptions{Date: "20240101", WithEmbeddings: true})
	require.NoError(t, err)

	assert.Equal(t, "mock-embed", run.EmbeddingModel)
	assert.Equal(t, 2, run.EmbeddingDim)
	assert.Zero(t, run.Published)

	// The paper without title or abstract is stored but not embedded.
	require.Len(t, emb.batches, 1)
	assert.Equal(t, []string{
		"passage: Title: Graph neural networks\n\nAbstract: We apply graph methods.",
		"passage: Abstract: Abstract only.",
	}, emb.batches[0])

	p, err := store.GetPaper(ctx, "2401.00001")
	require.NoError(t, err)
	assert.True(t, p.HasEmbedding())
	assert.Equal(t, "mock-embed", p.EmbeddingModel)
	assert.Equal(t, 2, p.EmbeddingDim)
	assert.Equal(t, fixedNow, p.EmbeddingUpdatedAt)

	p, err = store.GetPaper(ctx, "2401.00003")
	require.NoError(t, err)
	assert.False(t, p.HasEmbedding())
}

func TestSyncService_EmbeddingModelOverride(t *testing.T) {
	ctx := context.Background()
	store := memory.NewPaperStore()
	configured := &mockEmbeddingService{}
	override := &mockEmbeddingService{model: "bge-m3"}
	svc := newTestSyncService(&mockPaperSource{records: testRecords()}, store, configured, nil)

	var requested []string
	svc.SetEmbeddingFactory(func(_ context.Context, model string) (driven.EmbeddingService, error) {
		requested = append(requested, model)
		return override, nil
	})

	run, err := svc.Sync(ctx, domain.SyncOptions{Date: "20240101", WithEmbeddings: true, EmbeddingModel: "bge-m3"})
	require.NoError(t, err)

	assert.Equal(t, []string{"bge-m3"}, requested)
	assert.Empty(t, configured.batches)
	assert.Len(t, override.batches, 1)
	assert.True(t, override.closed)
	assert.False(t, configured.closed)
	assert.Equal(t, "bge-m3", run.EmbeddingModel)

	p, err := store.GetPaper(ctx, "2401.00001")
	require.NoError(t, err)
	assert.Equal(t, "bge-m3", p.EmbeddingModel)
}

func TestSyncService_EmbeddingModelMatchingConfigured(t *testing.T) {
	configured := &mockEmbeddingService{}
	svc := newTestSyncService(&mockPaperSource{records: testRecords()}, memory.NewPaperStore(), configured, nil)
	svc.SetEmbeddingFactory(func(context.Context, string) (driven.EmbeddingService, error) {
		t.Fatal("factory must not be called for the configured model")
		return nil, nil
	})

	run, err := svc.Sync(context.Background(), domain.SyncOptions{
		Date: "20240101", WithEmbeddings: true, EmbeddingModel: "mock-embed",
	})
	require.NoError(t, err)
	assert.Len(t, configured.batches, 1)
	assert.Equal(t, "mock-embed", run.EmbeddingModel)
}

func TestSyncService_EmbeddingModelOverrideErrors(t *testing.T) {
	tests := []struct {
		name    string
		factory driven.EmbeddingFactory
		wantErr error
	}{
		{
			name:    "no factory",
			wantErr: domain.ErrEmbeddingUnavailable,
		},
		{
			name: "factory error",
			factory: func(context.Context, string) (driven.EmbeddingService, error) {
				return nil, errBoom
			},
			wantErr: errBoom,
		},
		{
			name: "provider not configured",
			factory: func(context.Context, string) (driven.EmbeddingService, error) {
				return nil, nil
			},
			wantErr: domain.ErrEmbeddingUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configured := &mockEmbeddingService{}
			svc := newTestSyncService(&mockPaperSource{records: testRecords()}, memory.NewPaperStore(), configured, nil)
			if tt.factory != nil {
				svc.SetEmbeddingFactory(tt.factory)
			}

			run, err := svc.Sync(context.Background(), domain.SyncOptions{
				Date: "20240101", WithEmbeddings: true, EmbeddingModel: "BAAI/bge-small-en-v1.5",
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, domain.SyncRunFailed, run.Status)
			assert.Empty(t, run.EmbeddingModel)
			assert.Empty(t, configured.batches)
		})
	}
}

func TestSyncService_NoPapers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewPaperStore()
	pub := &mockPublisher{}
	svc := newTestSyncService(&mockPaperSource{}, store, nil, pub)

	run, err := svc.Sync(ctx, domain.SyncOptions{Date: "20240101"})
	require.NoError(t, err)
	assert.Equal(t, domain.SyncRunSkipped, run.Status)
	assert.Zero(t, run.Papers)
	assert.Empty(t, pub.published)

	last, err := store.LastSyncRun(ctx, "20240101")
	require.NoError(t, err)
	assert.Equal(t, domain.SyncRunSkipped, last.Status)
}

func TestSyncService_Failures(t *testing.T) {
	tests := []struct {
		name    string
		source  *mockPaperSource
		emb     *mockEmbeddingService
		pub     *mockPublisher
		opts    domain.SyncOptions
		wantErr error
	}{
		{
			name:    "load error",
			source:  &mockPaperSource{err: errBoom},
			opts:    domain.SyncOptions{Date: "20240101"},
			wantErr: errBoom,
		},
		{
			name:    "embeddings requested without service",
			source:  &mockPaperSource{records: testRecords()},
			opts:    domain.SyncOptions{Date: "20240101", WithEmbeddings: true},
			wantErr: domain.ErrEmbeddingUnavailable,
		},
		{
			name:    "embedding error",
			source:  &mockPaperSource{records: testRecords()},
			emb:     &mockEmbeddingService{batchErr: errBoom},
			opts:    domain.SyncOptions{Date: "20240101", WithEmbeddings: true},
			wantErr: errBoom,
		},
		{
			name:    "embedding count mismatch",
			source:  &mockPaperSource{records: testRecords()},
			emb:     &mockEmbeddingService{short: true},
			opts:    domain.SyncOptions{Date: "20240101", WithEmbeddings: true},
			wantErr: domain.ErrEmbeddingMismatch,
		},
		{
			name:    "publish error",
			source:  &mockPaperSource{records: testRecords()},
			pub:     &mockPublisher{err: errBoom},
			opts:    domain.SyncOptions{Date: "20240101"},
			wantErr: errBoom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := memory.NewPaperStore()
			svc := newTestSyncService(tt.source, store, tt.emb, tt.pub)

			run, err := svc.Sync(ctx, tt.opts)
			require.ErrorIs(t, err, tt.wantErr)
			require.NotNil(t, run)
			assert.Equal(t, domain.SyncRunFailed, run.Status)
			assert.NotEmpty(t, run.Error)

			last, err := store.LastSyncRun(ctx, "20240101")
			require.NoError(t, err)
			assert.Equal(t, run.ID, last.ID)
			assert.Equal(t, domain.SyncRunFailed, last.Status)
			assert.False(t, svc.Status().Running)
		})
	}
}

func TestSyncService_StoreFailure(t *testing.T) {
	store := &failingPaperStore{PaperStore: memory.NewPaperStore(), saveErr: errBoom}
	svc := NewSyncService(&mockPaperSource{records: testRecords()}, store, nil, nil)

	run, err := svc.Sync(context.Background(), domain.SyncOptions{Date: "20240101"})
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, domain.SyncRunFailed, run.Status)
}

func TestSyncService_InvalidDate(t *testing.T) {
	svc := newTestSyncService(&mockPaperSource{}, memory.NewPaperStore(), nil, nil)

	for _, date := range []string{"2024-01-01", "20241301", "abc"} {
		run, err := svc.Sync(context.Background(), domain.SyncOptions{Date: date})
		assert.ErrorIs(t, err, domain.ErrInvalidDate, date)
		assert.Nil(t, run)
	}

	_, err := svc.LastRun(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestSyncService_DefaultsToToday(t *testing.T) {
	source := &mockPaperSource{}
	svc := newTestSyncService(source, memory.NewPaperStore(), nil, nil)

	run, err := svc.Sync(context.Background(), domain.SyncOptions{})
	require.NoError(t, err)
	require.Len(t, source.loaded, 1)
	assert.Equal(t, run.Date, source.loaded[0])
	assert.NoError(t, domain.ValidateDate(run.Date))
}

// blockingSource blocks Load until released.
type blockingSource struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingSource) Load(_ context.Context, _ string) ([]domain.RawPaper, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return nil, nil
}

func (b *blockingSource) Location(date string) string { return date }

func TestSyncService_SingleFlight(t *testing.T) {
	source := &blockingSource{started: make(chan struct{}), release: make(chan struct{})}
	svc := NewSyncService(source, memory.NewPaperStore(), nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Sync(context.Background(), domain.SyncOptions{Date: "20240101"})
		done <- err
	}()

	<-source.started
	status := svc.Status()
	assert.True(t, status.Running)
	assert.Equal(t, "20240101", status.Date)
	assert.Equal(t, stageLoad, status.Stage)

	_, err := svc.Sync(context.Background(), domain.SyncOptions{Date: "20240102"})
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)

	close(source.release)
	require.NoError(t, <-done)
	assert.False(t, svc.Status().Running)
}
