package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papersift/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/papersift/internal/core/domain"
)

// --- Mock implementations ---

// mockLexicalScorer scores a paper by counting case-insensitive term
// occurrences in its title and abstract.
type mockLexicalScorer struct {
	err error

	mu    sync.Mutex
	calls [][]string
}

func (m *mockLexicalScorer) Score(_ context.Context, papers []domain.Paper, terms []string) ([]float64, error) {
	m.mu.Lock()
	m.calls = append(m.calls, terms)
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	scores := make([]float64, len(papers))
	for i, p := range papers {
		text := strings.ToLower(p.Title + " " + p.Abstract)
		for _, t := range terms {
			scores[i] += float64(strings.Count(text, strings.ToLower(t)))
		}
	}
	return scores, nil
}

// mockEmbeddingService embeds text containing "diffusion" as [1,0] and
// everything else as [0,1].
type mockEmbeddingService struct {
	model    string
	embedErr error
	batchErr error
	short    bool
	closed   bool

	mu      sync.Mutex
	queries []string
	batches [][]string
}

func (m *mockEmbeddingService) vector(text string) []float32 {
	if strings.Contains(strings.ToLower(text), "diffusion") {
		return []float32{1, 0}
	}
	return []float32{0, 1}
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.queries = append(m.queries, text)
	m.mu.Unlock()
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batches = append(m.batches, texts)
	m.mu.Unlock()
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int             { return 2 }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingService) ModelName() string {
	if m.model == "" {
		return "mock-embed"
	}
	return m.model
}

func (m *mockEmbeddingService) Close() error {
	m.closed = true
	return nil
}

// mockPaperSource returns fixed records for any date.
type mockPaperSource struct {
	records []domain.RawPaper
	err     error
	loaded  []string
}

func (m *mockPaperSource) Load(_ context.Context, date string) ([]domain.RawPaper, error) {
	m.loaded = append(m.loaded, date)
	return m.records, m.err
}

func (m *mockPaperSource) Location(date string) string {
	return "archive/" + date
}

// mockPublisher records upserted papers.
type mockPublisher struct {
	err       error
	published []domain.Paper
}

func (m *mockPublisher) Upsert(_ context.Context, papers []domain.Paper) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.published = append(m.published, papers...)
	return len(papers), nil
}

func (m *mockPublisher) Target() string { return "mock://papers" }

// failingPaperStore wraps a memory store and fails selected operations.
type failingPaperStore struct {
	*memory.PaperStore
	listErr error
	saveErr error
}

func (s *failingPaperStore) ListPapers(ctx context.Context, f domain.PaperFilter) ([]domain.Paper, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.PaperStore.ListPapers(ctx, f)
}

func (s *failingPaperStore) SavePapers(ctx context.Context, p []domain.Paper) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.PaperStore.SavePapers(ctx, p)
}

var errBoom = errors.New("boom")

// --- Test helpers ---

func testPapers() []domain.Paper {
	return []domain.Paper{
		{
			ID: "a", Date: "20240101",
			Title:    "Graph neural networks",
			Abstract: "We apply graph methods to molecules.",
		},
		{
			ID: "b", Date: "20240101",
			Title:    "Diffusion models",
			Abstract: "Diffusion for graph generation.",
		},
		{
			ID: "c", Date: "20240102",
			Title:    "Language models",
			Abstract: "Transformers for text.",
		},
		{
			ID: "d", Date: "20240102",
			Title:    "Graph diffusion",
			Abstract: "A survey of deprecated methods.",
			Authors:  []string{"Jane Doe", "John Roe"},
		},
	}
}

func setupPaperStore(t *testing.T) *memory.PaperStore {
	t.Helper()
	store := memory.NewPaperStore()
	require.NoError(t, store.SavePapers(context.Background(), testPapers()))
	return store
}

func testSearchSettings() domain.SearchSettings {
	return domain.DefaultAppSettings().Search
}

func resultIDs(results []domain.SearchResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Paper.ID
	}
	return ids
}
