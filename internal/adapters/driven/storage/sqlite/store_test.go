package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papersift/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func testPaper(id, date string) domain.Paper {
	return domain.Paper{
		ID:              id,
		Date:            date,
		Title:           "Title " + id,
		Abstract:        "Abstract " + id,
		Authors:         []string{"Ada Lovelace", "Alan Turing"},
		PrimaryCategory: "cs.LG",
		Categories:      []string{"cs.LG", "stat.ML"},
		Published:       "2024-01-01T00:00:00Z",
		Link:            "https://arxiv.org/abs/" + id,
		Source:          domain.DefaultPaperSource,
		UpdatedAt:       time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC),
	}
}

func TestNewStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_MigrationsRecorded(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must not re-run the initial migration.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestStore_SaveAndGetPaper(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	want := testPaper("2401.00001", "20240101")
	want.Embedding = []float32{0.25, -1.5, 3}
	want.EmbeddingModel = "bge-small"
	want.EmbeddingDim = 3
	want.EmbeddingUpdatedAt = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SavePapers(ctx, []domain.Paper{want}))

	got, err := store.GetPaper(ctx, want.ID)
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestStore_GetPaper_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetPaper(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_SavePapers_Upsert(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	p := testPaper("a", "20240101")
	require.NoError(t, store.SavePapers(ctx, []domain.Paper{p}))

	p.Title = "Revised"
	p.Authors = nil
	require.NoError(t, store.SavePapers(ctx, []domain.Paper{p}))

	got, err := store.GetPaper(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Revised", got.Title)
	assert.Equal(t, []string{}, got.Authors)
	assert.Nil(t, got.Embedding)

	papers, err := store.ListPapers(ctx, domain.PaperFilter{})
	require.NoError(t, err)
	assert.Len(t, papers, 1)
}

func TestStore_SavePapers_Empty(t *testing.T) {
	store := setupTestStore(t)
	assert.NoError(t, store.SavePapers(context.Background(), nil))
}

func TestStore_ListPapers(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SavePapers(ctx, []domain.Paper{
		testPaper("c", "20240102"),
		testPaper("a", "20240101"),
		testPaper("b", "20240101"),
	}))

	tests := []struct {
		name   string
		filter domain.PaperFilter
		want   []string
	}{
		{"all ordered by id", domain.PaperFilter{}, []string{"a", "b", "c"}},
		{"by date", domain.PaperFilter{Date: "20240101"}, []string{"a", "b"}},
		{"limit", domain.PaperFilter{Limit: 1}, []string{"a"}},
		{"date and limit", domain.PaperFilter{Date: "20240102", Limit: 5}, []string{"c"}},
		{"no match", domain.PaperFilter{Date: "19990101"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			papers, err := store.ListPapers(ctx, tt.filter)
			require.NoError(t, err)
			ids := make([]string, len(papers))
			for i, p := range papers {
				ids[i] = p.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestStore_DeletePaper(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SavePapers(ctx, []domain.Paper{testPaper("a", "20240101")}))
	require.NoError(t, store.DeletePaper(ctx, "a"))
	require.NoError(t, store.DeletePaper(ctx, "a"))

	_, err := store.GetPaper(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_SyncRuns(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.LastSyncRun(ctx, "20240101")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	started := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
	first := domain.SyncRun{
		ID: "run-1", Date: "20240101", Papers: 10, Published: 10,
		Status: domain.SyncRunSucceeded, StartedAt: started, FinishedAt: started.Add(time.Minute),
	}
	other := domain.SyncRun{ID: "run-2", Date: "20240102", Status: domain.SyncRunSkipped, StartedAt: started}
	second := domain.SyncRun{
		ID: "run-3", Date: "20240101", Papers: 12, EmbeddingModel: "bge", EmbeddingDim: 384,
		Status: domain.SyncRunFailed, Error: "publish: boom", StartedAt: started.Add(time.Hour),
	}

	require.NoError(t, store.SaveSyncRun(ctx, first))
	require.NoError(t, store.SaveSyncRun(ctx, other))
	require.NoError(t, store.SaveSyncRun(ctx, second))

	got, err := store.LastSyncRun(ctx, "20240101")
	require.NoError(t, err)
	assert.Equal(t, second, *got)

	got, err = store.LastSyncRun(ctx, "20240102")
	require.NoError(t, err)
	assert.Equal(t, "run-2", got.ID)
	assert.True(t, got.FinishedAt.IsZero())
}

func TestFloat32Encoding(t *testing.T) {
	in := []float32{0, 1, -1, 3.25, 1e-8}
	data := float32SliceToBytes(in)
	assert.Len(t, data, 20)
	assert.Equal(t, in, bytesToFloat32Slice(data))

	// Trailing partial float is ignored.
	assert.Equal(t, []float32{0}, bytesToFloat32Slice(append(float32SliceToBytes([]float32{0}), 0xff)))
}

func TestTimeEncoding(t *testing.T) {
	assert.Empty(t, formatTime(time.Time{}))
	assert.True(t, parseTime("").IsZero())
	assert.True(t, parseTime("garbage").IsZero())

	ts := time.Date(2024, 5, 6, 7, 8, 9, 10, time.UTC)
	assert.Equal(t, ts, parseTime(formatTime(ts)))
}
