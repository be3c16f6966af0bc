package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/papersift/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/papersift/internal/core/domain"
	"github.com/custodia-labs/papersift/internal/core/ports/driven"
)

// DatabaseFile is the database file name inside the data directory.
const DatabaseFile = "papers.db"

// Store is a SQLite-based paper store.
type Store struct {
	db   *sql.DB
	path string
}

// Ensure Store implements the interface.
var _ driven.PaperStore = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.papersift/data/papers.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".papersift", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending up migrations in version order.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Papers ====================

const paperColumns = `id, date, title, abstract, authors, primary_category, categories,
	published, link, source, embedding, embedding_model, embedding_dim,
	embedding_updated_at, updated_at`

// SavePapers stores or updates papers by ID in a single transaction.
func (s *Store) SavePapers(ctx context.Context, papers []domain.Paper) error {
	if len(papers) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO papers (`+paperColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i := range papers {
		p := &papers[i]
		authors, err := marshalList(p.Authors)
		if err != nil {
			return fmt.Errorf("marshalling authors of %s: %w", p.ID, err)
		}
		categories, err := marshalList(p.Categories)
		if err != nil {
			return fmt.Errorf("marshalling categories of %s: %w", p.ID, err)
		}

		var embedding []byte
		if len(p.Embedding) > 0 {
			embedding = float32SliceToBytes(p.Embedding)
		}

		_, err = stmt.ExecContext(ctx,
			p.ID, p.Date, p.Title, p.Abstract, authors, p.PrimaryCategory, categories,
			p.Published, p.Link, p.Source, embedding, p.EmbeddingModel, p.EmbeddingDim,
			formatTime(p.EmbeddingUpdatedAt), formatTime(p.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("saving paper %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// GetPaper retrieves a paper by ID.
func (s *Store) GetPaper(ctx context.Context, id string) (*domain.Paper, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+paperColumns+" FROM papers WHERE id = ?", id)
	p, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPapers returns papers matching the filter, ordered by ID.
func (s *Store) ListPapers(ctx context.Context, filter domain.PaperFilter) ([]domain.Paper, error) {
	query := "SELECT " + paperColumns + " FROM papers"
	var args []any
	if filter.Date != "" {
		query += " WHERE date = ?"
		args = append(args, filter.Date)
	}
	query += " ORDER BY id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	papers := []domain.Paper{}
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, *p)
	}
	return papers, rows.Err()
}

// DeletePaper removes a paper.
func (s *Store) DeletePaper(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM papers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting paper %s: %w", id, err)
	}
	return nil
}

// ==================== Sync Runs ====================

// SaveSyncRun records a finished sync run.
func (s *Store) SaveSyncRun(ctx context.Context, run domain.SyncRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sync_runs
			(id, date, papers, published, embedding_model, embedding_dim, status, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID, run.Date, run.Papers, run.Published, run.EmbeddingModel, run.EmbeddingDim,
		string(run.Status), run.Error, formatTime(run.StartedAt), formatTime(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("saving sync run %s: %w", run.ID, err)
	}
	return nil
}

// LastSyncRun returns the most recently recorded run for a date.
func (s *Store) LastSyncRun(ctx context.Context, date string) (*domain.SyncRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, date, papers, published, embedding_model, embedding_dim, status, error, started_at, finished_at
		FROM sync_runs WHERE date = ? ORDER BY rowid DESC LIMIT 1
	`, date)

	var run domain.SyncRun
	var status, startedAt, finishedAt string
	err := row.Scan(&run.ID, &run.Date, &run.Papers, &run.Published, &run.EmbeddingModel,
		&run.EmbeddingDim, &status, &run.Error, &startedAt, &finishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning sync run: %w", err)
	}
	run.Status = domain.SyncRunStatus(status)
	run.StartedAt = parseTime(startedAt)
	run.FinishedAt = parseTime(finishedAt)
	return &run, nil
}

// ==================== Helpers ====================

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaper(row rowScanner) (*domain.Paper, error) {
	var p domain.Paper
	var authors, categories, embeddingUpdatedAt, updatedAt string
	var embedding []byte

	err := row.Scan(&p.ID, &p.Date, &p.Title, &p.Abstract, &authors, &p.PrimaryCategory,
		&categories, &p.Published, &p.Link, &p.Source, &embedding, &p.EmbeddingModel,
		&p.EmbeddingDim, &embeddingUpdatedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning paper: %w", err)
	}

	if p.Authors, err = unmarshalList(authors); err != nil {
		return nil, fmt.Errorf("unmarshalling authors of %s: %w", p.ID, err)
	}
	if p.Categories, err = unmarshalList(categories); err != nil {
		return nil, fmt.Errorf("unmarshalling categories of %s: %w", p.ID, err)
	}
	if len(embedding) > 0 {
		p.Embedding = bytesToFloat32Slice(embedding)
	}
	p.EmbeddingUpdatedAt = parseTime(embeddingUpdatedAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

func marshalList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalList(data string) ([]string, error) {
	items := []string{}
	if data == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// float32SliceToBytes encodes a vector as little-endian float32s.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice decodes a vector written by float32SliceToBytes.
// Trailing bytes that do not form a full float are ignored.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
