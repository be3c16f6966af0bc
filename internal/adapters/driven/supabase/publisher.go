// Package supabase publishes papers to a Supabase (PostgREST) table.
//
// Rows are merged by primary key using the on_conflict=id upsert. Embeddings
// are sent as pgvector text literals so the column can be of type vector.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/papersift/internal/core/domain"
	"github.com/custodia-labs/papersift/internal/core/ports/driven"
	"github.com/custodia-labs/papersift/internal/logger"
)

// Ensure Publisher implements the interface.
var _ driven.PaperPublisher = (*Publisher)(nil)

// Default configuration values.
const (
	DefaultTable     = "papers"
	DefaultBatchSize = 500
	DefaultTimeout   = 30 * time.Second

	// errorBodyLimit caps how much of an error response is reported.
	errorBodyLimit = 200
)

// Config holds configuration for the publisher.
type Config struct {
	// URL is the project URL (required), e.g. https://xyz.supabase.co.
	URL string

	// ServiceKey is the service role key (required).
	ServiceKey string

	// Table is the destination table (default: papers).
	Table string

	// BatchSize is the number of rows per request (default: 500).
	BatchSize int

	// RequestsPerSecond throttles requests. Zero disables throttling.
	RequestsPerSecond float64

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration
}

// Publisher upserts papers over the PostgREST API.
type Publisher struct {
	client    *http.Client
	endpoint  string
	key       string
	batchSize int
	limiter   *RateLimiter
}

// NewPublisher creates a publisher. URL and ServiceKey are required.
func NewPublisher(cfg Config) (*Publisher, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		return nil, fmt.Errorf("supabase: URL is required")
	}
	if cfg.ServiceKey == "" {
		return nil, fmt.Errorf("supabase: service key is required")
	}
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Publisher{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		endpoint:  base + "/rest/v1/" + cfg.Table + "?on_conflict=id",
		key:       cfg.ServiceKey,
		batchSize: cfg.BatchSize,
		limiter:   NewRateLimiter(cfg.RequestsPerSecond),
	}, nil
}

// Target returns the upsert endpoint.
func (p *Publisher) Target() string {
	return p.endpoint
}

// Upsert sends papers in batches and returns how many were accepted before
// the first failure.
func (p *Publisher) Upsert(ctx context.Context, papers []domain.Paper) (int, error) {
	total := len(papers)
	done := 0
	for start := 0; start < total; start += p.batchSize {
		end := min(start+p.batchSize, total)

		if err := p.limiter.Wait(ctx); err != nil {
			return done, err
		}
		if err := p.post(ctx, papers[start:end]); err != nil {
			return done, err
		}

		done = end
		logger.Info("[Supabase] upsert papers: %d/%d", done, total)
	}
	return done, nil
}

func (p *Publisher) post(ctx context.Context, papers []domain.Paper) error {
	rows := make([]row, len(papers))
	for i, paper := range papers {
		rows[i] = toRow(paper)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("marshal rows: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", p.key)
	req.Header.Set("Authorization", "Bearer "+p.key)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "resolution=merge-duplicates")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		p.limiter.Backoff(retryAfter(resp.Header.Get("Retry-After")))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	if err != nil {
		return fmt.Errorf("upsert papers: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	return fmt.Errorf("upsert papers: HTTP %d %s", resp.StatusCode, string(body))
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// row is the JSON shape of one papers table row.
type row struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Abstract           string   `json:"abstract"`
	Authors            []string `json:"authors"`
	PrimaryCategory    *string  `json:"primary_category"`
	Categories         []string `json:"categories"`
	Published          *string  `json:"published"`
	Link               *string  `json:"link"`
	Source             string   `json:"source"`
	UpdatedAt          string   `json:"updated_at"`
	Embedding          string   `json:"embedding,omitempty"`
	EmbeddingModel     string   `json:"embedding_model,omitempty"`
	EmbeddingDim       int      `json:"embedding_dim,omitempty"`
	EmbeddingUpdatedAt string   `json:"embedding_updated_at,omitempty"`
}

func toRow(p domain.Paper) row {
	r := row{
		ID:              p.ID,
		Title:           p.Title,
		Abstract:        p.Abstract,
		Authors:         nonNil(p.Authors),
		PrimaryCategory: nullable(p.PrimaryCategory),
		Categories:      nonNil(p.Categories),
		Published:       nullable(p.Published),
		Link:            nullable(p.Link),
		Source:          p.Source,
		UpdatedAt:       formatTime(p.UpdatedAt),
	}
	if p.HasEmbedding() {
		r.Embedding = VectorLiteral(p.Embedding)
		r.EmbeddingModel = p.EmbeddingModel
		r.EmbeddingDim = p.EmbeddingDim
		r.EmbeddingUpdatedAt = formatTime(p.EmbeddingUpdatedAt)
	}
	return r
}

// VectorLiteral formats v as a pgvector literal with 8 decimals,
// e.g. [0.10000000,-0.50000000].
func VectorLiteral(v []float32) string {
	var b strings.Builder
	b.Grow(len(v)*12 + 2)
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(x), 'f', 8, 64))
	}
	b.WriteByte(']')
	return b.String()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
