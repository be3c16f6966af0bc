package domain

import "fmt"

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderNone disables embeddings.
	AIProviderNone AIProvider = "none"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderNone:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderNone:
		return "Disabled"
	default:
		return unknownDescription
	}
}

// SearchSettings holds search behaviour configuration.
type SearchSettings struct {
	// ORSoftWeight scales the scores of matching OR branches other than
	// the best one.
	ORSoftWeight float64

	// SemanticWeight is the share of embedding similarity in hybrid scores.
	SemanticWeight float64

	// Limit is the default number of results.
	Limit int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name. Empty uses the provider default.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI). Read from the environment only.
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderNone {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// SupabaseSettings holds remote store configuration.
type SupabaseSettings struct {
	// URL is the project URL, e.g. https://xyz.supabase.co.
	URL string

	// ServiceKey is the service role key. Read from the environment only.
	ServiceKey string

	// PapersTable is the table papers are upserted into.
	PapersTable string
}

// IsConfigured returns true if remote publishing is possible.
func (s SupabaseSettings) IsConfigured() bool {
	return s.URL != "" && s.ServiceKey != ""
}

// SyncSettings holds archive synchronisation configuration.
type SyncSettings struct {
	// ArchiveDir is the root of the daily archive tree.
	ArchiveDir string

	// BatchSize is the number of rows per upsert request.
	BatchSize int

	// RequestsPerSecond throttles upsert requests.
	RequestsPerSecond float64
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Search holds search behaviour settings.
	Search SearchSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Supabase holds remote store settings.
	Supabase SupabaseSettings

	// Sync holds synchronisation settings.
	Sync SyncSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Search: SearchSettings{
			ORSoftWeight:   0.3,
			SemanticWeight: 0.5,
			Limit:          20,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
		},
		Supabase: SupabaseSettings{
			PapersTable: "arxiv_papers",
		},
		Sync: SyncSettings{
			ArchiveDir:        "archive",
			BatchSize:         500,
			RequestsPerSecond: 2,
		},
	}
}

// Validate checks that the settings are usable.
func (s AppSettings) Validate() error {
	if s.Search.ORSoftWeight < 0 || s.Search.ORSoftWeight > 1 {
		return fmt.Errorf("%w: search.or_soft_weight must be in [0,1], got %v", ErrInvalidInput, s.Search.ORSoftWeight)
	}
	if s.Search.SemanticWeight < 0 || s.Search.SemanticWeight > 1 {
		return fmt.Errorf("%w: search.semantic_weight must be in [0,1], got %v", ErrInvalidInput, s.Search.SemanticWeight)
	}
	if s.Search.Limit <= 0 {
		return fmt.Errorf("%w: search.limit must be positive, got %d", ErrInvalidInput, s.Search.Limit)
	}
	if !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidInput, s.Embedding.Provider)
	}
	if s.Sync.BatchSize <= 0 {
		return fmt.Errorf("%w: sync.batch_size must be positive, got %d", ErrInvalidInput, s.Sync.BatchSize)
	}
	if s.Sync.RequestsPerSecond <= 0 {
		return fmt.Errorf("%w: sync.requests_per_second must be positive, got %v", ErrInvalidInput, s.Sync.RequestsPerSecond)
	}
	return nil
}
