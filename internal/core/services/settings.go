package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/papersift/internal/core/domain"
	"github.com/custodia-labs/papersift/internal/core/ports/driven"
	"github.com/custodia-labs/papersift/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyORSoftWeight      = "search.or_soft_weight"
	keySemanticWeight    = "search.semantic_weight"
	keySearchLimit       = "search.limit"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keySupabaseURL       = "supabase.url"
	keySupabaseTable     = "supabase.papers_table"
	keyArchiveDir        = "sync.archive_dir"
	keyBatchSize         = "sync.batch_size"
	keyRequestsPerSecond = "sync.requests_per_second"
)

// Environment variables. Secrets are only ever read from the environment.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvSupabaseURL   = "SUPABASE_URL"
	EnvSupabaseKey   = "SUPABASE_SERVICE_KEY"
	EnvSupabaseTable = "SUPABASE_PAPERS_TABLE"
	EnvOpenAIKey     = "OPENAI_API_KEY"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindProvider
)

// settingKeys lists settable keys in display order.
var settingKeys = []struct {
	key  string
	kind keyKind
}{
	{keyORSoftWeight, kindFloat},
	{keySemanticWeight, kindFloat},
	{keySearchLimit, kindInt},
	{keyEmbedProvider, kindProvider},
	{keyEmbedModel, kindString},
	{keyEmbedBaseURL, kindString},
	{keySupabaseURL, kindString},
	{keySupabaseTable, kindString},
	{keyArchiveDir, kindString},
	{keyBatchSize, kindInt},
	{keyRequestsPerSecond, kindFloat},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings.
// Environment variables override the supabase keys from the config file.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Search: domain.SearchSettings{
			ORSoftWeight:   s.getFloat(keyORSoftWeight, defaults.Search.ORSoftWeight),
			SemanticWeight: s.getFloat(keySemanticWeight, defaults.Search.SemanticWeight),
			Limit:          s.getInt(keySearchLimit, defaults.Search.Limit),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.env(EnvOpenAIKey, ""),
		},
		Supabase: domain.SupabaseSettings{
			URL:         s.env(EnvSupabaseURL, s.configStore.GetString(keySupabaseURL)),
			ServiceKey:  s.env(EnvSupabaseKey, ""),
			PapersTable: s.env(EnvSupabaseTable, s.getString(keySupabaseTable, defaults.Supabase.PapersTable)),
		},
		Sync: domain.SyncSettings{
			ArchiveDir:        s.getString(keyArchiveDir, defaults.Sync.ArchiveDir),
			BatchSize:         s.getInt(keyBatchSize, defaults.Sync.BatchSize),
			RequestsPerSecond: s.getFloat(keyRequestsPerSecond, defaults.Sync.RequestsPerSecond),
		},
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Set parses value according to the key's type, validates the resulting
// settings and persists the key.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := lookupKind(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	value = strings.TrimSpace(value)
	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer, got %q", domain.ErrInvalidInput, key, value)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s expects a number, got %q", domain.ErrInvalidInput, key, value)
		}
		parsed = f
	case kindProvider:
		p := domain.AIProvider(strings.ToLower(value))
		if !p.IsValid() {
			return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, value)
		}
		parsed = p.String()
	default:
		parsed = value
	}

	candidate, err := s.Get()
	if err != nil {
		candidate = ptr(domain.DefaultAppSettings())
	}
	applySetting(candidate, key, parsed)
	if err := candidate.Validate(); err != nil {
		return err
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys lists the settable config keys.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.key
	}
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func lookupKind(key string) (keyKind, bool) {
	for _, k := range settingKeys {
		if k.key == key {
			return k.kind, true
		}
	}
	return 0, false
}

func applySetting(s *domain.AppSettings, key string, v any) {
	switch key {
	case keyORSoftWeight:
		s.Search.ORSoftWeight = v.(float64)
	case keySemanticWeight:
		s.Search.SemanticWeight = v.(float64)
	case keySearchLimit:
		s.Search.Limit = v.(int)
	case keyEmbedProvider:
		s.Embedding.Provider = domain.AIProvider(v.(string))
	case keyEmbedModel:
		s.Embedding.Model = v.(string)
	case keyEmbedBaseURL:
		s.Embedding.BaseURL = v.(string)
	case keySupabaseURL:
		s.Supabase.URL = v.(string)
	case keySupabaseTable:
		s.Supabase.PapersTable = v.(string)
	case keyArchiveDir:
		s.Sync.ArchiveDir = v.(string)
	case keyBatchSize:
		s.Sync.BatchSize = v.(int)
	case keyRequestsPerSecond:
		s.Sync.RequestsPerSecond = v.(float64)
	}
}

func ptr[T any](v T) *T { return &v }

// Helper methods for reading config with defaults.

func (s *SettingsService) env(name, fallback string) string {
	if v, ok := s.lookupEnv(name); ok && v != "" {
		return v
	}
	return fallback
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(keyEmbedProvider)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
