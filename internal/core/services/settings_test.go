package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papersift/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/papersift/internal/core/domain"
)

func newTestSettingsService(env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore()
	svc := NewSettingsService(store)
	svc.lookupEnv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	return svc, store
}

func TestSettingsService_GetDefaults(t *testing.T) {
	svc, _ := newTestSettingsService(nil)

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
	assert.Equal(t, domain.DefaultAppSettings(), svc.GetDefaults())
}

func TestSettingsService_GetFromConfig(t *testing.T) {
	svc, store := newTestSettingsService(nil)
	require.NoError(t, store.Set("search.or_soft_weight", 0.1))
	require.NoError(t, store.Set("search.limit", int64(50)))
	require.NoError(t, store.Set("embedding.provider", "openai"))
	require.NoError(t, store.Set("embedding.model", "text-embedding-3-small"))
	require.NoError(t, store.Set("supabase.url", "https://cfg.supabase.co"))
	require.NoError(t, store.Set("sync.requests_per_second", 5))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.InDelta(t, 0.1, settings.Search.ORSoftWeight, 1e-9)
	assert.Equal(t, 50, settings.Search.Limit)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
	assert.Equal(t, "https://cfg.supabase.co", settings.Supabase.URL)
	assert.InDelta(t, 5.0, settings.Sync.RequestsPerSecond, 1e-9)
}

func TestSettingsService_ZeroWeightIsKept(t *testing.T) {
	svc, store := newTestSettingsService(nil)
	require.NoError(t, store.Set("search.or_soft_weight", 0.0))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Zero(t, settings.Search.ORSoftWeight)
}

func TestSettingsService_EnvOverrides(t *testing.T) {
	svc, store := newTestSettingsService(map[string]string{
		EnvSupabaseURL:   "https://env.supabase.co",
		EnvSupabaseKey:   "service-key",
		EnvSupabaseTable: "papers_v2",
		EnvOpenAIKey:     "sk-test",
	})
	require.NoError(t, store.Set("supabase.url", "https://cfg.supabase.co"))
	require.NoError(t, store.Set("supabase.papers_table", "from_config"))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "https://env.supabase.co", settings.Supabase.URL)
	assert.Equal(t, "service-key", settings.Supabase.ServiceKey)
	assert.Equal(t, "papers_v2", settings.Supabase.PapersTable)
	assert.Equal(t, "sk-test", settings.Embedding.APIKey)
	assert.True(t, settings.Supabase.IsConfigured())
}

func TestSettingsService_InvalidStoredProviderFallsBack(t *testing.T) {
	svc, store := newTestSettingsService(nil)
	require.NoError(t, store.Set("embedding.provider", "cohere"))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  any
	}{
		{"search.or_soft_weight", "0.25", 0.25},
		{"search.semantic_weight", "1", 1.0},
		{"search.limit", " 30 ", 30},
		{"embedding.provider", "OpenAI", "openai"},
		{"embedding.model", "nomic-embed-text", "nomic-embed-text"},
		{"supabase.papers_table", "papers", "papers"},
		{"sync.batch_size", "100", 100},
		{"sync.requests_per_second", "0.5", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			svc, store := newTestSettingsService(nil)
			require.NoError(t, svc.Set(tt.key, tt.value))

			got, ok := store.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettingsService_SetRejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "search.mode", "hybrid"},
		{"not an int", "search.limit", "many"},
		{"not a float", "search.or_soft_weight", "high"},
		{"weight out of range", "search.or_soft_weight", "1.5"},
		{"negative semantic weight", "search.semantic_weight", "-0.1"},
		{"zero limit", "search.limit", "0"},
		{"unknown provider", "embedding.provider", "cohere"},
		{"zero batch", "sync.batch_size", "0"},
		{"zero rate", "sync.requests_per_second", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestSettingsService(nil)
			err := svc.Set(tt.key, tt.value)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)

			_, ok := store.Get(tt.key)
			assert.False(t, ok)
		})
	}
}

func TestSettingsService_Keys(t *testing.T) {
	svc, _ := newTestSettingsService(nil)
	keys := svc.Keys()

	assert.Len(t, keys, 11)
	assert.Equal(t, "search.or_soft_weight", keys[0])
	assert.Contains(t, keys, "supabase.url")
	assert.NotContains(t, keys, "supabase.service_key")
}
