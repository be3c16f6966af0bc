package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papersift/internal/core/domain"
)

func TestEmbeddingFactory_UsesRequestedModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	base := domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "nomic-embed-text",
		BaseURL:  srv.URL,
	}
	svc, err := embeddingFactory(base)(context.Background(), "mxbai-embed-large")
	require.NoError(t, err)
	require.NotNil(t, svc)
	defer svc.Close()

	assert.Equal(t, "mxbai-embed-large", svc.ModelName())
	assert.Equal(t, 1024, svc.Dimensions())
	assert.Equal(t, "nomic-embed-text", base.Model)
}

func TestEmbeddingFactory_NotConfigured(t *testing.T) {
	svc, err := embeddingFactory(domain.EmbeddingSettings{Provider: domain.AIProviderNone})(context.Background(), "bge-m3")
	require.NoError(t, err)
	assert.Nil(t, svc)
}

func TestResolveArchiveDir(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "archive")
	assert.Equal(t, abs, resolveArchiveDir(abs, "/data"))
	assert.Equal(t, filepath.Join("/data", "raw"), resolveArchiveDir("raw", "/data"))
	assert.Equal(t, filepath.Join("/data", domain.DefaultAppSettings().Sync.ArchiveDir), resolveArchiveDir("", "/data"))
}
