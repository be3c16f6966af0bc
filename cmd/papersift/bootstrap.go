package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/papersift/internal/adapters/driven/ai"
	"github.com/custodia-labs/papersift/internal/adapters/driven/archive"
	"github.com/custodia-labs/papersift/internal/adapters/driven/config/file"
	"github.com/custodia-labs/papersift/internal/adapters/driven/lexical/bm25"
	"github.com/custodia-labs/papersift/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/papersift/internal/adapters/driven/supabase"
	"github.com/custodia-labs/papersift/internal/adapters/driving/cli"
	"github.com/custodia-labs/papersift/internal/core/domain"
	"github.com/custodia-labs/papersift/internal/core/ports/driven"
	"github.com/custodia-labs/papersift/internal/core/services"
	"github.com/custodia-labs/papersift/internal/logger"
)

// archiveRoot is the archive directory resolved by bootstrap.
var archiveRoot string

// bootstrap wires the driven adapters into the core services.
func bootstrap(ctx context.Context, paths cli.Paths) (*cli.Services, func(), error) {
	configDir, dataDir, err := resolveDirs(paths)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Config dir: %s", configDir)
	logger.Debug("Data dir: %s", dataDir)

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("loading settings: %w", err)
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening paper store: %w", err)
	}

	archiveRoot = resolveArchiveDir(settings.Sync.ArchiveDir, dataDir)
	source, err := archive.NewSource(archiveRoot)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("opening archive: %w", err)
	}
	logger.Debug("Archive dir: %s", archiveRoot)

	embedding, err := ai.CreateAndValidateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		logger.Warn("Embeddings disabled: %v", err)
		embedding = nil
	}

	var publisher driven.PaperPublisher
	if settings.Supabase.IsConfigured() {
		p, err := supabase.NewPublisher(supabase.Config{
			URL:               settings.Supabase.URL,
			ServiceKey:        settings.Supabase.ServiceKey,
			Table:             settings.Supabase.PapersTable,
			BatchSize:         settings.Sync.BatchSize,
			RequestsPerSecond: settings.Sync.RequestsPerSecond,
		})
		if err != nil {
			logger.Warn("Publishing disabled: %v", err)
		} else {
			publisher = p
			logger.Debug("Publishing to %s", p.Target())
		}
	}

	syncService := services.NewSyncService(source, store, embedding, publisher)
	syncService.SetEmbeddingFactory(embeddingFactory(settings.Embedding))

	svc := &cli.Services{
		Search:   services.NewSearchService(store, bm25.NewScorer(), embedding, settings.Search),
		Sync:     syncService,
		Paper:    services.NewPaperService(store),
		Settings: settingsService,
	}

	cleanup := func() {
		if embedding != nil {
			embedding.Close()
		}
		source.Close()
		if err := store.Close(); err != nil {
			logger.Warn("Closing paper store: %v", err)
		}
	}

	return svc, cleanup, nil
}

// embeddingFactory builds services for models other than the configured one,
// with the rest of the embedding settings unchanged.
func embeddingFactory(base domain.EmbeddingSettings) driven.EmbeddingFactory {
	return func(ctx context.Context, model string) (driven.EmbeddingService, error) {
		settings := base
		settings.Model = model
		return ai.CreateAndValidateEmbeddingService(ctx, &settings)
	}
}

// resolveDirs applies the ~/.papersift defaults to empty paths.
func resolveDirs(paths cli.Paths) (configDir, dataDir string, err error) {
	configDir, dataDir = paths.ConfigDir, paths.DataDir
	if configDir != "" && dataDir != "" {
		return configDir, dataDir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("getting home directory: %w", err)
	}
	if configDir == "" {
		configDir = filepath.Join(home, file.DefaultDirName)
	}
	if dataDir == "" {
		dataDir = filepath.Join(home, file.DefaultDirName, "data")
	}
	return configDir, dataDir, nil
}

// resolveArchiveDir interprets a relative archive dir against the data dir.
func resolveArchiveDir(dir, dataDir string) string {
	if dir == "" {
		dir = domain.DefaultAppSettings().Sync.ArchiveDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(dataDir, dir)
}
