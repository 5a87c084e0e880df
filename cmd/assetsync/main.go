// Command assetsync mirrors game asset bundles and reconstructs their contents.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/custodia-labs/assetsync/internal/adapters/driven/cache"
	"github.com/custodia-labs/assetsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/assetsync/internal/adapters/driven/decoder/cborbundle"
	"github.com/custodia-labs/assetsync/internal/adapters/driven/output"
	"github.com/custodia-labs/assetsync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/assetsync/internal/adapters/driven/transport"
	"github.com/custodia-labs/assetsync/internal/adapters/driven/watch"
	"github.com/custodia-labs/assetsync/internal/adapters/driving/cli"
	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
	"github.com/custodia-labs/assetsync/internal/core/services"
	"github.com/custodia-labs/assetsync/internal/logger"
	"github.com/custodia-labs/assetsync/internal/reconstructors"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetLoader(load)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// load opens the configuration file and builds the services from it.
func load(configPath string) (*cli.Services, io.Closer, error) {
	settingsStore, err := file.NewSettingsStore(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := ensureConfig(settingsStore); err != nil {
		return nil, nil, err
	}
	return build(settingsStore)
}

// build wires the driven adapters into the core services.
func build(settingsStore driven.SettingsStore) (*cli.Services, io.Closer, error) {
	settings, err := settingsStore.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, nil, err
	}
	logger.Debug("loaded configuration from %s", settingsStore.Path())

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening state database: %w", err)
	}

	writer, err := output.NewWriter(settings.OutputDir, settings.Output)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	downloader := transport.NewDownloader(transport.Options{RateLimit: settings.RateLimit})
	localCache := cache.NewLocal()
	registry := reconstructors.NewRegistry(reconstructors.Options{Material: settings.Material})
	workers := settings.WorkerCount()

	fetcher := services.NewFetchOrchestrator(downloader, localCache, writer, store.CacheIndexStore(), workers)
	extractor := services.NewExtractionCoordinator(cborbundle.NewDecoder(), registry, writer, workers)
	syncOrch := services.NewSyncOrchestrator(
		settings,
		store.BaselineStore(),
		store.RunStore(),
		downloader,
		fetcher,
		extractor,
	)
	inspector := services.NewInspectService(
		settings,
		store.BaselineStore(),
		store.RunStore(),
		store.CacheIndexStore(),
		localCache,
	)
	watcher := services.NewWatcher(settings, watch.NewNotifier(), syncOrch)

	return &cli.Services{
		Sync:       syncOrch,
		Inspector:  inspector,
		Watcher:    watcher,
		Settings:   &settings,
		ConfigPath: settingsStore.Path(),
	}, store, nil
}

// ensureConfig writes a default configuration file on first run.
func ensureConfig(store driven.SettingsStore) error {
	_, err := os.Stat(store.Path())
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	settings, err := store.Load()
	if err != nil {
		return err
	}
	if err := store.Save(settings); err != nil {
		return fmt.Errorf("writing default configuration: %w", err)
	}
	logger.Info("created default configuration at %s", store.Path())
	return nil
}
