package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
	"github.com/custodia-labs/assetsync/internal/core/ports/driving"
	"github.com/custodia-labs/assetsync/internal/logger"
)

// DefaultWatchDebounce collapses bursts of manifest writes into one sync.
const DefaultWatchDebounce = 500 * time.Millisecond

// Watcher re-syncs a region whenever its manifest file changes.
type Watcher struct {
	settings domain.Settings
	notifier driven.ChangeNotifier
	syncOrch driving.SyncOrchestrator
	debounce time.Duration
}

// NewWatcher creates a watcher.
func NewWatcher(settings domain.Settings, notifier driven.ChangeNotifier, syncOrch driving.SyncOrchestrator) *Watcher {
	return &Watcher{
		settings: settings,
		notifier: notifier,
		syncOrch: syncOrch,
		debounce: DefaultWatchDebounce,
	}
}

// SetDebounce overrides the debounce interval.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Watch blocks until ctx is done, running an incremental sync after each
// settled manifest change. Each completed run is passed to onRun, which may be nil.
func (w *Watcher) Watch(ctx context.Context, region string, onRun func(*domain.RunSummary, error)) error {
	rs, err := w.settings.Region(region)
	if err != nil {
		return err
	}

	changes, err := w.notifier.Watch(ctx, rs.Manifest)
	if err != nil {
		return fmt.Errorf("watch manifest: %w", err)
	}
	logger.Info("watching %s for region %s", rs.Manifest, region)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case _, ok := <-changes:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("watch manifest: notifier closed")
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			summary, err := w.syncOrch.Sync(ctx, region, driving.SyncOptions{})
			if err != nil {
				logger.Error("sync %s: %v", region, err)
			}
			if onRun != nil {
				onRun(summary, err)
			}
		}
	}
}
