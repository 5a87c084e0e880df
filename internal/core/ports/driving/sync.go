package driving

import (
	"context"

	"github.com/custodia-labs/assetsync/internal/core/domain"
)

// SyncOptions controls a sync run.
type SyncOptions struct {
	// Force re-downloads files already present in the cache.
	Force bool

	// Full ignores the baseline and processes every selected entry.
	Full bool
}

// SyncOrchestrator synchronises regions against their manifests.
type SyncOrchestrator interface {
	// Sync runs the pipeline for one region.
	// Only a manifest that cannot be loaded fails the run; item and group
	// failures are reported in the summary.
	Sync(ctx context.Context, region string, opts SyncOptions) (*domain.RunSummary, error)

	// SyncAll runs every configured region in name order.
	SyncAll(ctx context.Context, opts SyncOptions) ([]*domain.RunSummary, error)

	// Subscribe registers an observer for progress events. Returns an unsubscribe func.
	Subscribe(fn func(domain.ProgressEvent)) func()
}

// Plan describes what a sync would do without doing it.
type Plan struct {
	// Region is the planned region.
	Region string

	// Selected counts entries matching the region's patterns.
	Selected int

	// Changed lists entries that are new or have a new hash.
	Changed []domain.ContentDescriptor

	// Removed lists logical names in the baseline that left the manifest.
	Removed []string
}

// VerifyReport lists cache entries that no longer match their recorded digest.
type VerifyReport struct {
	// Region is the verified region.
	Region string

	// Checked counts verified entries.
	Checked int

	// Missing lists logical names whose cache file is gone.
	Missing []string

	// Mismatched lists logical names whose cache file changed.
	Mismatched []string
}

// Inspector answers questions about a region without syncing it.
type Inspector interface {
	// Plan computes the diff a sync would apply.
	Plan(ctx context.Context, region string, full bool) (*Plan, error)

	// Verify checks cached files against recorded digests.
	Verify(ctx context.Context, region string) (*VerifyReport, error)

	// Runs lists recent runs.
	Runs(ctx context.Context, region string, limit int) ([]domain.RunRecord, error)
}

// Watcher re-syncs a region whenever its manifest file changes.
type Watcher interface {
	// Watch blocks until ctx is cancelled. onRun receives the outcome of
	// every triggered sync.
	Watch(ctx context.Context, region string, onRun func(*domain.RunSummary, error)) error
}
