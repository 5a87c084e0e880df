package driven

import (
	"context"

	"github.com/custodia-labs/assetsync/internal/core/domain"
)

// BaselineStore persists the last successfully applied manifest entries per region.
// The baseline is what incremental syncs diff against.
type BaselineStore interface {
	// Load returns the region's baseline. Returns domain.ErrNotFound if none exists.
	Load(ctx context.Context, region string) (*domain.Manifest, error)

	// Apply upserts entries into the region's baseline.
	Apply(ctx context.Context, region string, entries []domain.ContentDescriptor) error

	// Remove deletes logical names from the region's baseline.
	Remove(ctx context.Context, region string, names []string) error

	// Reset deletes the region's baseline.
	Reset(ctx context.Context, region string) error
}

// RunStore persists run history.
type RunStore interface {
	// Save stores a run record.
	Save(ctx context.Context, run domain.RunRecord) error

	// List returns the most recent runs first. An empty region lists all regions.
	List(ctx context.Context, region string, limit int) ([]domain.RunRecord, error)
}

// CacheIndexStore records digests of cached content.
type CacheIndexStore interface {
	// Put stores or updates a cache entry keyed by region and logical name.
	Put(ctx context.Context, entry domain.CacheEntry) error

	// List returns a region's cache entries ordered by logical name.
	List(ctx context.Context, region string) ([]domain.CacheEntry, error)
}
