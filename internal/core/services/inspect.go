package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
	"github.com/custodia-labs/assetsync/internal/core/ports/driving"
)

// Ensure InspectService implements the interface.
var _ driving.Inspector = (*InspectService)(nil)

// InspectService answers questions about a region without syncing it.
type InspectService struct {
	settings   domain.Settings
	baselines  driven.BaselineStore
	runs       driven.RunStore
	cacheIndex driven.CacheIndexStore
	cache      driven.Cache
}

// NewInspectService creates an inspect service.
// runs and cacheIndex are optional; the operations needing them report unavailability.
func NewInspectService(
	settings domain.Settings,
	baselines driven.BaselineStore,
	runs driven.RunStore,
	cacheIndex driven.CacheIndexStore,
	cache driven.Cache,
) *InspectService {
	return &InspectService{
		settings:   settings,
		baselines:  baselines,
		runs:       runs,
		cacheIndex: cacheIndex,
		cache:      cache,
	}
}

// Plan computes the entries an incremental (or full) sync would process.
func (s *InspectService) Plan(ctx context.Context, region string, full bool) (*driving.Plan, error) {
	rs, err := s.settings.Region(region)
	if err != nil {
		return nil, err
	}
	store, err := regionManifestStore(s.settings, rs)
	if err != nil {
		return nil, err
	}
	selections, err := rs.Selections()
	if err != nil {
		return nil, err
	}

	current, err := store.Load(rs.Manifest)
	if err != nil {
		return nil, fmt.Errorf("load manifest for %s: %w", region, err)
	}

	var baseline *domain.Manifest
	if !full {
		baseline, err = s.baselines.Load(ctx, region)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("load baseline for %s: %w", region, err)
		}
	}

	plan := &driving.Plan{Region: region}
	seen := make(map[string]bool)
	changed := make(map[string]bool)
	for _, sel := range selections {
		for _, d := range store.FilterByPattern(current, sel.Pattern) {
			if !seen[d.LogicalName] {
				seen[d.LogicalName] = true
				plan.Selected++
			}
		}
		for _, d := range store.DiffByPattern(current, baseline, sel.Pattern) {
			if changed[d.LogicalName] {
				continue
			}
			changed[d.LogicalName] = true
			plan.Changed = append(plan.Changed, d)
		}
	}
	plan.Removed = store.Removed(current, baseline)
	return plan, nil
}

// Verify compares cached files with the digests recorded when they were fetched.
func (s *InspectService) Verify(ctx context.Context, region string) (*driving.VerifyReport, error) {
	if s.cacheIndex == nil {
		return nil, fmt.Errorf("cache index: %w", domain.ErrNotFound)
	}
	entries, err := s.cacheIndex.List(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}

	report := &driving.VerifyReport{Region: region}
	for _, e := range entries {
		report.Checked++
		if !s.cache.Exists(e.LocalPath) {
			report.Missing = append(report.Missing, e.LogicalName)
			continue
		}
		digest, err := s.cache.Digest(e.LocalPath)
		if err != nil || digest != e.Digest {
			report.Mismatched = append(report.Mismatched, e.LogicalName)
		}
	}
	return report, nil
}

// Runs lists recent runs.
func (s *InspectService) Runs(ctx context.Context, region string, limit int) ([]domain.RunRecord, error) {
	if s.runs == nil {
		return nil, fmt.Errorf("run history: %w", domain.ErrNotFound)
	}
	return s.runs.List(ctx, region, limit)
}
