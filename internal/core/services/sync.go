package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
	"github.com/custodia-labs/assetsync/internal/core/ports/driving"
	"github.com/custodia-labs/assetsync/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// SyncOrchestrator runs the manifest → fetch → extract pipeline per region.
type SyncOrchestrator struct {
	settings   domain.Settings
	baselines  driven.BaselineStore
	runs       driven.RunStore
	downloader driven.Downloader
	fetcher    *FetchOrchestrator
	extractor  *ExtractionCoordinator

	now   func() time.Time
	newID func() string

	mu        sync.RWMutex
	observers map[int]func(domain.ProgressEvent)
	nextObs   int
}

// NewSyncOrchestrator creates a sync orchestrator.
// runs is optional; when nil, run summaries are returned but not persisted.
func NewSyncOrchestrator(
	settings domain.Settings,
	baselines driven.BaselineStore,
	runs driven.RunStore,
	downloader driven.Downloader,
	fetcher *FetchOrchestrator,
	extractor *ExtractionCoordinator,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		settings:   settings,
		baselines:  baselines,
		runs:       runs,
		downloader: downloader,
		fetcher:    fetcher,
		extractor:  extractor,
		now:        time.Now,
		newID:      uuid.NewString,
		observers:  make(map[int]func(domain.ProgressEvent)),
	}
}

// Subscribe registers an observer for progress events.
func (o *SyncOrchestrator) Subscribe(fn func(domain.ProgressEvent)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.nextObs
	o.nextObs++
	o.observers[id] = fn
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.observers, id)
	}
}

func (o *SyncOrchestrator) publish(ev domain.ProgressEvent) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, fn := range o.observers {
		fn(ev)
	}
}

// Sync runs the pipeline for one region.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (o *SyncOrchestrator) Sync(ctx context.Context, region string, opts driving.SyncOptions) (*domain.RunSummary, error) {
	scope := logger.Scope("region " + region)
	summary := &domain.RunSummary{
		ID:        o.newID(),
		Region:    region,
		StartedAt: o.now(),
	}

	// 1. Resolve region configuration
	rs, err := o.settings.Region(region)
	if err != nil {
		return nil, err
	}
	store, err := regionManifestStore(o.settings, rs)
	if err != nil {
		return nil, err
	}
	selections, err := rs.Selections()
	if err != nil {
		return nil, err
	}

	// 2. Load the manifest; without it nothing else can run
	logger.Section("Manifest " + region)
	o.refreshManifest(ctx, rs, scope)
	current, err := store.Load(rs.Manifest)
	if err != nil {
		return nil, fmt.Errorf("load manifest for %s: %w", region, err)
	}

	// 3. Load the baseline for incremental sync
	var baseline *domain.Manifest
	if !opts.Full {
		baseline, err = o.baselines.Load(ctx, region)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("load baseline for %s: %w", region, err)
		}
	}

	// 4. Plan the batch
	targets := planTargets(store, current, baseline, selections, o.settings.CacheDir, region, o.settings.CompleteGroups)
	scope.Info("%d of %d manifest entries selected", len(targets), current.Len())
	o.publish(domain.ProgressEvent{Region: region, Stage: domain.StagePlan, Total: len(targets)})

	// 5. Stage 1: fetch
	logger.Section("Fetch " + region)
	report := o.fetcher.Fetch(ctx, targets, FetchOptions{
		Region: region,
		Force:  opts.Force,
		Progress: func(done, total int, item string) {
			o.publish(domain.ProgressEvent{Region: region, Stage: domain.StageFetch, Done: done, Total: total, Item: item})
		},
	})
	summary.Fetches = report.Results

	// 6. Stage 2: decode and reconstruct, only after every fetch finished
	logger.Section("Extract " + region)
	groups := report.GroupList()
	summary.Groups = o.extractor.Extract(ctx, groups, func(done, total int, item string) {
		o.publish(domain.ProgressEvent{Region: region, Stage: domain.StageExtract, Done: done, Total: total, Item: item})
	})

	// 7. Advance the baseline past what was applied
	if err := o.advanceBaseline(ctx, store, current, baseline, targets, summary); err != nil {
		scope.Warn("update baseline: %v", err)
	}

	summary.FinishedAt = o.now()
	if o.runs != nil {
		if err := o.runs.Save(ctx, summary.Record()); err != nil {
			scope.Warn("save run: %v", err)
		}
	}
	o.publish(domain.ProgressEvent{Region: region, Stage: domain.StageDone, Done: len(summary.Groups), Total: len(summary.Groups)})

	scope.Info("sync complete: %d fetched, %d failed, %d artifacts",
		summary.FetchCount(domain.FetchStatusFetched), summary.FetchCount(domain.FetchStatusFailed), summary.ArtifactCount())
	return summary, nil
}

// SyncAll runs every configured region.
func (o *SyncOrchestrator) SyncAll(ctx context.Context, opts driving.SyncOptions) ([]*domain.RunSummary, error) {
	var summaries []*domain.RunSummary
	var errs []error
	for _, region := range o.settings.RegionNames() {
		s, err := o.Sync(ctx, region, opts)
		if err != nil {
			errs = append(errs, fmt.Errorf("sync %s: %w", region, err))
			continue
		}
		summaries = append(summaries, s)
	}

	if len(errs) > 0 {
		return summaries, errors.Join(errs...)
	}
	return summaries, nil
}

// refreshManifest downloads the published manifest when the region has a URL.
// A failed download falls back to the local copy.
func (o *SyncOrchestrator) refreshManifest(ctx context.Context, rs domain.RegionSettings, scope logger.Scope) {
	if rs.ManifestURL == "" {
		return
	}
	if _, err := o.downloader.Download(ctx, rs.ManifestURL, rs.Manifest); err != nil {
		scope.Warn("download manifest: %v; using local copy", err)
	}
}

// advanceBaseline records the entries that made it through both stages, so the
// next incremental sync only retries what failed.
func (o *SyncOrchestrator) advanceBaseline(
	ctx context.Context,
	store *ManifestStore,
	current, baseline *domain.Manifest,
	targets []domain.FetchTarget,
	summary *domain.RunSummary,
) error {
	failedGroups := make(map[string]bool)
	for _, g := range summary.Groups {
		if g.Status == domain.GroupStatusDecodeFailed {
			failedGroups[g.Key] = true
		}
	}

	var applied []domain.ContentDescriptor
	for i, t := range targets {
		res := summary.Fetches[i]
		if res.Status == domain.FetchStatusFailed {
			continue
		}
		if !t.Descriptor.Raw && failedGroups[t.Group] {
			continue
		}
		applied = append(applied, t.Descriptor)
	}

	if len(applied) > 0 {
		if err := o.baselines.Apply(ctx, summary.Region, applied); err != nil {
			return err
		}
	}
	if removed := store.Removed(current, baseline); len(removed) > 0 {
		return o.baselines.Remove(ctx, summary.Region, removed)
	}
	return nil
}

// planTargets selects the entries to process and derives their fetch targets.
//
// Each entry is claimed by the first selection (in pattern order) that matches it.
// Without a baseline every selected entry is planned; otherwise only the
// filter-then-diff result. With completeGroups, a group with any changed member
// is planned whole so that its shared index sees every member.
func planTargets(
	store *ManifestStore,
	current, baseline *domain.Manifest,
	selections []domain.Selection,
	cacheDir, region string,
	completeGroups bool,
) []domain.FetchTarget {
	claimed := make(map[string]bool)
	var all []domain.FetchTarget
	for _, sel := range selections {
		for _, d := range store.FilterByPattern(current, sel.Pattern) {
			if claimed[d.LogicalName] {
				continue
			}
			claimed[d.LogicalName] = true
			all = append(all, NewFetchTarget(cacheDir, region, d, sel.DestinationFor(d)))
		}
	}
	if baseline == nil {
		return all
	}

	changed := make(map[string]bool)
	for _, d := range store.Diff(current, baseline) {
		changed[d.LogicalName] = true
	}
	dirtyGroups := make(map[string]bool)
	for _, t := range all {
		if changed[t.Descriptor.LogicalName] && !t.Descriptor.Raw {
			dirtyGroups[t.Group] = true
		}
	}

	var out []domain.FetchTarget
	for _, t := range all {
		include := changed[t.Descriptor.LogicalName]
		if !include && completeGroups && !t.Descriptor.Raw {
			include = dirtyGroups[t.Group]
		}
		if include {
			out = append(out, t)
		}
	}
	return out
}

// regionManifestStore builds the manifest store for a region from the global
// and region level settings.
func regionManifestStore(settings domain.Settings, rs domain.RegionSettings) (*ManifestStore, error) {
	tmpl := rs.URLTemplate
	if tmpl == "" {
		tmpl = settings.URLTemplate
	}

	var raw []*regexp.Regexp
	for _, p := range append(append([]string{}, settings.RawPatterns...), rs.RawPatterns...) {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: raw pattern %q: %v", domain.ErrInvalidInput, p, err)
		}
		raw = append(raw, re)
	}

	return NewManifestStore(ManifestOptions{
		Region:      rs.Name,
		URLTemplate: tmpl,
		RawPatterns: raw,
	}), nil
}
