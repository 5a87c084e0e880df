package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/assetsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driving"
)

func TestInspectService_PlanWithoutBaseline(t *testing.T) {
	f := newSyncFixture(t, iconManifest+"333333|ui/frame.tex\n444444|audio/x.tex\n")
	svc := NewInspectService(f.settings, f.baselines, f.runs, nil, fsCache{})

	plan, err := svc.Plan(context.Background(), "en", false)
	require.NoError(t, err)

	assert.Equal(t, "en", plan.Region)
	assert.Equal(t, 3, plan.Selected)
	assert.Len(t, plan.Changed, 3)
	assert.Empty(t, plan.Removed)
}

func TestInspectService_PlanAfterSync(t *testing.T) {
	f := newSyncFixture(t, iconManifest)
	ctx := context.Background()
	_, err := f.orch.Sync(ctx, "en", driving.SyncOptions{})
	require.NoError(t, err)

	f.writeManifest(t, "abc123|images/icon/a.tex\n555555|images/icon/c.tex\n")
	svc := NewInspectService(f.settings, f.baselines, f.runs, nil, fsCache{})

	plan, err := svc.Plan(ctx, "en", false)
	require.NoError(t, err)
	assert.Equal(t, 2, plan.Selected)
	require.Len(t, plan.Changed, 1)
	assert.Equal(t, "images/icon/c.tex", plan.Changed[0].LogicalName)
	assert.Equal(t, []string{"images/icon/b.tex"}, plan.Removed)

	full, err := svc.Plan(ctx, "en", true)
	require.NoError(t, err)
	assert.Len(t, full.Changed, 2)
	assert.Empty(t, full.Removed)
}

func TestInspectService_PlanUnknownRegion(t *testing.T) {
	f := newSyncFixture(t, iconManifest)
	svc := NewInspectService(f.settings, f.baselines, f.runs, nil, fsCache{})

	_, err := svc.Plan(context.Background(), "jp", false)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInspectService_Verify(t *testing.T) {
	f := newSyncFixture(t, iconManifest)
	index := memory.NewCacheIndexStore()
	fetcher := NewFetchOrchestrator(f.dl, fsCache{}, f.writer, index, 2)
	ctx := context.Background()
	report := fetcher.Fetch(ctx, iconTargets(t, f.settings.CacheDir), FetchOptions{Region: "en"})
	require.Len(t, report.Results, 2)

	svc := NewInspectService(f.settings, f.baselines, f.runs, index, fsCache{})
	clean, err := svc.Verify(ctx, "en")
	require.NoError(t, err)
	assert.Equal(t, 2, clean.Checked)
	assert.Empty(t, clean.Missing)
	assert.Empty(t, clean.Mismatched)

	entries, err := index.List(ctx, "en")
	require.NoError(t, err)
	require.NoError(t, os.Remove(entries[0].LocalPath))
	require.NoError(t, os.WriteFile(entries[1].LocalPath, []byte("tampered"), 0o600))

	dirty, err := svc.Verify(ctx, "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"images/icon/a.tex"}, dirty.Missing)
	assert.Equal(t, []string{"images/icon/b.tex"}, dirty.Mismatched)
}

func TestInspectService_VerifyWithoutIndex(t *testing.T) {
	svc := NewInspectService(domain.DefaultSettings(), memory.NewBaselineStore(), nil, nil, fsCache{})

	_, err := svc.Verify(context.Background(), "en")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInspectService_Runs(t *testing.T) {
	runs := memory.NewRunStore()
	ctx := context.Background()
	require.NoError(t, runs.Save(ctx, domain.RunRecord{ID: "r1", Region: "en", StartedAt: time.Now()}))
	svc := NewInspectService(domain.DefaultSettings(), memory.NewBaselineStore(), runs, nil, fsCache{})

	list, err := svc.Runs(ctx, "en", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "r1", list[0].ID)

	noRuns := NewInspectService(domain.DefaultSettings(), memory.NewBaselineStore(), nil, nil, fsCache{})
	_, err = noRuns.Runs(ctx, "en", 10)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
