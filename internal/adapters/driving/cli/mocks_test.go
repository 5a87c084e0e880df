package cli

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driving"
)

// mockSyncOrchestrator implements driving.SyncOrchestrator for testing.
type mockSyncOrchestrator struct {
	mu        sync.Mutex
	regions   []string
	opts      driving.SyncOptions
	syncErr   error
	summary   func(region string) *domain.RunSummary
	listeners []func(domain.ProgressEvent)
}

func (m *mockSyncOrchestrator) Sync(_ context.Context, region string, opts driving.SyncOptions) (*domain.RunSummary, error) {
	m.mu.Lock()
	m.regions = append(m.regions, region)
	m.opts = opts
	listeners := append([]func(domain.ProgressEvent){}, m.listeners...)
	m.mu.Unlock()

	if m.syncErr != nil {
		return nil, m.syncErr
	}
	for _, fn := range listeners {
		fn(domain.ProgressEvent{Region: region, Stage: domain.StagePlan, Total: 2})
		fn(domain.ProgressEvent{Region: region, Stage: domain.StageFetch, Done: 1, Total: 2, Item: "a"})
		fn(domain.ProgressEvent{Region: region, Stage: domain.StageFetch, Done: 2, Total: 2, Item: "b"})
		fn(domain.ProgressEvent{Region: region, Stage: domain.StageDone})
	}
	return m.summaryFor(region), nil
}

func (m *mockSyncOrchestrator) SyncAll(ctx context.Context, opts driving.SyncOptions) ([]*domain.RunSummary, error) {
	var out []*domain.RunSummary
	for _, r := range []string{"eu", "us"} {
		s, err := m.Sync(ctx, r, opts)
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *mockSyncOrchestrator) Subscribe(fn func(domain.ProgressEvent)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.listeners = nil
	}
}

func (m *mockSyncOrchestrator) summaryFor(region string) *domain.RunSummary {
	if m.summary != nil {
		return m.summary(region)
	}
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &domain.RunSummary{
		ID:         "run-" + region,
		Region:     region,
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Fetches: []domain.FetchResult{
			{LogicalName: "ui/a", Status: domain.FetchStatusFetched, Bytes: 1000},
			{LogicalName: "ui/b", Status: domain.FetchStatusSkippedPresent},
		},
		Groups: []domain.GroupResult{{Key: "ui", Destination: "ui", Artifacts: 3}},
	}
}

// mockInspector implements driving.Inspector for testing.
type mockInspector struct {
	plan       *driving.Plan
	report     *driving.VerifyReport
	records    []domain.RunRecord
	err        error
	lastFull   bool
	lastLimit  int
	lastRegion string
}

func (m *mockInspector) Plan(_ context.Context, region string, full bool) (*driving.Plan, error) {
	m.lastRegion = region
	m.lastFull = full
	return m.plan, m.err
}

func (m *mockInspector) Verify(_ context.Context, region string) (*driving.VerifyReport, error) {
	m.lastRegion = region
	return m.report, m.err
}

func (m *mockInspector) Runs(_ context.Context, region string, limit int) ([]domain.RunRecord, error) {
	m.lastRegion = region
	m.lastLimit = limit
	return m.records, m.err
}

// mockWatcher implements driving.Watcher for testing.
type mockWatcher struct {
	runs []*domain.RunSummary
	errs []error
	err  error
}

func (m *mockWatcher) Watch(_ context.Context, _ string, onRun func(*domain.RunSummary, error)) error {
	for _, s := range m.runs {
		onRun(s, nil)
	}
	for _, e := range m.errs {
		onRun(nil, e)
	}
	return m.err
}

// installServices swaps the package level services and restores them on cleanup.
func installServices(t *testing.T, s *Services) {
	t.Helper()
	oldSync, oldInspector, oldWatcher := syncOrchestrator, inspector, watcher
	oldSettings, oldConfig, oldLoader := currentSettings, currentConfig, loader

	syncOrchestrator, inspector, watcher = nil, nil, nil
	currentSettings, currentConfig, loader = nil, "", nil
	SetServices(s)

	t.Cleanup(func() {
		syncOrchestrator, inspector, watcher = oldSync, oldInspector, oldWatcher
		currentSettings, currentConfig, loader = oldSettings, oldConfig, oldLoader
	})
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags()
	})

	err := Execute()
	return out.String(), errOut.String(), err
}

func resetFlags() {
	configPath, verbose = "", false
	syncForce, syncFull, syncTUI = false, false, false
	diffFull = false
	runsLimit = 10
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var _ io.Closer = closerFunc(nil)
