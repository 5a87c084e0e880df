package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/assetsync/internal/adapters/driving/tui"
	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driving"
	"github.com/custodia-labs/assetsync/internal/logger"
)

var (
	syncForce bool
	syncFull  bool
	syncTUI   bool
)

var syncCmd = &cobra.Command{
	Use:   "sync [region...]",
	Short: "Synchronise regions against their manifests",
	Long: `Downloads the bundles that changed since the last successful run and
reconstructs the objects inside them. If regions are given only those are
synchronised. Otherwise, all configured regions are synchronised in name order.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVarP(&syncForce, "force", "f", false, "re-download files already in the cache")
	syncCmd.Flags().BoolVar(&syncFull, "full", false, "ignore the baseline and process every selected entry")
	syncCmd.Flags().BoolVar(&syncTUI, "tui", false, "show an interactive progress view")
	rootCmd.AddCommand(syncCmd)
}

// errSyncIncomplete is returned when a run finished with failed items.
var errSyncIncomplete = errors.New("sync finished with failures")

func runSync(cmd *cobra.Command, args []string) error {
	if syncOrchestrator == nil {
		return fmt.Errorf("sync: %w", errNotConfigured)
	}

	opts := driving.SyncOptions{Force: syncForce, Full: syncFull}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var summaries []*domain.RunSummary
	var err error
	if syncTUI && tui.IsTerminal(os.Stdout) {
		summaries, err = syncInteractive(ctx, args, opts)
	} else {
		if syncTUI {
			logger.Warn("stdout is not a terminal, falling back to plain output")
		}
		summaries, err = syncPlain(ctx, cmd, args, opts)
	}

	for _, s := range summaries {
		printSummary(cmd.OutOrStdout(), s)
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	if n := failureCount(summaries); n > 0 {
		return fmt.Errorf("%w: %d item(s)", errSyncIncomplete, n)
	}
	return nil
}

func syncInteractive(ctx context.Context, regions []string, opts driving.SyncOptions) ([]*domain.RunSummary, error) {
	app, err := tui.NewApp(tui.NewPorts(syncOrchestrator), regions, opts)
	if err != nil {
		return nil, err
	}
	app.WithContext(ctx)
	return app.Run()
}

func syncPlain(
	ctx context.Context,
	cmd *cobra.Command,
	regions []string,
	opts driving.SyncOptions,
) ([]*domain.RunSummary, error) {
	unsubscribe := syncOrchestrator.Subscribe(stageReporter(cmd))
	defer unsubscribe()

	if len(regions) == 0 {
		cmd.Println("Synchronising all regions...")
		return syncOrchestrator.SyncAll(ctx, opts)
	}

	var summaries []*domain.RunSummary
	var errs []error
	for _, region := range regions {
		cmd.Printf("Synchronising region: %s...\n", region)
		summary, err := syncOrchestrator.Sync(ctx, region, opts)
		if err != nil {
			errs = append(errs, fmt.Errorf("region %s: %w", region, err))
		}
		if summary != nil {
			summaries = append(summaries, summary)
		}
	}
	return summaries, errors.Join(errs...)
}

// stageReporter prints one line per stage transition. Events arrive from
// worker goroutines.
func stageReporter(cmd *cobra.Command) func(domain.ProgressEvent) {
	var mu sync.Mutex
	var last domain.ProgressEvent
	return func(ev domain.ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()

		if ev.Region == last.Region && ev.Stage == last.Stage {
			if ev.Total > 0 && ev.Done == ev.Total {
				cmd.Printf("  %s: %d/%d\n", ev.Stage, ev.Done, ev.Total)
			}
			logger.Debug("%s %s %d/%d %s", ev.Region, ev.Stage, ev.Done, ev.Total, ev.Item)
			last = ev
			return
		}
		last = ev
		switch ev.Stage {
		case domain.StageDone:
			return
		case domain.StagePlan:
			cmd.Printf("  plan: %d target(s)\n", ev.Total)
			return
		}
		cmd.Printf("  %s: %d/%d\n", ev.Stage, ev.Done, ev.Total)
	}
}
