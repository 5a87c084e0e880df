package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/assetsync/internal/core/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch <region>",
	Short: "Re-sync a region whenever its manifest changes",
	Long: `Watches the region's local manifest file and runs an incremental sync
after each change. Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watcher == nil {
		return fmt.Errorf("watch: %w", errNotConfigured)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching region %s. Press Ctrl+C to stop.\n", args[0])
	err := watcher.Watch(ctx, args[0], func(s *domain.RunSummary, err error) {
		if err != nil {
			cmd.PrintErrf("sync failed: %v\n", err)
			return
		}
		printSummary(cmd.OutOrStdout(), s)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
