package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs [region]",
	Short: "List recent sync runs",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 10, "maximum number of runs to list (0 for all)")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	if inspector == nil {
		return fmt.Errorf("runs: %w", errNotConfigured)
	}

	region := ""
	if len(args) > 0 {
		region = args[0]
	}

	records, err := inspector.Runs(cmd.Context(), region, runsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(records) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	st := outputStyles
	for _, r := range records {
		failed := r.Failed+r.DecodeFailed > 0
		cmd.Printf("%s %s %s  %d fetched, %d failed, %d artifacts, %s in %s  %s\n",
			st.Outcome(false, failed),
			st.Subtitle.Render(r.Region),
			st.Muted.Render(humanize.Time(r.StartedAt)),
			r.Fetched,
			r.Failed+r.DecodeFailed,
			r.Artifacts,
			humanize.Bytes(uint64(r.BytesFetched)),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
			st.Muted.Render(r.ID),
		)
	}
	return nil
}
