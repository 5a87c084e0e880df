package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var diffFull bool

var diffCmd = &cobra.Command{
	Use:   "diff <region>",
	Short: "Show what the next sync would download",
	Long: `Compares the region's manifest with the baseline recorded by the last
successful run and lists new, changed and removed entries without downloading.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().BoolVar(&diffFull, "full", false, "ignore the baseline")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	if inspector == nil {
		return fmt.Errorf("diff: %w", errNotConfigured)
	}

	plan, err := inspector.Plan(cmd.Context(), args[0], diffFull)
	if err != nil {
		return fmt.Errorf("failed to plan region %s: %w", args[0], err)
	}

	st := outputStyles
	cmd.Printf("%s %s\n", st.Title.Render("Region"), st.Subtitle.Render(plan.Region))
	cmd.Printf("%d selected, %d changed, %d removed\n", plan.Selected, len(plan.Changed), len(plan.Removed))

	var total int64
	for _, d := range plan.Changed {
		size := "?"
		if d.Size > 0 {
			size = humanize.Bytes(uint64(d.Size))
			total += d.Size
		}
		marker := "+"
		if d.Raw {
			marker = "="
		}
		cmd.Printf("  %s %s %s\n", st.Success.Render(marker), d.LogicalName, st.Muted.Render(size))
	}
	for _, name := range plan.Removed {
		cmd.Printf("  %s %s\n", st.Error.Render("-"), name)
	}
	if total > 0 {
		cmd.Printf("Download size: %s\n", humanize.Bytes(uint64(total)))
	}
	return nil
}
