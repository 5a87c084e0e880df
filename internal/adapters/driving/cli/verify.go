package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <region>",
	Short: "Check cached files against their recorded digests",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

// errCacheCorrupt is returned when cached files are missing or modified.
var errCacheCorrupt = errors.New("cache verification failed")

func runVerify(cmd *cobra.Command, args []string) error {
	if inspector == nil {
		return fmt.Errorf("verify: %w", errNotConfigured)
	}

	report, err := inspector.Verify(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to verify region %s: %w", args[0], err)
	}

	st := outputStyles
	for _, name := range report.Missing {
		cmd.Printf("  %s %s\n", st.Error.Render("missing"), name)
	}
	for _, name := range report.Mismatched {
		cmd.Printf("  %s %s\n", st.Warning.Render("changed"), name)
	}

	bad := len(report.Missing) + len(report.Mismatched)
	cmd.Printf("Checked %d cached file(s) for region %s: %d ok\n", report.Checked, report.Region, report.Checked-bad)
	if bad > 0 {
		return fmt.Errorf("%w: %d missing, %d changed", errCacheCorrupt, len(report.Missing), len(report.Mismatched))
	}
	return nil
}
