package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if currentSettings == nil {
		return fmt.Errorf("config: %w", errNotConfigured)
	}
	s := currentSettings

	cmd.Println("Current Settings")
	cmd.Println("================")
	if currentConfig != "" {
		cmd.Printf("File: %s\n", currentConfig)
	}
	cmd.Println()

	cmd.Println("[Paths]")
	cmd.Printf("  Cache: %s\n", s.CacheDir)
	cmd.Printf("  Output: %s\n", s.OutputDir)
	cmd.Printf("  Data: %s\n", s.DataDir)
	cmd.Println()

	cmd.Println("[Pipeline]")
	cmd.Printf("  Workers: %d\n", s.WorkerCount())
	if s.RateLimit > 0 {
		cmd.Printf("  Rate limit: %g/s\n", s.RateLimit)
	} else {
		cmd.Println("  Rate limit: (none)")
	}
	cmd.Printf("  Complete groups: %t\n", s.CompleteGroups)
	cmd.Printf("  Documents: %s\n", s.Output.DocumentFormat.Description())
	cmd.Printf("  Images: %s\n", s.Output.ImageFormat)
	if len(s.RawPatterns) > 0 {
		cmd.Printf("  Raw patterns: %s\n", strings.Join(s.RawPatterns, ", "))
	}
	cmd.Println()

	cmd.Println("[Regions]")
	names := s.RegionNames()
	if len(names) == 0 {
		cmd.Println("  (none)")
	}
	for _, name := range names {
		r, _ := s.Region(name)
		cmd.Printf("  %s: %s (%d pattern(s))\n", name, r.Manifest, len(r.Patterns))
	}
	return nil
}
