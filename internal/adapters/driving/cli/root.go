// Package cli provides the command-line interface for assetsync.
// It implements a driving adapter following hexagonal architecture principles.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driving"
	"github.com/custodia-labs/assetsync/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	configPath string
	verbose    bool
)

// Driving ports used by the commands. They are set by SetServices or by the
// Loader before a command runs.
var (
	syncOrchestrator driving.SyncOrchestrator
	inspector        driving.Inspector
	watcher          driving.Watcher
	currentSettings  *domain.Settings
	currentConfig    string
)

// Services aggregates the driving ports the commands use.
type Services struct {
	Sync       driving.SyncOrchestrator
	Inspector  driving.Inspector
	Watcher    driving.Watcher
	Settings   *domain.Settings
	ConfigPath string
}

// Loader builds services from a configuration file path. An empty path
// selects the default location. The returned closer releases resources
// once the command has finished.
type Loader func(configPath string) (*Services, io.Closer, error)

var (
	loader   Loader
	resource io.Closer
)

// annotationStandalone marks commands that run without services.
const annotationStandalone = "standalone"

var rootCmd = &cobra.Command{
	Use:   "assetsync",
	Short: "Mirror and reconstruct game asset bundles",
	Long: `assetsync mirrors the asset bundles listed in a region's manifest,
downloads only what changed since the last run and reconstructs the
objects inside them into images and documents.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ~/.assetsync/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output")
}

// SetServices installs the driving ports used by the commands.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	syncOrchestrator = s.Sync
	inspector = s.Inspector
	watcher = s.Watcher
	currentSettings = s.Settings
	currentConfig = s.ConfigPath
}

// SetLoader installs the function that builds services on demand.
func SetLoader(l Loader) {
	loader = l
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and releases whatever the Loader opened.
func Execute() error {
	err := rootCmd.Execute()
	if cerr := teardown(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetOutput(cmd.ErrOrStderr())

	if loader == nil || standalone(cmd) {
		return nil
	}

	services, closer, err := loader(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	SetServices(services)
	resource = closer
	return nil
}

// standalone reports whether cmd runs without services. Cobra's generated
// help and completion commands count as standalone.
func standalone(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationStandalone] == "true" || c.Name() == "help" || c.Name() == "completion" {
			return true
		}
	}
	return false
}

func teardown() error {
	if resource == nil {
		return nil
	}
	err := resource.Close()
	resource = nil
	return err
}

var errNotConfigured = errors.New("service not configured")
