package driven

import "github.com/custodia-labs/assetsync/internal/core/domain"

// SettingsStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files) and defaults.
type SettingsStore interface {
	// Load reads configuration from storage, applying defaults for missing keys.
	Load() (domain.Settings, error)

	// Save persists configuration to storage.
	Save(settings domain.Settings) error

	// Path returns the configuration file path.
	Path() string
}
