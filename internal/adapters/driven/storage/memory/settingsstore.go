package memory

import (
	"sync"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

// SettingsStore is an in-memory implementation of driven.SettingsStore for testing.
type SettingsStore struct {
	mu       sync.RWMutex
	settings domain.Settings
}

// NewSettingsStore creates a store holding the default settings.
func NewSettingsStore() *SettingsStore {
	return &SettingsStore{settings: domain.DefaultSettings()}
}

// Load returns the stored settings.
func (s *SettingsStore) Load() (domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

// Save replaces the stored settings.
func (s *SettingsStore) Save(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}

// Path returns the configuration file path.
func (s *SettingsStore) Path() string {
	return ":memory:"
}
