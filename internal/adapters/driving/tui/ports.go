// Package tui provides the terminal progress view for assetsync.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/assetsync/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
type Ports struct {
	// Sync orchestrates region synchronisation and publishes progress.
	Sync driving.SyncOrchestrator
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(sync driving.SyncOrchestrator) *Ports {
	return &Ports{Sync: sync}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Sync == nil {
		return ErrMissingSyncOrchestrator
	}
	return nil
}
