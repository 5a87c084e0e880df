// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/assetsync/internal/core/domain"
)

// ProgressUpdated carries a pipeline progress event into the model.
type ProgressUpdated struct {
	Event domain.ProgressEvent
}

// RegionFinished is sent when one region's run completes.
type RegionFinished struct {
	Summary *domain.RunSummary
	Err     error
}

// SyncFinished is sent when every requested region has been processed.
type SyncFinished struct {
	Summaries []*domain.RunSummary
	Err       error
}
