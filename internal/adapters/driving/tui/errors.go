package tui

import "errors"

// ErrMissingSyncOrchestrator is returned when the sync orchestrator is not provided.
var ErrMissingSyncOrchestrator = errors.New("tui: sync orchestrator is required")

// ErrInterrupted is returned when the user quits before the sync finished.
var ErrInterrupted = errors.New("tui: interrupted")
