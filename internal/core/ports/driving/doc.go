// Package driving defines the interfaces the CLI and TUI use to run and
// inspect syncs. These are the "driving" ports in hexagonal architecture
// terminology.
//
// Implementations live in internal/core/services.
package driving
