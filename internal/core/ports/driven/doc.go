// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - AssetDecoder: Turns raw bundle files into decoded objects
//   - Downloader: Transfers content from a URL to a local file
//   - ArtifactWriter: Persists reconstructed artifacts and raw copies
//   - Cache: Answers presence and digest questions about cached files
//   - BaselineStore: Last successfully applied manifest per region
//   - SettingsStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunStore: Run history. Without it, summaries are only returned.
//   - CacheIndexStore: Cache digests. Without it, verification is unavailable.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or reconstructor package
package driven
