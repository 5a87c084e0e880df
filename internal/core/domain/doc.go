// Package domain defines the core entities for assetsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Manifest: A region's listing of logical names to content descriptors
//   - DecodedObject: An engine object yielded by an asset decoder
//   - PathIDIndex: The per-group object reference index
//   - Artifact: A reconstructed document or image awaiting persistence
//   - RunSummary: The outcome of one sync run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
