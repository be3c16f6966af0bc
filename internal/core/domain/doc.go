// Package domain defines the core business entities for papersift.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Paper: A normalised arXiv record with optional embedding
//   - RawPaper: An untyped record as found in the daily archive
//   - SearchOptions / SearchResult: Boolean search inputs and hits
//   - SyncRun: The outcome of one archive synchronisation
//   - AppSettings: Typed configuration
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
