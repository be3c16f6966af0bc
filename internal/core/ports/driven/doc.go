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
//   - PaperStore: Local paper persistence (SQLite)
//   - LexicalScorer: BM25 scoring of papers against terms
//   - PaperSource: Reads raw records from the daily archive
//   - ConfigStore: Application configuration (TOML)
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, semantic
//     re-ranking and embedding sync are disabled.
//   - PaperPublisher: Remote paper store (Supabase). Without it, sync keeps
//     papers locally only.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
