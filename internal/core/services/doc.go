// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
//   - SearchService: boolean filtering plus BM25 and semantic ranking
//   - SyncService: archive import, embedding and remote publishing
//   - PaperService: read access to stored papers
//   - SettingsService: typed view over the config store
//
// Services are pure Go with no CGO dependencies.
package services
