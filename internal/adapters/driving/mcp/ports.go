package mcp

import (
	"github.com/custodia-labs/papersift/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search filters, ranks and explains queries.
	Search driving.SearchService

	// Paper reads stored papers. Optional; resources are unavailable without it.
	Paper driving.PaperService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
