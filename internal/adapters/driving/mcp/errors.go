// Package mcp provides an MCP (Model Context Protocol) server adapter for papersift.
// It lets AI assistants filter and rank synced papers with boolean queries.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
