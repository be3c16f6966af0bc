package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/papersift/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for papersift resources.
	uriScheme = "papersift://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Template for the papers of one archive day.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "days/{date}/papers",
		Name:        "day-papers",
		Description: "Papers synced for an archive day (YYYYMMDD)",
		MIMEType:    "application/json",
	}, s.handleDayPapersResource)

	// Template for a single paper.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "papers/{paperId}",
		Name:        "paper",
		Description: "Title, authors and abstract of a paper",
		MIMEType:    "text/plain",
	}, s.handlePaperResource)
}

// handleDayPapersResource returns the papers synced for a day.
func (s *Server) handleDayPapersResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Paper == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract date from URI: papersift://days/{date}/papers
	date := extractDate(req.Params.URI)
	if date == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	papers, err := s.ports.Paper.List(ctx, domain.PaperFilter{Date: date})
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}

	type paperInfo struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Category string `json:"primary_category,omitempty"`
		URI      string `json:"uri"`
	}

	infos := make([]paperInfo, len(papers))
	for i := range papers {
		infos[i] = paperInfo{
			ID:       papers[i].ID,
			Title:    papers[i].Title,
			Category: papers[i].PrimaryCategory,
			URI:      uriScheme + "papers/" + papers[i].ID,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling papers: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handlePaperResource returns a paper as plain text.
func (s *Server) handlePaperResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Paper == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract paperId from URI: papersift://papers/{paperId}
	id := extractPaperID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	paper, err := s.ports.Paper.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting paper: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     paperText(paper),
		}},
	}, nil
}

func paperText(p *domain.Paper) string {
	var b strings.Builder
	b.WriteString(p.Title)
	b.WriteString("\n")
	if len(p.Authors) > 0 {
		b.WriteString(strings.Join(p.Authors, ", "))
		b.WriteString("\n")
	}
	if p.Link != "" {
		b.WriteString(p.Link)
		b.WriteString("\n")
	}
	if p.Abstract != "" {
		b.WriteString("\n")
		b.WriteString(p.Abstract)
		b.WriteString("\n")
	}
	return b.String()
}

// extractDate extracts the date from a URI like papersift://days/{date}/papers.
func extractDate(uri string) string {
	const prefix = uriScheme + "days/"
	const suffix = "/papers"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}

// extractPaperID extracts the paper ID from a URI like papersift://papers/{paperId}.
func extractPaperID(uri string) string {
	const prefix = uriScheme + "papers/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
