package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/papersift/internal/core/domain"
)

// defaultLimit is used when the caller does not set a limit.
const defaultLimit = 10

const searchDescription = `Filter synced arXiv papers with a boolean query and rank the matches with BM25.
Supports AND, OR, NOT (or &&, ||, !), parentheses, "quoted phrases" and author:"Name".
Adjacent terms are combined with AND.`

// SearchInput is the input schema for the search_papers tool.
type SearchInput struct {
	Query    string `json:"query" jsonschema:"boolean query, e.g. (graph OR diffusion) AND NOT survey"`
	Date     string `json:"date,omitempty" jsonschema:"archive day YYYYMMDD (default all days)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	Semantic bool   `json:"semantic,omitempty" jsonschema:"blend embedding similarity into the ranking"`
}

// SearchOutput is the output schema for the search_papers tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single ranked paper.
type SearchResultOutput struct {
	PaperID    string   `json:"paper_id"`
	Title      string   `json:"title"`
	Authors    []string `json:"authors,omitempty"`
	Date       string   `json:"date"`
	Link       string   `json:"link,omitempty"`
	Score      float64  `json:"score"`
	Highlights []string `json:"highlights,omitempty"`
}

// ExplainInput is the input schema for the explain_query tool.
type ExplainInput struct {
	Query string `json:"query" jsonschema:"the query to explain"`
}

// ExplainOutput is the output schema for the explain_query tool.
type ExplainOutput struct {
	Mode          string         `json:"mode"`
	Tokens        []string       `json:"tokens"`
	Tree          string         `json:"tree,omitempty"`
	ParseError    string         `json:"parse_error,omitempty"`
	Branches      []BranchOutput `json:"branches,omitempty"`
	PositiveTerms []string       `json:"positive_terms"`
	EmbeddingText string         `json:"embedding_text"`
}

// BranchOutput describes one OR alternative.
type BranchOutput struct {
	Expr  string   `json:"expr"`
	Terms []string `json:"terms"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_papers",
		Description: searchDescription,
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "explain_query",
		Description: "Show how a boolean query is tokenized, parsed and scored",
	}, s.handleExplain)
}

// handleSearch handles the search_papers tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	opts := domain.SearchOptions{
		Date:     strings.TrimSpace(input.Date),
		Limit:    limit,
		Semantic: input.Semantic,
	}
	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		p := &results[i].Paper
		output.Results[i] = SearchResultOutput{
			PaperID:    p.ID,
			Title:      p.Title,
			Authors:    p.Authors,
			Date:       p.Date,
			Link:       p.Link,
			Score:      results[i].Score,
			Highlights: results[i].Highlights,
		}
	}

	return nil, output, nil
}

// handleExplain handles the explain_query tool invocation.
func (s *Server) handleExplain(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ExplainInput,
) (*mcp.CallToolResult, ExplainOutput, error) {
	exp := s.ports.Search.Explain(input.Query)

	output := ExplainOutput{
		Mode:          string(exp.Mode),
		Tokens:        nonNil(exp.Tokens),
		Tree:          exp.Tree,
		ParseError:    exp.ParseError,
		PositiveTerms: nonNil(exp.PositiveTerms),
		EmbeddingText: exp.EmbeddingText,
	}
	for _, b := range exp.Branches {
		output.Branches = append(output.Branches, BranchOutput{Expr: b.Expr, Terms: nonNil(b.Terms)})
	}

	return nil, output, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
