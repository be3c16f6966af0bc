package mcp

import (
	"context"

	"github.com/custodia-labs/papersift/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results     []domain.SearchResult
	explanation domain.QueryExplanation
	err         error

	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.results, m.err
}

func (m *mockSearchService) Explain(query string) domain.QueryExplanation {
	m.lastQuery = query
	exp := m.explanation
	exp.Raw = query
	return exp
}

// mockPaperService is a mock implementation of driving.PaperService.
type mockPaperService struct {
	papers []domain.Paper
	paper  *domain.Paper
	err    error

	lastFilter domain.PaperFilter
	lastID     string
}

func (m *mockPaperService) List(_ context.Context, filter domain.PaperFilter) ([]domain.Paper, error) {
	m.lastFilter = filter
	return m.papers, m.err
}

func (m *mockPaperService) Get(_ context.Context, id string) (*domain.Paper, error) {
	m.lastID = id
	return m.paper, m.err
}
