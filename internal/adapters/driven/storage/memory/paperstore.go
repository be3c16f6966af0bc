package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/papersift/internal/core/domain"
	"github.com/custodia-labs/papersift/internal/core/ports/driven"
)

// Ensure PaperStore implements the interface.
var _ driven.PaperStore = (*PaperStore)(nil)

// PaperStore is an in-memory implementation of driven.PaperStore.
type PaperStore struct {
	mu     sync.RWMutex
	papers map[string]domain.Paper
	runs   []domain.SyncRun
}

// NewPaperStore creates a new in-memory paper store.
func NewPaperStore() *PaperStore {
	return &PaperStore{
		papers: make(map[string]domain.Paper),
	}
}

// SavePapers stores or updates papers by ID.
func (s *PaperStore) SavePapers(_ context.Context, papers []domain.Paper) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range papers {
		p := papers[i]
		p.Authors = append([]string(nil), p.Authors...)
		p.Categories = append([]string(nil), p.Categories...)
		p.Embedding = append([]float32(nil), p.Embedding...)
		s.papers[p.ID] = p
	}
	return nil
}

// GetPaper retrieves a paper by ID.
func (s *PaperStore) GetPaper(_ context.Context, id string) (*domain.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.papers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// ListPapers returns papers matching the filter, ordered by ID.
func (s *PaperStore) ListPapers(_ context.Context, filter domain.PaperFilter) ([]domain.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Paper, 0, len(s.papers))
	for id := range s.papers {
		p := s.papers[id]
		if filter.Date != "" && p.Date != filter.Date {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// DeletePaper removes a paper.
func (s *PaperStore) DeletePaper(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.papers, id)
	return nil
}

// SaveSyncRun records a finished sync run.
func (s *PaperStore) SaveSyncRun(_ context.Context, run domain.SyncRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return nil
}

// LastSyncRun returns the most recent run for a date.
func (s *PaperStore) LastSyncRun(_ context.Context, date string) (*domain.SyncRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.runs) - 1; i >= 0; i-- {
		if s.runs[i].Date == date {
			run := s.runs[i]
			return &run, nil
		}
	}
	return nil, domain.ErrNotFound
}
