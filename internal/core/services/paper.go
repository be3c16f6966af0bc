package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/papersift/internal/core/domain"
	"github.com/custodia-labs/papersift/internal/core/ports/driven"
	"github.com/custodia-labs/papersift/internal/core/ports/driving"
)

// Ensure PaperService implements the interface.
var _ driving.PaperService = (*PaperService)(nil)

// PaperService provides read access to stored papers.
type PaperService struct {
	paperStore driven.PaperStore
}

// NewPaperService creates a new paper service.
func NewPaperService(paperStore driven.PaperStore) *PaperService {
	return &PaperService{paperStore: paperStore}
}

// List returns papers matching the filter.
func (s *PaperService) List(ctx context.Context, filter domain.PaperFilter) ([]domain.Paper, error) {
	if filter.Date != "" {
		if err := domain.ValidateDate(filter.Date); err != nil {
			return nil, err
		}
	}
	if filter.Limit < 0 {
		return nil, fmt.Errorf("%w: negative limit %d", domain.ErrInvalidInput, filter.Limit)
	}
	return s.paperStore.ListPapers(ctx, filter)
}

// Get retrieves a paper by ID.
func (s *PaperService) Get(ctx context.Context, id string) (*domain.Paper, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty paper id", domain.ErrInvalidInput)
	}
	return s.paperStore.GetPaper(ctx, id)
}
