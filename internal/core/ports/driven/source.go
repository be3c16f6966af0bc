package driven

import (
	"context"

	"github.com/custodia-labs/papersift/internal/core/domain"
)

// PaperSource reads the raw records fetched for one archive day.
type PaperSource interface {
	// Load returns the raw records for date (YYYYMMDD). A missing or
	// unreadable archive yields an empty slice, not an error; errors are
	// reserved for I/O failures on files that exist.
	Load(ctx context.Context, date string) ([]domain.RawPaper, error)

	// Location returns where records for date are read from.
	Location(date string) string
}
