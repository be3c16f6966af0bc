package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the archive date format (YYYYMMDD).
const DateLayout = "20060102"

// DefaultPaperSource is recorded when a raw paper does not name its origin.
const DefaultPaperSource = "supabase"

// Paper is a normalised bibliographic record.
type Paper struct {
	// ID is the arXiv identifier.
	ID string

	// Date is the archive day the paper was synced from (YYYYMMDD).
	Date string

	// Title is the paper title.
	Title string

	// Abstract is the paper abstract.
	Abstract string

	// Authors lists author names in publication order.
	Authors []string

	// PrimaryCategory is the main arXiv category (e.g. cs.LG). May be empty.
	PrimaryCategory string

	// Categories lists all arXiv categories.
	Categories []string

	// Published is the publication timestamp as reported by arXiv. May be empty.
	Published string

	// Link is the abstract page URL. May be empty.
	Link string

	// Source names where the record came from.
	Source string

	// Embedding is the passage vector for semantic matching. Nil when the
	// paper was synced without embeddings.
	Embedding []float32

	// EmbeddingModel is the model that produced Embedding.
	EmbeddingModel string

	// EmbeddingDim is len(Embedding) at the time it was computed.
	EmbeddingDim int

	// EmbeddingUpdatedAt is when Embedding was computed.
	EmbeddingUpdatedAt time.Time

	// UpdatedAt is when the record was last normalised.
	UpdatedAt time.Time
}

// HasEmbedding reports whether the paper carries a vector.
func (p Paper) HasEmbedding() bool {
	return len(p.Embedding) > 0
}

// RawPaper is a record as read from the archive, before normalisation.
// Values are strings, float64, bool, nil, []any or map[string]any.
type RawPaper map[string]any

// PaperFilter selects papers from a store.
type PaperFilter struct {
	// Date restricts to one archive day. Empty means all days.
	Date string

	// Limit caps the number of papers returned. Zero means no limit.
	Limit int
}

// NormalizePaper converts a raw archive record into a Paper.
// It returns false for records without an id.
func NormalizePaper(raw RawPaper, date string, now time.Time) (Paper, bool) {
	id := normString(raw["id"])
	if id == "" {
		return Paper{}, false
	}

	source := normString(raw["source"])
	if source == "" {
		source = DefaultPaperSource
	}

	return Paper{
		ID:              id,
		Date:            date,
		Title:           normString(raw["title"]),
		Abstract:        normString(raw["abstract"]),
		Authors:         normStringList(raw["authors"]),
		PrimaryCategory: normString(raw["primary_category"]),
		Categories:      normStringList(raw["categories"]),
		Published:       normString(raw["published"]),
		Link:            normString(raw["link"]),
		Source:          source,
		UpdatedAt:       now.UTC(),
	}, true
}

// BuildEmbeddingText formats the passage used to embed a paper.
// It returns the empty string when the paper has neither title nor abstract.
func BuildEmbeddingText(p Paper) string {
	title := strings.TrimSpace(p.Title)
	abstract := strings.TrimSpace(p.Abstract)
	switch {
	case title != "" && abstract != "":
		return "passage: Title: " + title + "\n\nAbstract: " + abstract
	case title != "":
		return "passage: Title: " + title
	case abstract != "":
		return "passage: Abstract: " + abstract
	default:
		return ""
	}
}

// ValidateDate checks that date is a real YYYYMMDD day.
func ValidateDate(date string) error {
	if len(date) != len(DateLayout) {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}

// Today returns the current UTC day in archive format.
func Today() string {
	return time.Now().UTC().Format(DateLayout)
}

func normString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		if !s {
			return ""
		}
		return "true"
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

// normStringList keeps list values only; anything else becomes an empty list.
func normStringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		if ss, ok := v.([]string); ok {
			items = make([]any, len(ss))
			for i, s := range ss {
				items[i] = s
			}
		} else {
			return []string{}
		}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := normString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
