package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePaper(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	raw := RawPaper{
		"id":               " 2401.00001 ",
		"title":            "  Diffusion Models ",
		"abstract":         "We study diffusion.",
		"authors":          []any{"Yoshua Bengio", "  ", nil, "Someone"},
		"primary_category": "cs.LG",
		"categories":       []any{"cs.LG", "stat.ML"},
		"published":        "2024-01-01T00:00:00Z",
		"link":             "https://arxiv.org/abs/2401.00001",
	}

	paper, ok := NormalizePaper(raw, "20240101", now)
	require.True(t, ok)

	assert.Equal(t, "2401.00001", paper.ID)
	assert.Equal(t, "20240101", paper.Date)
	assert.Equal(t, "Diffusion Models", paper.Title)
	assert.Equal(t, []string{"Yoshua Bengio", "Someone"}, paper.Authors)
	assert.Equal(t, []string{"cs.LG", "stat.ML"}, paper.Categories)
	assert.Equal(t, "cs.LG", paper.PrimaryCategory)
	assert.Equal(t, DefaultPaperSource, paper.Source)
	assert.Equal(t, now, paper.UpdatedAt)
	assert.False(t, paper.HasEmbedding())
}

func TestNormalizePaper_MissingID(t *testing.T) {
	_, ok := NormalizePaper(RawPaper{"title": "no id"}, "20240101", time.Now())
	assert.False(t, ok)

	_, ok = NormalizePaper(RawPaper{"id": "   "}, "20240101", time.Now())
	assert.False(t, ok)
}

func TestNormalizePaper_NonListFields(t *testing.T) {
	raw := RawPaper{
		"id":         2401.5,
		"authors":    "Yoshua Bengio",
		"categories": map[string]any{"a": 1},
		"source":     "arxiv",
	}

	paper, ok := NormalizePaper(raw, "", time.Now())
	require.True(t, ok)

	assert.Equal(t, "2401.5", paper.ID)
	assert.Empty(t, paper.Authors)
	assert.NotNil(t, paper.Authors)
	assert.Empty(t, paper.Categories)
	assert.Equal(t, "arxiv", paper.Source)
}

func TestBuildEmbeddingText(t *testing.T) {
	tests := []struct {
		name  string
		paper Paper
		want  string
	}{
		{"title and abstract", Paper{Title: "T", Abstract: "A"}, "passage: Title: T\n\nAbstract: A"},
		{"title only", Paper{Title: " T "}, "passage: Title: T"},
		{"abstract only", Paper{Abstract: "A"}, "passage: Abstract: A"},
		{"neither", Paper{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildEmbeddingText(tt.paper))
		})
	}
}

func TestValidateDate(t *testing.T) {
	assert.NoError(t, ValidateDate("20240229"))
	assert.ErrorIs(t, ValidateDate("20230229"), ErrInvalidDate)
	assert.ErrorIs(t, ValidateDate("2024-01-01"), ErrInvalidDate)
	assert.ErrorIs(t, ValidateDate(""), ErrInvalidDate)
	assert.NoError(t, ValidateDate(Today()))
}
