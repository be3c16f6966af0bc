// Package bm25 implements driven.LexicalScorer with Okapi BM25 over the
// title and abstract of the candidate papers. The corpus statistics are
// computed from the papers passed to each call, so scores are relative to
// the candidate set (typically one archive day).
package bm25

import (
	"context"
	"math"

	"github.com/custodia-labs/papersift/internal/core/domain"
	"github.com/custodia-labs/papersift/internal/core/ports/driven"
)

// Ensure Scorer implements the interface.
var _ driven.LexicalScorer = (*Scorer)(nil)

// Default BM25 parameters.
const (
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

// Scorer ranks papers with BM25.
type Scorer struct {
	k1 float64
	b  float64
}

// NewScorer creates a scorer with the default parameters.
func NewScorer() *Scorer {
	return &Scorer{k1: DefaultK1, b: DefaultB}
}

// NewScorerWithParams creates a scorer with custom k1 and b.
func NewScorerWithParams(k1, b float64) *Scorer {
	return &Scorer{k1: k1, b: b}
}

// Score returns one BM25 score per paper for the tokens of terms.
// Repeated query tokens count once per occurrence.
func (s *Scorer) Score(ctx context.Context, papers []domain.Paper, terms []string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scores := make([]float64, len(papers))
	var query []string
	for _, t := range terms {
		query = append(query, Tokenize(t)...)
	}
	if len(papers) == 0 || len(query) == 0 {
		return scores, nil
	}

	idx := buildIndex(papers)
	for _, tok := range query {
		df := idx.docFreq[tok]
		if df == 0 {
			continue
		}
		idf := idx.idf(df)
		for i, doc := range idx.docs {
			tf := float64(doc.freq[tok])
			if tf == 0 {
				continue
			}
			norm := 1 - s.b + s.b*float64(doc.length)/idx.avgLength
			scores[i] += idf * tf * (s.k1 + 1) / (tf + s.k1*norm)
		}
	}

	return scores, nil
}

// docStats holds term frequencies for one paper.
type docStats struct {
	freq   map[string]int
	length int
}

// index holds corpus statistics for one scoring call.
type index struct {
	docs      []docStats
	docFreq   map[string]int
	avgLength float64
}

func buildIndex(papers []domain.Paper) *index {
	idx := &index{
		docs:    make([]docStats, len(papers)),
		docFreq: make(map[string]int),
	}

	total := 0
	for i, p := range papers {
		tokens := Tokenize(p.Title + "\n" + p.Abstract)
		freq := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			freq[tok]++
		}
		for tok := range freq {
			idx.docFreq[tok]++
		}
		idx.docs[i] = docStats{freq: freq, length: len(tokens)}
		total += len(tokens)
	}

	idx.avgLength = float64(total) / float64(len(papers))
	if idx.avgLength == 0 {
		idx.avgLength = 1
	}
	return idx
}

// idf is the non-negative BM25 inverse document frequency.
func (idx *index) idf(df int) float64 {
	n := float64(len(idx.docs))
	return math.Log((n-float64(df)+0.5)/(float64(df)+0.5) + 1)
}
