package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/papersift/internal/boolquery"
	"github.com/custodia-labs/papersift/internal/core/domain"
	"github.com/custodia-labs/papersift/internal/core/ports/driven"
	"github.com/custodia-labs/papersift/internal/core/ports/driving"
	"github.com/custodia-labs/papersift/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// maxHighlightRunes caps the length of one highlight sentence.
const maxHighlightRunes = 200

// scoredPaper holds intermediate scores before ranking.
type scoredPaper struct {
	index    int
	lexical  float64
	semantic float64
	score    float64
	matched  bool
	branches []int
}

// SearchService filters papers with boolean queries and ranks the matches.
type SearchService struct {
	paperStore       driven.PaperStore
	lexical          driven.LexicalScorer
	embeddingService driven.EmbeddingService
	settings         domain.SearchSettings
}

// NewSearchService creates a new search service.
// The embeddingService parameter is optional (can be nil).
func NewSearchService(
	paperStore driven.PaperStore,
	lexical driven.LexicalScorer,
	embeddingService driven.EmbeddingService,
	settings domain.SearchSettings,
) *SearchService {
	return &SearchService{
		paperStore:       paperStore,
		lexical:          lexical,
		embeddingService: embeddingService,
		settings:         settings,
	}
}

// Explain describes how a query is tokenized, parsed and scored.
func (s *SearchService) Explain(query string) domain.QueryExplanation {
	return planQuery(strings.TrimSpace(query)).explain()
}

// Search filters candidate papers with the query and ranks the matches.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Boolean Search")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}
	if s.lexical == nil {
		return nil, domain.ErrLexicalUnavailable
	}
	if opts.Date != "" {
		if err := domain.ValidateDate(opts.Date); err != nil {
			return nil, err
		}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = s.settings.Limit
	}
	if limit <= 0 {
		limit = 20
	}
	orWeight := s.settings.ORSoftWeight
	if opts.ORSoftWeight != nil {
		orWeight = *opts.ORSoftWeight
	}
	logger.Debug("Limit: %d, Offset: %d, OR soft weight: %.2f", limit, opts.Offset, orWeight)

	papers, err := s.paperStore.ListPapers(ctx, domain.PaperFilter{Date: opts.Date})
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	logger.Debug("Candidates: %d papers", len(papers))
	if len(papers) == 0 {
		return []domain.SearchResult{}, nil
	}

	plan := planQuery(query)
	logger.Info("Query mode: %s", plan.mode.Description())
	if plan.parseErr != nil {
		logger.Warn("Boolean parse failed (%v), scoring raw query as a phrase", plan.parseErr)
	}

	var scored []scoredPaper
	if plan.mode == domain.QueryModeBoolean {
		scored, err = s.booleanScores(ctx, papers, plan, orWeight)
	} else {
		scored, err = s.phraseScores(ctx, papers, plan.raw)
	}
	if err != nil {
		return nil, err
	}

	if opts.Semantic {
		s.applySemantic(ctx, papers, scored, plan)
	}

	results := make([]domain.SearchResult, 0, len(scored))
	for _, sp := range scored {
		if !sp.matched && !opts.IncludeFiltered {
			continue
		}
		p := papers[sp.index]
		results = append(results, domain.SearchResult{
			Paper:         p,
			Score:         sp.score,
			LexicalScore:  sp.lexical,
			SemanticScore: sp.semantic,
			Matched:       sp.matched,
			Branches:      sp.branches,
			Highlights:    generateHighlights(p.Abstract, plan.terms),
		})
	}
	logger.Debug("Matched: %d of %d papers", len(results), len(papers))

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Paper.ID < results[j].Paper.ID
	})

	results = applyPagination(results, opts.Offset, limit)
	logger.Info("Final results: %d", len(results))
	return results, nil
}

// phraseScores scores every paper against the raw query as one phrase.
// Nothing is filtered.
func (s *SearchService) phraseScores(
	ctx context.Context, papers []domain.Paper, phrase string,
) ([]scoredPaper, error) {
	scores, err := s.lexical.Score(ctx, papers, []string{phrase})
	if err != nil {
		return nil, fmt.Errorf("lexical score: %w", err)
	}

	out := make([]scoredPaper, len(papers))
	for i := range papers {
		out[i] = scoredPaper{index: i, lexical: scores[i], score: scores[i], matched: true}
	}
	return out, nil
}

// booleanScores filters papers with the tree and scores each OR branch
// independently. A matching paper scores its best branch plus orWeight
// times the other branches it satisfies.
func (s *SearchService) booleanScores(
	ctx context.Context, papers []domain.Paper, plan queryPlan, orWeight float64,
) ([]scoredPaper, error) {
	branchScores, err := s.scoreBranches(ctx, papers, plan.branchTerms)
	if err != nil {
		return nil, err
	}

	out := make([]scoredPaper, len(papers))
	for i := range papers {
		doc := queryDocument(papers[i])
		sp := scoredPaper{index: i}

		if !boolquery.Evaluate(plan.tree, doc) {
			sp.score = domain.FilteredScore
			out[i] = sp
			continue
		}

		sp.matched = true
		best, sum := 0.0, 0.0
		for b, branch := range plan.branches {
			if !boolquery.Evaluate(branch, doc) {
				continue
			}
			sp.branches = append(sp.branches, b)
			score := branchScores[b][i]
			sum += score
			if score > best {
				best = score
			}
		}
		sp.lexical = best + orWeight*(sum-best)
		sp.score = sp.lexical
		out[i] = sp
	}
	return out, nil
}

// scoreBranches runs one lexical scoring pass per branch in parallel.
// Branches without positive terms score zero everywhere.
func (s *SearchService) scoreBranches(
	ctx context.Context, papers []domain.Paper, branchTerms [][]string,
) ([][]float64, error) {
	scores := make([][]float64, len(branchTerms))
	errs := make([]error, len(branchTerms))

	var wg sync.WaitGroup
	for b, terms := range branchTerms {
		if len(terms) == 0 {
			scores[b] = make([]float64, len(papers))
			continue
		}
		wg.Add(1)
		go func(b int, terms []string) {
			defer wg.Done()
			logger.Debug("Branch %d terms: %v", b, terms)
			scores[b], errs[b] = s.lexical.Score(ctx, papers, terms)
		}(b, terms)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("lexical score: %w", err)
	}
	return scores, nil
}

// applySemantic blends embedding similarity into the scores of matched
// papers. Any embedding failure degrades to lexical-only ranking.
func (s *SearchService) applySemantic(
	ctx context.Context, papers []domain.Paper, scored []scoredPaper, plan queryPlan,
) {
	if s.embeddingService == nil {
		logger.Warn("Semantic ranking unavailable: %v", domain.ErrEmbeddingUnavailable)
		return
	}

	text := boolquery.CleanForEmbedding(plan.raw)
	if text == "" {
		logger.Debug("Nothing to embed after cleaning, skipping semantic ranking")
		return
	}
	logger.Debug("Embedding text: %q", text)

	queryVec, err := s.embeddingService.Embed(ctx, text)
	if err != nil {
		logger.Warn("Query embedding failed: %v (using lexical scores only)", err)
		return
	}

	vectors := s.paperVectors(ctx, papers, scored, len(queryVec))

	maxLexical := 0.0
	for _, sp := range scored {
		if sp.matched && sp.lexical > maxLexical {
			maxLexical = sp.lexical
		}
	}

	w := s.settings.SemanticWeight
	for i := range scored {
		sp := &scored[i]
		if !sp.matched {
			continue
		}
		vec, ok := vectors[sp.index]
		if ok {
			sp.semantic = math.Max(cosineSimilarity(queryVec, vec), 0)
		}
		lexical := 0.0
		if maxLexical > 0 {
			lexical = sp.lexical / maxLexical
		}
		sp.score = (1-w)*lexical + w*sp.semantic
	}
}

// paperVectors returns stored embeddings of matched papers, embedding on the
// fly those that have none or whose size differs from the query vector.
func (s *SearchService) paperVectors(
	ctx context.Context, papers []domain.Paper, scored []scoredPaper, dims int,
) map[int][]float32 {
	vectors := make(map[int][]float32)
	var missing []int
	var texts []string

	for _, sp := range scored {
		if !sp.matched {
			continue
		}
		p := papers[sp.index]
		if len(p.Embedding) == dims {
			vectors[sp.index] = p.Embedding
			continue
		}
		if text := domain.BuildEmbeddingText(p); text != "" {
			missing = append(missing, sp.index)
			texts = append(texts, text)
		}
	}

	if len(texts) == 0 {
		return vectors
	}

	logger.Debug("Embedding %d papers without stored vectors", len(texts))
	embedded, err := s.embeddingService.EmbedBatch(ctx, texts)
	if err != nil || len(embedded) != len(texts) {
		logger.Warn("Paper embedding failed: %v", err)
		return vectors
	}
	for i, idx := range missing {
		vectors[idx] = embedded[i]
	}
	return vectors
}

// cosineSimilarity returns the cosine of the angle between a and b,
// or 0 when the sizes differ or either vector is zero.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// generateHighlights returns up to three abstract sentences containing a
// scoring term.
func generateHighlights(content string, terms []string) []string {
	if len(terms) == 0 {
		return nil
	}
	lowered := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			lowered = append(lowered, t)
		}
	}

	var highlights []string
	for _, sentence := range splitSentences(content) {
		sentenceLower := strings.ToLower(sentence)
		for _, term := range lowered {
			if strings.Contains(sentenceLower, term) {
				highlights = append(highlights, truncateRunes(sentence, maxHighlightRunes))
				break
			}
		}

		if len(highlights) >= 3 {
			break
		}
	}

	return highlights
}

// truncateRunes shortens s to at most n runes, marking the cut with "...".
func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i] + "..."
		}
		count++
	}
	return s
}

// splitSentences splits content into sentences.
func splitSentences(content string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range content {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// applyPagination applies offset and limit to results.
func applyPagination(results []domain.SearchResult, offset, limit int) []domain.SearchResult {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(results) {
		return []domain.SearchResult{}
	}

	end := offset + limit
	if end > len(results) {
		end = len(results)
	}

	return results[offset:end]
}
