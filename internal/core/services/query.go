package services

import (
	"strings"

	"github.com/custodia-labs/papersift/internal/boolquery"
	"github.com/custodia-labs/papersift/internal/core/domain"
)

// queryPlan is the interpreted form of a raw query.
type queryPlan struct {
	raw  string
	mode domain.QueryMode

	// tree is nil unless mode is QueryModeBoolean.
	tree     boolquery.Node
	parseErr error

	// branches are the OR alternatives of tree, with their positive terms.
	branches    []boolquery.Node
	branchTerms [][]string

	// terms are the lexical scoring terms for the whole query.
	terms []string
}

// planQuery decides how a raw query is scored. Queries without boolean
// syntax, and boolean queries that fail to parse, are scored as one phrase.
func planQuery(raw string) queryPlan {
	plan := queryPlan{raw: raw, mode: domain.QueryModePhrase, terms: []string{raw}}
	if !boolquery.HasBooleanSyntax(raw) {
		return plan
	}

	tree, err := boolquery.ParseStrict(raw)
	if err != nil {
		plan.mode = domain.QueryModeFallback
		plan.parseErr = err
		return plan
	}

	plan.mode = domain.QueryModeBoolean
	plan.tree = tree
	plan.terms = boolquery.CollectUniquePositiveTerms(tree)
	plan.branches = boolquery.SplitOrBranches(tree)
	plan.branchTerms = make([][]string, len(plan.branches))
	for i, b := range plan.branches {
		plan.branchTerms[i] = boolquery.CollectUniquePositiveTerms(b)
	}
	return plan
}

// explain renders a plan for display.
func (p queryPlan) explain() domain.QueryExplanation {
	tokens := boolquery.Tokenize(strings.Join(strings.Fields(p.raw), " "))
	tokenStrs := make([]string, len(tokens))
	for i, t := range tokens {
		tokenStrs[i] = t.String()
	}

	exp := domain.QueryExplanation{
		Raw:           p.raw,
		Mode:          p.mode,
		Tokens:        tokenStrs,
		Tree:          boolquery.Format(p.tree),
		PositiveTerms: p.terms,
		EmbeddingText: boolquery.CleanForEmbedding(p.raw),
	}
	if p.parseErr != nil {
		exp.ParseError = p.parseErr.Error()
	}
	for i, b := range p.branches {
		exp.Branches = append(exp.Branches, domain.BranchExplanation{
			Expr:  b.String(),
			Terms: p.branchTerms[i],
		})
	}
	return exp
}

// queryDocument is the evaluator's view of a paper.
func queryDocument(p domain.Paper) boolquery.Document {
	return boolquery.Document{
		Title:    p.Title,
		Abstract: p.Abstract,
		Authors:  p.Authors,
	}
}
