package boolquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_Precedence(t *testing.T) {
	node := Parse("A AND (B OR C) AND NOT D")
	require.NotNil(t, node)

	tests := []struct {
		name     string
		title    string
		abstract string
		want     bool
	}{
		{"A and B", "A B paper", "", true},
		{"A and C", "A C paper", "", true},
		{"negated D wins", "A D paper", "contains B", false},
		{"missing B and C", "A paper", "nothing relevant", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateFields(node, tt.title, tt.abstract, nil)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_AuthorTerm(t *testing.T) {
	node := Parse(`author:"Yoshua Bengio" AND diffusion`)
	require.NotNil(t, node)

	assert.True(t, Evaluate(node, Document{
		Title:    "diffusion model",
		Abstract: "x",
		Authors:  []string{"Yoshua Bengio", "Someone"},
	}))
	assert.False(t, Evaluate(node, Document{
		Title:    "diffusion model",
		Abstract: "x",
		Authors:  []string{"Another Author"},
	}))
}

func TestEvaluate_AuthorBoundaries(t *testing.T) {
	doc := Document{Authors: []string{"Yoshua Bengio", "Samy Bengio-Smith", "Someone"}}

	assert.True(t, MatchTerm("author:bengio", doc), "surname alone matches on a word boundary")
	assert.True(t, MatchTerm(`author:"YOSHUA BENGIO"`, doc), "case-insensitive")
	assert.False(t, MatchTerm(`author:"Bengio Someone"`, doc), "never matches across two authors")
	assert.False(t, MatchTerm("author:Beng", doc), "no partial words")
	assert.False(t, MatchTerm(`author:""`, doc), "empty author never matches")
	assert.False(t, MatchTerm("author:Bengio", Document{}), "no authors")
}

func TestEvaluate_TermBoundaries(t *testing.T) {
	doc := Document{
		Title:    "Graphs for Deep Neural   Network models",
		Abstract: "We study transformers.",
	}

	assert.True(t, MatchTerm("graphs", doc))
	assert.False(t, MatchTerm("graph", doc), "partial word")
	assert.True(t, MatchTerm(`"neural network"`, doc), "phrase across collapsed whitespace")
	assert.True(t, MatchTerm("models we", doc), "title and abstract are one text")
	assert.True(t, MatchTerm("transformers.", doc))
	assert.False(t, MatchTerm("", doc))
	assert.False(t, MatchTerm(`""`, doc))
}

func TestEvaluate_ImplicitConjunction(t *testing.T) {
	docs := []Document{
		{Title: "A B"},
		{Title: "A"},
		{Title: "B"},
		{Title: "nothing"},
	}

	explicit := Parse("A AND B")
	for _, doc := range docs {
		assert.Equal(t, Evaluate(explicit, doc), Evaluate(Parse("A B"), doc), doc.Title)
		assert.Equal(t, Evaluate(explicit, doc), Evaluate(Parse("(A)(B)"), doc), doc.Title)
	}
}

func TestEvaluate_DoubleNegation(t *testing.T) {
	node := Parse("NOT NOT diffusion")
	require.NotNil(t, node)

	assert.True(t, EvaluateFields(node, "diffusion models", "", nil))
	assert.False(t, EvaluateFields(node, "transformers", "", nil))
}

func TestEvaluate_Nil(t *testing.T) {
	assert.False(t, Evaluate(nil, Document{Title: "anything"}))
	assert.False(t, Evaluate(Parse("A AND"), Document{Title: "A"}))
	assert.False(t, Evaluate(Parse("(A"), Document{Title: "A"}))
}

func TestEvaluate_ConcurrentReaders(t *testing.T) {
	node := Parse("(graph OR tree) AND NOT survey")
	require.NotNil(t, node)

	done := make(chan bool)
	for i := 0; i < 8; i++ {
		go func() {
			done <- Evaluate(node, Document{Title: "graph methods"})
		}()
	}
	for i := 0; i < 8; i++ {
		assert.True(t, <-done)
	}
}
