package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/papersift/internal/adapters/driving/styles"
	"github.com/custodia-labs/papersift/internal/core/domain"
)

var explainJSON bool

var explainCmd = &cobra.Command{
	Use:   "explain [query]",
	Short: "Show how a query is parsed and scored",
	Long: `Shows the tokens of a query after implicit AND insertion, its canonical
tree, the OR branches with the terms each is scored on, and the phrase sent
to the embedding model.

Queries that fail to parse are reported with the reason and are scored as
a plain phrase.`,
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

func init() {
	explainCmd.Flags().BoolVar(&explainJSON, "json", false, "output the explanation as JSON")
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	exp := searchService.Explain(args[0])

	if explainJSON {
		data, err := json.MarshalIndent(exp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal explanation: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	st := styles.PlainStyles()
	if isTerminal(cmd.OutOrStdout()) {
		st = styles.DefaultStyles()
	}
	cmd.Print(renderExplanation(exp, st))
	return nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func renderExplanation(exp domain.QueryExplanation, st *styles.Styles) string {
	var b strings.Builder
	line := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", st.Subtitle.Render(label+":"), value)
	}

	b.WriteString(st.Title.Render("Query") + "\n")
	line("Input", exp.Raw)
	line("Mode", exp.Mode.Description())
	if exp.ParseError != "" {
		line("Parse error", st.Error.Render(exp.ParseError))
	}
	if len(exp.Tokens) > 0 {
		line("Tokens", renderTokens(exp.Tokens, st))
	}
	if exp.Tree != "" {
		line("Tree", exp.Tree)
	}

	if len(exp.Branches) > 0 {
		b.WriteString("\n" + st.Title.Render("Branches") + "\n")
		for i, br := range exp.Branches {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, br.Expr)
			terms := st.Muted.Render("(no positive terms)")
			if len(br.Terms) > 0 {
				terms = renderTerms(br.Terms, st)
			}
			fmt.Fprintf(&b, "     %s %s\n", st.Muted.Render("terms:"), terms)
		}
	}

	b.WriteString("\n" + st.Title.Render("Scoring") + "\n")
	if len(exp.PositiveTerms) > 0 {
		line("Positive terms", renderTerms(exp.PositiveTerms, st))
	} else {
		line("Positive terms", st.Muted.Render("(none)"))
	}
	if exp.EmbeddingText != "" {
		line("Embedding phrase", exp.EmbeddingText)
	} else {
		line("Embedding phrase", st.Muted.Render("(empty)"))
	}

	return b.String()
}

func renderTokens(tokens []string, st *styles.Styles) string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		switch {
		case strings.HasPrefix(tok, "TERM("):
			out[i] = st.Term.Render(tok)
		case tok == "NOT":
			out[i] = st.Negated.Render(tok)
		default:
			out[i] = st.Muted.Render(tok)
		}
	}
	return strings.Join(out, " ")
}

func renderTerms(terms []string, st *styles.Styles) string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = st.Term.Render(t)
	}
	return strings.Join(out, ", ")
}
