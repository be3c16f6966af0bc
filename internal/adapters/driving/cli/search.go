package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/papersift/internal/core/domain"
)

var (
	searchDate            string
	searchLimit           int
	searchOffset          int
	searchJSON            bool
	searchSemantic        bool
	searchORWeight        float64
	searchIncludeFiltered bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search synced papers",
	Long: `Filters synced papers with a boolean query and ranks the matches.

Each OR branch is scored with BM25 over its positive terms; a paper's score
is its best branch plus --or-weight times its other matching branches.
With --semantic, scores are blended with embedding similarity.

Queries without boolean syntax are scored as a single phrase.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchDate, "date", "", "archive day to search (YYYYMMDD, default all days)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from settings)")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "number of results to skip")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchSemantic, "semantic", false, "blend in embedding similarity")
	searchCmd.Flags().Float64Var(&searchORWeight, "or-weight", 0, "weight of non-best OR branches (default from settings)")
	searchCmd.Flags().BoolVar(&searchIncludeFiltered, "include-filtered", false, "also list papers rejected by the filter")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := domain.SearchOptions{
		Date:            searchDate,
		Limit:           searchLimit,
		Offset:          searchOffset,
		Semantic:        searchSemantic,
		IncludeFiltered: searchIncludeFiltered,
	}
	if cmd.Flags().Changed("or-weight") {
		w := searchORWeight
		opts.ORSoftWeight = &w
	}

	results, err := searchService.Search(commandContext(cmd), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		r := &results[i]
		title := r.Paper.Title
		if title == "" {
			title = r.Paper.ID
		}

		if r.Matched {
			cmd.Printf("  [%d] %s (%.3f)\n", i+1, title, r.Score)
		} else {
			cmd.Printf("  [%d] %s (filtered)\n", i+1, title)
		}
		cmd.Printf("      %s  %s", r.Paper.ID, r.Paper.Date)
		if len(r.Paper.Authors) > 0 {
			cmd.Printf("  %s", formatAuthors(r.Paper.Authors))
		}
		cmd.Println()
		if r.SemanticScore > 0 {
			cmd.Printf("      lexical %.3f, semantic %.3f\n", r.LexicalScore, r.SemanticScore)
		}
		if len(r.Highlights) > 0 {
			cmd.Printf("      %s\n", r.Highlights[0])
		}
		cmd.Println()
	}

	return nil
}

// formatAuthors shortens long author lists to the first three.
func formatAuthors(authors []string) string {
	if len(authors) <= 3 {
		return strings.Join(authors, ", ")
	}
	return strings.Join(authors[:3], ", ") + ", et al."
}
