package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/papersift/internal/core/domain"
)

var (
	papersDate  string
	papersLimit int
)

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "Browse synced papers",
	Long:  `List the papers stored locally for an archive day, or show one paper.`,
}

var papersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List papers for a day",
	Args:  cobra.NoArgs,
	RunE:  runPapersList,
}

var papersShowCmd = &cobra.Command{
	Use:   "show [paper-id]",
	Short: "Show one paper",
	Args:  cobra.ExactArgs(1),
	RunE:  runPapersShow,
}

func init() {
	papersListCmd.Flags().StringVar(&papersDate, "date", "", "archive day (YYYYMMDD, default all days)")
	papersListCmd.Flags().IntVarP(&papersLimit, "limit", "n", 50, "maximum number of papers (0 = all)")

	papersCmd.AddCommand(papersListCmd)
	papersCmd.AddCommand(papersShowCmd)
	rootCmd.AddCommand(papersCmd)
}

func runPapersList(cmd *cobra.Command, _ []string) error {
	if paperService == nil {
		return errors.New("paper service not configured")
	}

	papers, err := paperService.List(commandContext(cmd), domain.PaperFilter{Date: papersDate, Limit: papersLimit})
	if err != nil {
		return fmt.Errorf("failed to list papers: %w", err)
	}

	if len(papers) == 0 {
		if papersDate != "" {
			cmd.Printf("No papers found for %s\n", papersDate)
		} else {
			cmd.Println("No papers found.")
		}
		return nil
	}

	for i := range papers {
		cmd.Printf("  %s\n", papers[i].ID)
		cmd.Printf("    Title: %s\n", papers[i].Title)
		if papers[i].PrimaryCategory != "" {
			cmd.Printf("    Category: %s\n", papers[i].PrimaryCategory)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d papers\n", len(papers))
	return nil
}

func runPapersShow(cmd *cobra.Command, args []string) error {
	if paperService == nil {
		return errors.New("paper service not configured")
	}

	p, err := paperService.Get(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get paper: %w", err)
	}

	cmd.Printf("Paper: %s\n\n", p.ID)
	cmd.Printf("  Title:      %s\n", p.Title)
	cmd.Printf("  Authors:    %s\n", strings.Join(p.Authors, ", "))
	cmd.Printf("  Date:       %s\n", p.Date)
	if p.PrimaryCategory != "" {
		cmd.Printf("  Category:   %s\n", p.PrimaryCategory)
	}
	if len(p.Categories) > 0 {
		cmd.Printf("  Categories: %s\n", strings.Join(p.Categories, ", "))
	}
	if p.Published != "" {
		cmd.Printf("  Published:  %s\n", p.Published)
	}
	if p.Link != "" {
		cmd.Printf("  Link:       %s\n", p.Link)
	}
	cmd.Printf("  Source:     %s\n", p.Source)
	if p.HasEmbedding() {
		cmd.Printf("  Embedding:  %s (dim=%d, %s)\n",
			p.EmbeddingModel, p.EmbeddingDim, p.EmbeddingUpdatedAt.Format(time.DateTime))
	}
	cmd.Printf("  Updated:    %s\n", p.UpdatedAt.Format(time.DateTime))

	if p.Abstract != "" {
		cmd.Printf("\n%s\n", p.Abstract)
	}
	return nil
}
