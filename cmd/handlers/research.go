package handlers

import (
	"context"
	"fmt"
	"strings"

	"blogforge/internal/core"
	"blogforge/internal/ideation"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewKeywordsCmd creates the keywords command that runs keyword research only
func NewKeywordsCmd() *cobra.Command {
	var (
		description string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "keywords [query]",
		Short: "Research primary and long-tail keywords for a topic",
		Long: `Expand a topic query into 5-10 primary keywords and 5-8 long-tail phrases,
using a project description as context.

Example:
  blogforge keywords composting --description "A blog about urban gardening"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return runKeywords(cmd.Context(), description, query, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Project description used as context (required)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print keywords as JSON")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func runKeywords(ctx context.Context, description, query string, jsonOutput bool) error {
	client, err := newLLMClient(ctx)
	if err != nil {
		return err
	}

	keywords, err := ideation.ResearchKeywords(ctx, client, ideation.BuildContext(description, nil), query)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(keywords)
	}

	printHeader("🔑 Keyword research")
	fmt.Println(labelStyle.Render("Primary:"))
	for _, kw := range keywords.PrimaryKeywords {
		fmt.Printf("  • %s\n", kw)
	}
	fmt.Println(labelStyle.Render("Long-tail:"))
	for _, kw := range keywords.LongTailKeywords {
		fmt.Printf("  • %s\n", kw)
	}
	return nil
}

// NewTrendsCmd creates the trends command that prints trend summaries for keywords
func NewTrendsCmd() *cobra.Command {
	var related bool

	cmd := &cobra.Command{
		Use:   "trends <keyword>...",
		Short: "Summarize search interest for keywords",
		Long: `Look up search interest for each keyword and print the same summaries the
ideation pipeline feeds to the model. With --related, summarize related
queries instead.

Examples:
  blogforge trends composting "worm bin"
  blogforge trends "how to compost on a balcony" --related`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrends(cmd.Context(), args, related)
		},
	}

	cmd.Flags().BoolVar(&related, "related", false, "Summarize related queries instead of interest over time")

	return cmd
}

func runTrends(ctx context.Context, keywords []string, related bool) error {
	fetcher, err := newFetcher()
	if err != nil {
		return err
	}

	summaries := make([]core.TrendSummary, len(keywords))
	g, gctx := errgroup.WithContext(ctx)
	for i, kw := range keywords {
		g.Go(func() error {
			if related {
				summaries[i] = fetcher.FetchRelatedQueriesSummary(gctx, kw)
			} else {
				summaries[i] = fetcher.FetchPopularitySummary(gctx, kw)
			}
			return nil
		})
	}
	_ = g.Wait()

	printHeader(fmt.Sprintf("📈 Trends via %s", fetcher.ProviderName()))
	for _, s := range summaries {
		if s.Error {
			fmt.Println(warnStyle.Render(fmt.Sprintf("%s: %s", s.Keyword, s.Message)))
			continue
		}
		fmt.Println(strings.TrimSpace(s.Summary))
	}
	return nil
}
