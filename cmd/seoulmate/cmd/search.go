package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/hanbit/seoulmate/internal/catalog"
	"github.com/hanbit/seoulmate/internal/search"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	limit     int
	genre     string
	director  string
	publisher string
	keywords  string
	minRating float64
	minVotes  float64
	similarTo string
	sortBy    string
	ascending bool
	format    string
	userID    string
	sessionID string
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog",
		Long: `Search the catalog with hybrid retrieval.

The query is analyzed for intent and entities, expanded with synonyms, and
run through semantic and keyword retrieval fused by an intent-dependent
weight.

Examples:
  seoulmate search "sad romance drama"
  seoulmate search "like Signal" --limit 10
  seoulmate search "best drama" --genre thriller --min-rating 8.5
  seoulmate search "crime" --sort rating_value --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results")
	cmd.Flags().StringVar(&opts.genre, "genre", "", "Filter by genre substring")
	cmd.Flags().StringVar(&opts.director, "director", "", "Filter by director substring")
	cmd.Flags().StringVar(&opts.publisher, "publisher", "", "Filter by network/publisher substring")
	cmd.Flags().StringVar(&opts.keywords, "keywords", "", "Filter by keyword substring")
	cmd.Flags().Float64Var(&opts.minRating, "min-rating", 0, "Minimum rating value")
	cmd.Flags().Float64Var(&opts.minVotes, "min-votes", 0, "Minimum rating count")
	cmd.Flags().StringVar(&opts.similarTo, "similar-to", "", "Only items similar to this title")
	cmd.Flags().StringVar(&opts.sortBy, "sort", "", "Sort results by field instead of relevance")
	cmd.Flags().BoolVar(&opts.ascending, "asc", false, "Sort ascending (default descending)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().StringVarP(&opts.userID, "user", "u", "anonymous", "User id for analytics")
	cmd.Flags().StringVar(&opts.sessionID, "session", "", "Session id for analytics")

	return cmd
}

func runSearch(cmd *cobra.Command, queryText string, opts searchOptions) error {
	a, err := newApp()
	if err != nil {
		return fail(err)
	}
	defer a.cleanup()

	ctx := cmd.Context()
	engine, release, err := a.newEngine(ctx)
	if err != nil {
		return fail(err)
	}
	defer release()

	searchOpts := search.Options{
		Limit: opts.limit,
		Filters: catalog.FilterSpec{
			Genre:          opts.genre,
			Director:       opts.director,
			Publisher:      opts.publisher,
			Keywords:       opts.keywords,
			MinRatingValue: opts.minRating,
			MinRatingCount: opts.minVotes,
		},
		SimilarTo: opts.similarTo,
	}
	if opts.sortBy != "" {
		field, err := catalog.ParseSortField(opts.sortBy)
		if err != nil {
			return fail(err)
		}
		searchOpts.Sort = &catalog.SortSpec{Field: field, Descending: !opts.ascending}
	}

	result, err := engine.Search(ctx, queryText, searchOpts)
	if err != nil {
		return fail(err)
	}

	// Analytics must never affect the response: failures are logged and
	// swallowed.
	searchID, err := a.analytics.LogSearch(opts.userID, queryText,
		result.Analysis.Intent.String(), result.Titles(), filterMap(searchOpts.Filters), opts.sessionID)
	if err != nil {
		a.logger.Warn("search_log_failed", "error", err)
	}

	if opts.format == "json" {
		return printJSON(cmd, struct {
			*search.Result
			SearchID string `json:"search_id,omitempty"`
		}{result, searchID})
	}

	printSearchResult(cmd, result, searchID)
	return nil
}

func printSearchResult(cmd *cobra.Command, result *search.Result, searchID string) {
	out := cmd.OutOrStdout()

	if result.NoMatches {
		fmt.Fprintln(out, "No items match the given filters.")
		return
	}

	fmt.Fprintf(out, "Query: %s (intent: %s, alpha: %.2f)\n",
		result.Analysis.OriginalQuery, result.Analysis.Intent, result.Analysis.DynamicAlpha)
	if len(result.Items) == 0 {
		fmt.Fprintln(out, "No results.")
		return
	}

	for i, item := range result.Items {
		fmt.Fprintf(out, "%2d. %s", i+1, item.Item.Title)
		if item.Item.Genre != "" {
			fmt.Fprintf(out, "  [%s]", item.Item.Genre)
		}
		if item.Item.RatingValue != "" {
			fmt.Fprintf(out, "  ★ %s", item.Item.RatingValue)
		}
		fmt.Fprintf(out, "  (score %.3f)\n", item.CombinedScore)
	}
	if searchID != "" {
		fmt.Fprintf(out, "\nsearch id: %s\n", searchID)
	}
}

func filterMap(f catalog.FilterSpec) map[string]string {
	m := map[string]string{}
	if f.Genre != "" {
		m["genre"] = f.Genre
	}
	if f.Director != "" {
		m["director"] = f.Director
	}
	if f.Publisher != "" {
		m["publisher"] = f.Publisher
	}
	if f.Keywords != "" {
		m["keywords"] = f.Keywords
	}
	if f.MinRatingValue > 0 {
		m["min_rating"] = fmt.Sprintf("%g", f.MinRatingValue)
	}
	if f.MinRatingCount > 0 {
		m["min_votes"] = fmt.Sprintf("%g", f.MinRatingCount)
	}
	return m
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
