package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hanbit/seoulmate/internal/analytics"
)

func newInteractCmd() *cobra.Command {
	var (
		userID    string
		action    string
		searchID  string
		position  int
		sessionID string
	)

	cmd := &cobra.Command{
		Use:   "interact <title>",
		Short: "Record a user interaction with a title",
		Long: `Record a click, watchlist add, or watchlist removal for a title.

Pass the search id printed by 'seoulmate search' to attribute the
interaction to that search for click-through reporting.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch action {
			case analytics.ActionClick, analytics.ActionWatchlistAdd, analytics.ActionWatchlistRemove,
				analytics.ActionRating, analytics.ActionViewDetails:
			default:
				return fail(fmt.Errorf("unsupported action %q", action))
			}

			a, err := newApp()
			if err != nil {
				return fail(err)
			}
			defer a.cleanup()

			err = a.analytics.LogInteraction(analytics.InteractionEvent{
				UserID:    userID,
				ItemTitle: args[0],
				Action:    action,
				SearchID:  searchID,
				Position:  position,
				SessionID: sessionID,
			})
			if err != nil {
				return fail(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recorded %s on %q for %s\n", action, args[0], userID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "anonymous", "User id")
	cmd.Flags().StringVarP(&action, "action", "a", analytics.ActionClick,
		"Action: click, watchlist_add, watchlist_remove, rating, view_details")
	cmd.Flags().StringVar(&searchID, "search-id", "", "Originating search id")
	cmd.Flags().IntVar(&position, "position", 0, "1-indexed result position")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session id")

	return cmd
}

func newPopularCmd() *cobra.Command {
	var days, limit int
	var format string

	cmd := &cobra.Command{
		Use:   "popular",
		Short: "Show the most popular titles by recent interactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return fail(err)
			}
			defer a.cleanup()

			popular, err := a.analytics.PopularItems(days, limit)
			if err != nil {
				return fail(err)
			}
			if format == "json" {
				return printJSON(cmd, popular)
			}
			if len(popular) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No interactions recorded in the window.")
				return nil
			}
			for i, p := range popular {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s  score=%d (clicks=%d, watchlist=%d)\n",
					i+1, p.Title, p.Score, p.ClickCount, p.WatchlistAdds)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "Lookback window in days")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum rows")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}

func newTrendingCmd() *cobra.Command {
	var days, limit int
	var format string

	cmd := &cobra.Command{
		Use:   "trending",
		Short: "Show the most frequent recent search queries",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return fail(err)
			}
			defer a.cleanup()

			trending, err := a.analytics.TrendingQueries(days, limit)
			if err != nil {
				return fail(err)
			}
			if format == "json" {
				return printJSON(cmd, trending)
			}
			if len(trending) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No searches recorded in the window.")
				return nil
			}
			for i, tq := range trending {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d. %q  count=%d intent=%s\n",
					i+1, tq.Query, tq.Count, tq.Intent)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "Lookback window in days")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum rows")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}

func newStatsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "stats <user>",
		Short: "Show aggregated stats for one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return fail(err)
			}
			defer a.cleanup()

			stats, err := a.analytics.UserStats(args[0])
			if err != nil {
				return fail(err)
			}
			if format == "json" {
				return printJSON(cmd, stats)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user: %s\n", args[0])
			fmt.Fprintf(out, "searches:      %d\n", stats.TotalSearches)
			fmt.Fprintf(out, "clicks:        %d\n", stats.TotalClicks)
			fmt.Fprintf(out, "watchlist adds: %d\n", stats.WatchlistAdds)
			fmt.Fprintf(out, "interactions:  %d\n", stats.InteractionCount)
			if stats.LastActive != nil {
				fmt.Fprintf(out, "last active:   %s\n", stats.LastActive.Format("2006-01-02 15:04:05"))
			}
			fmt.Fprintf(out, "watchlist:     %v\n", stats.Watchlist)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	var days int
	var format string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show overall usage summary for a window",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return fail(err)
			}
			defer a.cleanup()

			summary, err := a.analytics.Summarize(days)
			if err != nil {
				return fail(err)
			}
			if format == "json" {
				return printJSON(cmd, summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "window:              %d days\n", summary.PeriodDays)
			fmt.Fprintf(out, "searches:            %d\n", summary.TotalSearches)
			fmt.Fprintf(out, "interactions:        %d\n", summary.TotalInteractions)
			fmt.Fprintf(out, "clicks:              %d\n", summary.TotalClicks)
			fmt.Fprintf(out, "watchlist adds:      %d\n", summary.TotalWatchlistAdds)
			fmt.Fprintf(out, "unique users:        %d\n", summary.UniqueUsers)
			fmt.Fprintf(out, "average ctr:         %.3f\n", summary.AverageCTR)
			fmt.Fprintf(out, "interactions/user:   %.2f\n", summary.InteractionsPerUser)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "Lookback window in days")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}
