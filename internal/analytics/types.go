// Package analytics records search and interaction events and derives
// popularity, trending, and usage reports from them.
//
// Storage is deliberately plain: two append-only JSONL logs plus one
// aggregated JSON stats file, all in a single directory. The field layout of
// these files is consumed by external tooling and must not change.
package analytics

import "time"

// Interaction actions. Rating and view-details events carry no aggregate of
// their own; they count toward interaction totals only.
const (
	ActionClick           = "click"
	ActionWatchlistAdd    = "watchlist_add"
	ActionWatchlistRemove = "watchlist_remove"
	ActionRating          = "rating"
	ActionViewDetails     = "view_details"
)

// Popularity weights: a watchlist add signals stronger interest than a click.
const (
	clickPoints     = 1
	watchlistPoints = 3
)

// maxClickedItems bounds the per-user clicked history; oldest entries fall
// off first.
const maxClickedItems = 100

// SearchEvent is one line of search_log.jsonl.
type SearchEvent struct {
	SearchID    string            `json:"search_id"`
	UserID      string            `json:"user_id"`
	Query       string            `json:"query"`
	Intent      string            `json:"intent"`
	Results     []string          `json:"results"`
	Filters     map[string]string `json:"filters"`
	SessionID   string            `json:"session_id"`
	Timestamp   time.Time         `json:"timestamp"`
	ResultCount int               `json:"result_count"`
}

// InteractionEvent is one line of interactions.jsonl.
type InteractionEvent struct {
	UserID    string            `json:"user_id"`
	ItemTitle string            `json:"drama_title"`
	Action    string            `json:"action"`
	SearchID  string            `json:"search_id,omitempty"`
	Position  int               `json:"position,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata"`
}

// UserStats is one user's aggregate in user_stats.json.
type UserStats struct {
	TotalSearches    int        `json:"total_searches"`
	TotalClicks      int        `json:"total_clicks"`
	WatchlistAdds    int        `json:"watchlist_adds"`
	FavoriteGenres   []string   `json:"favorite_genres"`
	FavoriteActors   []string   `json:"favorite_actors"`
	InteractionCount int        `json:"interaction_count"`
	LastActive       *time.Time `json:"last_active"`
	ClickedItems     []string   `json:"clicked_dramas"`
	Watchlist        []string   `json:"watchlist"`
}

// PopularItem is one row of the popularity report.
type PopularItem struct {
	Title         string `json:"drama_title"`
	Score         int    `json:"score"`
	ClickCount    int    `json:"click_count"`
	WatchlistAdds int    `json:"watchlist_count"`
}

// TrendingQuery is one row of the trending-searches report.
type TrendingQuery struct {
	Query  string `json:"query"`
	Count  int    `json:"count"`
	Intent string `json:"intent"`
}

// Summary aggregates recent usage.
type Summary struct {
	PeriodDays          int     `json:"period_days"`
	TotalSearches       int     `json:"total_searches"`
	TotalInteractions   int     `json:"total_interactions"`
	TotalClicks         int     `json:"total_clicks"`
	TotalWatchlistAdds  int     `json:"total_watchlist_adds"`
	UniqueUsers         int     `json:"unique_users"`
	AverageCTR          float64 `json:"average_ctr"`
	InteractionsPerUser float64 `json:"interactions_per_user"`
}

// UserPreferences is the interaction-derived profile for one user.
type UserPreferences struct {
	InteractedItems  []string `json:"interacted_dramas"`
	InteractionCount int      `json:"interaction_count"`
	WatchlistSize    int      `json:"watchlist_size"`
}
