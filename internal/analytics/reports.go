package analytics

import (
	"bufio"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	serrors "github.com/hanbit/seoulmate/internal/errors"
)

// ClickThroughRate is clicks attributed to a search divided by the number of
// results it returned. Unknown searches and searches without interactions
// rate 0.
func (s *Store) ClickThroughRate(searchID string) (float64, error) {
	interactions, err := s.loadInteractions(0, "")
	if err != nil {
		return 0, err
	}

	clicks := 0
	seen := false
	for _, it := range interactions {
		if it.SearchID != searchID {
			continue
		}
		seen = true
		if it.Action == ActionClick {
			clicks++
		}
	}
	if !seen {
		return 0, nil
	}

	searches, err := s.loadSearches(0)
	if err != nil {
		return 0, err
	}
	for _, se := range searches {
		if se.SearchID == searchID {
			if se.ResultCount <= 0 {
				return 0, nil
			}
			return float64(clicks) / float64(se.ResultCount), nil
		}
	}
	return 0, nil
}

// PopularItems ranks items by recent interaction score: one point per click,
// three per watchlist add. Ties keep first-interaction order.
func (s *Store) PopularItems(days, limit int) ([]PopularItem, error) {
	interactions, err := s.loadInteractions(days, "")
	if err != nil {
		return nil, err
	}

	byTitle := map[string]*PopularItem{}
	var order []string

	for _, it := range interactions {
		entry, ok := byTitle[it.ItemTitle]
		if !ok {
			entry = &PopularItem{Title: it.ItemTitle}
			byTitle[it.ItemTitle] = entry
			order = append(order, it.ItemTitle)
		}
		switch it.Action {
		case ActionClick:
			entry.ClickCount++
			entry.Score += clickPoints
		case ActionWatchlistAdd:
			entry.WatchlistAdds++
			entry.Score += watchlistPoints
		}
	}

	popular := make([]PopularItem, 0, len(order))
	for _, title := range order {
		popular = append(popular, *byTitle[title])
	}
	sort.SliceStable(popular, func(i, j int) bool {
		return popular[i].Score > popular[j].Score
	})

	if limit > 0 && len(popular) > limit {
		popular = popular[:limit]
	}
	return popular, nil
}

// PopularityByTitle exposes recent popularity scores keyed by lower-cased
// title, for blending into ranking.
func (s *Store) PopularityByTitle(days int) (map[string]float64, error) {
	popular, err := s.PopularItems(days, 0)
	if err != nil {
		return nil, err
	}
	scores := make(map[string]float64, len(popular))
	for _, p := range popular {
		scores[strings.ToLower(p.Title)] = float64(p.Score)
	}
	return scores, nil
}

// TrendingQueries counts recent queries case-insensitively. Each query
// reports the intent of its most recent occurrence. Ties keep
// first-appearance order.
func (s *Store) TrendingQueries(days, limit int) ([]TrendingQuery, error) {
	searches, err := s.loadSearches(days)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	intents := map[string]string{}
	var order []string

	for _, se := range searches {
		q := strings.ToLower(se.Query)
		if _, ok := counts[q]; !ok {
			order = append(order, q)
		}
		counts[q]++
		intents[q] = se.Intent
	}

	trending := make([]TrendingQuery, 0, len(order))
	for _, q := range order {
		trending = append(trending, TrendingQuery{
			Query:  q,
			Count:  counts[q],
			Intent: intents[q],
		})
	}
	sort.SliceStable(trending, func(i, j int) bool {
		return trending[i].Count > trending[j].Count
	})

	if limit > 0 && len(trending) > limit {
		trending = trending[:limit]
	}
	return trending, nil
}

// Summarize aggregates usage over the window.
func (s *Store) Summarize(days int) (Summary, error) {
	interactions, err := s.loadInteractions(days, "")
	if err != nil {
		return Summary{}, err
	}
	searches, err := s.loadSearches(days)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		PeriodDays:        days,
		TotalSearches:     len(searches),
		TotalInteractions: len(interactions),
	}

	users := map[string]bool{}
	for _, it := range interactions {
		users[it.UserID] = true
		switch it.Action {
		case ActionClick:
			summary.TotalClicks++
		case ActionWatchlistAdd:
			summary.TotalWatchlistAdds++
		}
	}
	summary.UniqueUsers = len(users)

	if summary.TotalSearches > 0 {
		summary.AverageCTR = float64(summary.TotalClicks) / float64(summary.TotalSearches)
	}
	if summary.UniqueUsers > 0 {
		summary.InteractionsPerUser = float64(summary.TotalInteractions) / float64(summary.UniqueUsers)
	}
	return summary, nil
}

// Preferences derives a light interaction profile for one user.
func (s *Store) Preferences(userID string) (UserPreferences, error) {
	interactions, err := s.loadInteractions(0, userID)
	if err != nil {
		return UserPreferences{}, err
	}

	prefs := UserPreferences{InteractionCount: len(interactions)}
	seen := map[string]bool{}
	for _, it := range interactions {
		switch it.Action {
		case ActionClick, ActionWatchlistAdd:
			if !seen[it.ItemTitle] {
				seen[it.ItemTitle] = true
				prefs.InteractedItems = append(prefs.InteractedItems, it.ItemTitle)
			}
		}
		if it.Action == ActionWatchlistAdd {
			prefs.WatchlistSize++
		}
	}
	return prefs, nil
}

// loadInteractions scans the interaction log, optionally bounded to the last
// `days` days and one user. Corrupt lines are skipped.
func (s *Store) loadInteractions(days int, userID string) ([]InteractionEvent, error) {
	var out []InteractionEvent
	cutoff := cutoffFor(days)

	err := s.scanLines(interactionsFile, func(line []byte) {
		var event InteractionEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return
		}
		if !cutoff.IsZero() && event.Timestamp.Before(cutoff) {
			return
		}
		if userID != "" && event.UserID != userID {
			return
		}
		out = append(out, event)
	})
	return out, err
}

// loadSearches scans the search log, optionally bounded to the last `days`
// days. Corrupt lines are skipped.
func (s *Store) loadSearches(days int) ([]SearchEvent, error) {
	var out []SearchEvent
	cutoff := cutoffFor(days)

	err := s.scanLines(searchLogFile, func(line []byte) {
		var event SearchEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return
		}
		if !cutoff.IsZero() && event.Timestamp.Before(cutoff) {
			return
		}
		out = append(out, event)
	})
	return out, err
}

func cutoffFor(days int) time.Time {
	if days <= 0 {
		return time.Time{}
	}
	return time.Now().UTC().AddDate(0, 0, -days)
}

func (s *Store) scanLines(name string, visit func(line []byte)) error {
	f, err := os.Open(s.path(name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return serrors.New(serrors.ErrCodeAnalyticsRead, "open log file", err).
			WithDetail("file", name)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		visit(line)
	}
	if err := scanner.Err(); err != nil {
		return serrors.New(serrors.ErrCodeAnalyticsRead, "scan log file", err).
			WithDetail("file", name)
	}
	return nil
}
