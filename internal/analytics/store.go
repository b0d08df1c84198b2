package analytics

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofrs/flock"
	"github.com/google/uuid"

	serrors "github.com/hanbit/seoulmate/internal/errors"
)

const (
	searchLogFile    = "search_log.jsonl"
	interactionsFile = "interactions.jsonl"
	userStatsFile    = "user_stats.json"
	lockFile         = "analytics.lock"
)

// Store persists events under one directory. Appends within a process are
// serialized per file; the flock guards against concurrent writers from
// other processes sharing the directory.
type Store struct {
	dir    string
	logger *slog.Logger

	flock *flock.Flock

	searchMu      sync.Mutex
	interactionMu sync.Mutex

	// statsMu guards the stats file read-modify-write; userLocks serialize
	// per-user aggregate updates so one slow user cannot interleave with
	// itself.
	statsMu   sync.Mutex
	userLocks sync.Map // userID -> *sync.Mutex
}

// NewStore opens (creating if needed) the analytics directory.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, serrors.AnalyticsError("create analytics directory", err).
			WithDetail("dir", dir)
	}

	s := &Store{
		dir:    dir,
		logger: logger,
		flock:  flock.New(filepath.Join(dir, lockFile)),
	}

	// The stats file must exist so external consumers can always read it.
	statsPath := s.path(userStatsFile)
	if _, err := os.Stat(statsPath); os.IsNotExist(err) {
		if err := s.writeStats(map[string]*UserStats{}); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// newSearchID builds an id unique even under concurrent searches in the same
// nanosecond.
func newSearchID(now time.Time) string {
	return fmt.Sprintf("search_%d_%s", now.UnixNano(), uuid.NewString()[:8])
}

// LogSearch appends a search event and returns its id for later interaction
// attribution.
func (s *Store) LogSearch(userID, query, intent string, results []string, filters map[string]string, sessionID string) (string, error) {
	now := time.Now().UTC()
	event := SearchEvent{
		SearchID:    newSearchID(now),
		UserID:      userID,
		Query:       query,
		Intent:      intent,
		Results:     results,
		Filters:     filters,
		SessionID:   sessionID,
		Timestamp:   now,
		ResultCount: len(results),
	}
	if event.Filters == nil {
		event.Filters = map[string]string{}
	}

	s.searchMu.Lock()
	err := s.appendLine(searchLogFile, event)
	s.searchMu.Unlock()
	if err != nil {
		return "", err
	}

	if err := s.updateUserStats(userID, func(stats *UserStats) {
		stats.TotalSearches++
		stats.LastActive = &now
	}); err != nil {
		return "", err
	}

	s.logger.Debug("search_logged",
		"search_id", event.SearchID,
		"user_id", userID,
		"intent", intent,
		"result_count", event.ResultCount,
	)
	return event.SearchID, nil
}

// LogInteraction appends an interaction event and folds it into the user's
// aggregate stats.
func (s *Store) LogInteraction(event InteractionEvent) error {
	now := time.Now().UTC()
	if event.Timestamp.IsZero() {
		event.Timestamp = now
	}
	if event.Metadata == nil {
		event.Metadata = map[string]string{}
	}

	s.interactionMu.Lock()
	err := s.appendLine(interactionsFile, event)
	s.interactionMu.Unlock()
	if err != nil {
		return err
	}

	if err := s.updateUserStats(event.UserID, func(stats *UserStats) {
		stats.InteractionCount++
		stats.LastActive = &now

		switch event.Action {
		case ActionClick:
			stats.TotalClicks++
			stats.ClickedItems = appendClicked(stats.ClickedItems, event.ItemTitle)
		case ActionWatchlistAdd:
			stats.WatchlistAdds++
			if !contains(stats.Watchlist, event.ItemTitle) {
				stats.Watchlist = append(stats.Watchlist, event.ItemTitle)
			}
		case ActionWatchlistRemove:
			stats.Watchlist = remove(stats.Watchlist, event.ItemTitle)
		}
	}); err != nil {
		return err
	}

	s.logger.Debug("interaction_logged",
		"user_id", event.UserID,
		"action", event.Action,
		"item", event.ItemTitle,
	)
	return nil
}

// appendClicked adds a title to the clicked history: duplicates are skipped
// and the history holds at most maxClickedItems, dropping the oldest.
func appendClicked(items []string, title string) []string {
	if contains(items, title) {
		return items
	}
	items = append(items, title)
	if len(items) > maxClickedItems {
		items = items[len(items)-maxClickedItems:]
	}
	return items
}

func contains(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}

func remove(items []string, s string) []string {
	for i, it := range items {
		if it == s {
			return append(items[:i], items[i+1:]...)
		}
	}
	return items
}

// UserStats returns one user's aggregate. Unknown users get a zero value.
func (s *Store) UserStats(userID string) (UserStats, error) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	all, err := s.readStats()
	if err != nil {
		return UserStats{}, err
	}
	if stats, ok := all[userID]; ok {
		return *stats, nil
	}
	return UserStats{}, nil
}

func (s *Store) userLock(userID string) *sync.Mutex {
	lock, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (s *Store) updateUserStats(userID string, apply func(*UserStats)) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	all, err := s.readStats()
	if err != nil {
		return err
	}
	stats, ok := all[userID]
	if !ok {
		stats = &UserStats{
			FavoriteGenres: []string{},
			FavoriteActors: []string{},
			ClickedItems:   []string{},
			Watchlist:      []string{},
		}
		all[userID] = stats
	}
	apply(stats)
	return s.writeStats(all)
}

func (s *Store) readStats() (map[string]*UserStats, error) {
	data, err := os.ReadFile(s.path(userStatsFile))
	if os.IsNotExist(err) {
		return map[string]*UserStats{}, nil
	}
	if err != nil {
		return nil, serrors.New(serrors.ErrCodeAnalyticsRead, "read user stats", err)
	}
	var all map[string]*UserStats
	if err := json.Unmarshal(data, &all); err != nil {
		// A corrupt stats file is recoverable: start a fresh aggregate
		// rather than wedging every write.
		s.logger.Warn("user_stats_corrupt", "error", err)
		return map[string]*UserStats{}, nil
	}
	if all == nil {
		all = map[string]*UserStats{}
	}
	return all, nil
}

// writeStats rewrites the whole stats file. Callers hold statsMu.
func (s *Store) writeStats(all map[string]*UserStats) error {
	unlock, err := s.lockDir()
	if err != nil {
		return err
	}
	defer unlock()

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return serrors.AnalyticsError("encode user stats", err)
	}
	if err := os.WriteFile(s.path(userStatsFile), data, 0o644); err != nil {
		return serrors.AnalyticsError("write user stats", err)
	}
	return nil
}

// appendLine writes one JSON object plus newline to a log file. Callers hold
// the per-file mutex.
func (s *Store) appendLine(name string, v any) error {
	unlock, err := s.lockDir()
	if err != nil {
		return err
	}
	defer unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return serrors.AnalyticsError("encode event", err)
	}

	f, err := os.OpenFile(s.path(name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return serrors.AnalyticsError("open log file", err).WithDetail("file", name)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return serrors.AnalyticsError("append event", err).WithDetail("file", name)
	}
	return nil
}

// lockDir takes the cross-process lock; the returned func releases it.
func (s *Store) lockDir() (func(), error) {
	if err := s.flock.Lock(); err != nil {
		return nil, serrors.New(serrors.ErrCodeAnalyticsLock, "acquire analytics lock", err)
	}
	return func() {
		if err := s.flock.Unlock(); err != nil {
			s.logger.Warn("analytics_unlock_failed", "error", err)
		}
	}, nil
}
