package analytics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func TestLogSearchAssignsUniqueIDs(t *testing.T) {
	s := newTestStore(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		id, err := s.LogSearch("user1", "sad drama", "emotion_based",
			[]string{"Signal"}, nil, "sess1")
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate search id %s", id)
		seen[id] = true
	}
}

func TestLogSearchUpdatesStats(t *testing.T) {
	s := newTestStore(t)

	_, err := s.LogSearch("user1", "funny drama", "emotion_based", nil, nil, "")
	require.NoError(t, err)
	_, err = s.LogSearch("user1", "best drama", "top_rated", nil, nil, "")
	require.NoError(t, err)

	stats, err := s.UserStats("user1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalSearches)
	require.NotNil(t, stats.LastActive)
}

func TestLogInteractionAggregates(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.LogInteraction(InteractionEvent{
		UserID: "user1", ItemTitle: "Signal", Action: ActionClick,
	}))
	require.NoError(t, s.LogInteraction(InteractionEvent{
		UserID: "user1", ItemTitle: "Signal", Action: ActionClick,
	}))
	require.NoError(t, s.LogInteraction(InteractionEvent{
		UserID: "user1", ItemTitle: "Misaeng", Action: ActionWatchlistAdd,
	}))

	stats, err := s.UserStats("user1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalClicks)
	assert.Equal(t, 1, stats.WatchlistAdds)
	assert.Equal(t, 3, stats.InteractionCount)
	// Clicked history de-duplicates.
	assert.Equal(t, []string{"Signal"}, stats.ClickedItems)
	assert.Equal(t, []string{"Misaeng"}, stats.Watchlist)
}

func TestRatingAndViewDetailsCountAsInteractions(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.LogInteraction(InteractionEvent{
		UserID: "user1", ItemTitle: "Signal", Action: ActionRating,
	}))
	require.NoError(t, s.LogInteraction(InteractionEvent{
		UserID: "user1", ItemTitle: "Signal", Action: ActionViewDetails,
	}))

	stats, err := s.UserStats("user1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.InteractionCount)
	// Neither action touches the click or watchlist aggregates.
	assert.Zero(t, stats.TotalClicks)
	assert.Zero(t, stats.WatchlistAdds)
	assert.Empty(t, stats.Watchlist)
	assert.Empty(t, stats.ClickedItems)
}

func TestWatchlistRemove(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.LogInteraction(InteractionEvent{
		UserID: "u", ItemTitle: "Signal", Action: ActionWatchlistAdd,
	}))
	require.NoError(t, s.LogInteraction(InteractionEvent{
		UserID: "u", ItemTitle: "Signal", Action: ActionWatchlistRemove,
	}))

	stats, err := s.UserStats("u")
	require.NoError(t, err)
	assert.Empty(t, stats.Watchlist)
	// Adds are counted even when later removed.
	assert.Equal(t, 1, stats.WatchlistAdds)
}

func TestClickedItemsRing(t *testing.T) {
	items := []string{}
	for i := 0; i < maxClickedItems; i++ {
		items = appendClicked(items, fmt.Sprintf("item-%03d", i))
	}
	require.Len(t, items, maxClickedItems)

	items = appendClicked(items, "newest")
	assert.Len(t, items, maxClickedItems)
	assert.Equal(t, "newest", items[len(items)-1])
	// Oldest entry was evicted.
	assert.NotContains(t, items, "item-000")
	assert.Contains(t, items, "item-001")
}

func TestUnknownUserStats(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.UserStats("nobody")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalSearches)
	assert.Zero(t, stats.InteractionCount)
}

func TestConcurrentInteractions(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = s.LogInteraction(InteractionEvent{
				UserID:    "user1",
				ItemTitle: fmt.Sprintf("Item %d", n),
				Action:    ActionClick,
			})
		}(i)
	}
	wg.Wait()

	stats, err := s.UserStats("user1")
	require.NoError(t, err)
	assert.Equal(t, 10, stats.TotalClicks)
	assert.Len(t, stats.ClickedItems, 10)
}

func TestCorruptStatsFileRecovers(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, userStatsFile), []byte("{not json"), 0o644))

	require.NoError(t, s.LogInteraction(InteractionEvent{
		UserID: "u", ItemTitle: "Signal", Action: ActionClick,
	}))

	stats, err := s.UserStats("u")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalClicks)
}

func TestSearchLogIsJSONL(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, nil)
	require.NoError(t, err)

	_, err = s.LogSearch("u", "q1", "vague", []string{"A"}, nil, "")
	require.NoError(t, err)
	_, err = s.LogSearch("u", "q2", "vague", []string{"B"}, nil, "")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, searchLogFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Len(t, lines, 2)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "{"), "line is a JSON object: %s", line)
	}
}
