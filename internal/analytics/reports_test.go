package analytics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClickThroughRate(t *testing.T) {
	s := newTestStore(t)

	searchID, err := s.LogSearch("u", "sad drama", "emotion_based",
		[]string{"A", "B", "C", "D", "E"}, nil, "")
	require.NoError(t, err)

	for _, title := range []string{"A", "B"} {
		require.NoError(t, s.LogInteraction(InteractionEvent{
			UserID: "u", ItemTitle: title, Action: ActionClick, SearchID: searchID,
		}))
	}
	// Watchlist adds do not count toward CTR.
	require.NoError(t, s.LogInteraction(InteractionEvent{
		UserID: "u", ItemTitle: "C", Action: ActionWatchlistAdd, SearchID: searchID,
	}))

	ctr, err := s.ClickThroughRate(searchID)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, ctr, 1e-9)
}

func TestClickThroughRateUnknownSearch(t *testing.T) {
	s := newTestStore(t)

	ctr, err := s.ClickThroughRate("search_missing")
	require.NoError(t, err)
	assert.Zero(t, ctr)
}

func TestPopularItems(t *testing.T) {
	s := newTestStore(t)

	// Signal: 3 clicks = 3 points. Misaeng: 1 click + 1 watchlist = 4.
	for i := 0; i < 3; i++ {
		require.NoError(t, s.LogInteraction(InteractionEvent{
			UserID: "u", ItemTitle: "Signal", Action: ActionClick,
		}))
	}
	require.NoError(t, s.LogInteraction(InteractionEvent{
		UserID: "u", ItemTitle: "Misaeng", Action: ActionClick,
	}))
	require.NoError(t, s.LogInteraction(InteractionEvent{
		UserID: "u", ItemTitle: "Misaeng", Action: ActionWatchlistAdd,
	}))

	popular, err := s.PopularItems(7, 10)
	require.NoError(t, err)
	require.Len(t, popular, 2)

	assert.Equal(t, "Misaeng", popular[0].Title)
	assert.Equal(t, 4, popular[0].Score)
	assert.Equal(t, 1, popular[0].ClickCount)
	assert.Equal(t, 1, popular[0].WatchlistAdds)

	assert.Equal(t, "Signal", popular[1].Title)
	assert.Equal(t, 3, popular[1].Score)
}

func TestPopularItemsLimit(t *testing.T) {
	s := newTestStore(t)

	for _, title := range []string{"A", "B", "C"} {
		require.NoError(t, s.LogInteraction(InteractionEvent{
			UserID: "u", ItemTitle: title, Action: ActionClick,
		}))
	}

	popular, err := s.PopularItems(7, 2)
	require.NoError(t, err)
	assert.Len(t, popular, 2)
	// Equal scores keep first-interaction order.
	assert.Equal(t, "A", popular[0].Title)
	assert.Equal(t, "B", popular[1].Title)
}

func TestTrendingQueries(t *testing.T) {
	s := newTestStore(t)

	_, err := s.LogSearch("u", "Sad Drama", "emotion_based", nil, nil, "")
	require.NoError(t, err)
	_, err = s.LogSearch("u", "sad drama", "vague", nil, nil, "")
	require.NoError(t, err)
	_, err = s.LogSearch("u", "best drama", "top_rated", nil, nil, "")
	require.NoError(t, err)

	trending, err := s.TrendingQueries(7, 10)
	require.NoError(t, err)
	require.Len(t, trending, 2)

	assert.Equal(t, "sad drama", trending[0].Query)
	assert.Equal(t, 2, trending[0].Count)
	// Intent comes from the most recent occurrence.
	assert.Equal(t, "vague", trending[0].Intent)

	assert.Equal(t, "best drama", trending[1].Query)
}

func TestSummarize(t *testing.T) {
	s := newTestStore(t)

	_, err := s.LogSearch("u1", "q1", "vague", []string{"A"}, nil, "")
	require.NoError(t, err)
	_, err = s.LogSearch("u2", "q2", "vague", []string{"B"}, nil, "")
	require.NoError(t, err)

	require.NoError(t, s.LogInteraction(InteractionEvent{
		UserID: "u1", ItemTitle: "A", Action: ActionClick,
	}))
	require.NoError(t, s.LogInteraction(InteractionEvent{
		UserID: "u2", ItemTitle: "B", Action: ActionWatchlistAdd,
	}))

	summary, err := s.Summarize(7)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalSearches)
	assert.Equal(t, 2, summary.TotalInteractions)
	assert.Equal(t, 1, summary.TotalClicks)
	assert.Equal(t, 1, summary.TotalWatchlistAdds)
	assert.Equal(t, 2, summary.UniqueUsers)
	assert.InDelta(t, 0.5, summary.AverageCTR, 1e-9)
	assert.InDelta(t, 1.0, summary.InteractionsPerUser, 1e-9)
}

func TestCorruptLogLinesSkipped(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, nil)
	require.NoError(t, err)

	require.NoError(t, s.LogInteraction(InteractionEvent{
		UserID: "u", ItemTitle: "Signal", Action: ActionClick,
	}))

	f, err := os.OpenFile(filepath.Join(dir, interactionsFile),
		os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("this is not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, s.LogInteraction(InteractionEvent{
		UserID: "u", ItemTitle: "Misaeng", Action: ActionClick,
	}))

	popular, err := s.PopularItems(7, 10)
	require.NoError(t, err)
	assert.Len(t, popular, 2)
}

func TestPopularityByTitle(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.LogInteraction(InteractionEvent{
		UserID: "u", ItemTitle: "Signal", Action: ActionWatchlistAdd,
	}))

	scores, err := s.PopularityByTitle(7)
	require.NoError(t, err)
	assert.Equal(t, 3.0, scores["signal"])
}
