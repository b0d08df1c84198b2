package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanbit/seoulmate/internal/catalog"
	"github.com/hanbit/seoulmate/internal/query"
	"github.com/hanbit/seoulmate/internal/store"
)

// mockEmbedder returns a fixed vector and records the texts it was given.
type mockEmbedder struct {
	calls int
	texts []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	m.texts = append(m.texts, text)
	return []float32{1, 0}, nil
}

// mockVector pops one response per call and counts calls.
type mockVector struct {
	responses [][]store.Hit
	calls     int
}

func (m *mockVector) Search(_ context.Context, _ []float32, _ int) ([]store.Hit, error) {
	m.calls++
	if len(m.responses) == 0 {
		return nil, nil
	}
	hits := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return hits, nil
}

type mockLexical struct {
	hits    []store.Hit
	calls   int
	queries []string
}

func (m *mockLexical) Search(_ context.Context, q string, _ int) ([]store.Hit, error) {
	m.calls++
	m.queries = append(m.queries, q)
	return m.hits, nil
}

// scriptedReranker returns fixed scores or an error.
type scriptedReranker struct {
	scores []float64
	err    error
	calls  int
}

func (r *scriptedReranker) Rerank(_ context.Context, _ string, docs []string) ([]float64, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.scores[:len(docs)], nil
}

type staticPopularity map[string]float64

func (p staticPopularity) PopularityByTitle(_ int) (map[string]float64, error) {
	return p, nil
}

func engineFixture() *catalog.Catalog {
	return catalog.New([]catalog.Item{
		{Title: "Crash Landing on You", Genre: "Romance, Comedy", RatingValue: "8.7"},
		{Title: "Signal", Genre: "Thriller, Crime", RatingValue: "9.0"},
		{Title: "Welcome to Samdalri", Genre: "Romance, Drama", RatingValue: "8.1"},
		{Title: "Misaeng", Genre: "Drama, Office", RatingValue: "8.9"},
	})
}

func newTestEngine(vector *mockVector, lexical *mockLexical, opts ...EngineOption) (*Engine, *mockEmbedder) {
	embedder := &mockEmbedder{}
	e := NewEngine(engineFixture(), query.NewAnalyzer(nil), embedder, vector, lexical, opts...)
	return e, embedder
}

func TestSearchEmptyQuery(t *testing.T) {
	e, _ := newTestEngine(&mockVector{}, &mockLexical{})

	_, err := e.Search(context.Background(), "   ", Options{})
	require.Error(t, err)
}

func TestSearchEmptyUniverseShortCircuits(t *testing.T) {
	vector := &mockVector{responses: [][]store.Hit{{{ID: 0, Score: 0.9}}}}
	lexical := &mockLexical{hits: []store.Hit{{ID: 0, Score: 1}}}
	e, embedder := newTestEngine(vector, lexical)

	result, err := e.Search(context.Background(), "anything at all",
		Options{Filters: catalog.FilterSpec{Genre: "documentary"}})
	require.NoError(t, err)

	assert.True(t, result.NoMatches)
	assert.Empty(t, result.Items)
	// No retrieval of any kind ran.
	assert.Zero(t, embedder.calls)
	assert.Zero(t, vector.calls)
	assert.Zero(t, lexical.calls)
}

func TestSearchFusedOrder(t *testing.T) {
	vector := &mockVector{responses: [][]store.Hit{{{ID: 0, Score: 0.9}}}}
	lexical := &mockLexical{hits: []store.Hit{{ID: 0, Score: 2.0}, {ID: 1, Score: 4.0}}}
	e, _ := newTestEngine(vector, lexical)

	// "asdfgh" classifies Vague, alpha 0.8.
	result, err := e.Search(context.Background(), "asdfgh", Options{Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)

	assert.Equal(t, "Crash Landing on You", result.Items[0].Item.Title)
	assert.InDelta(t, 0.8*0.9+0.2*0.5, result.Items[0].CombinedScore, 1e-9)
	assert.Equal(t, "Signal", result.Items[1].Item.Title)
	assert.InDelta(t, 0.2, result.Items[1].CombinedScore, 1e-9)
	assert.False(t, result.Reranked)
}

func TestSearchDiscardsHitsOutsideUniverse(t *testing.T) {
	vector := &mockVector{responses: [][]store.Hit{{
		{ID: 1, Score: 0.9}, // Thriller, outside romance universe
		{ID: 0, Score: 0.8},
		{ID: 2, Score: 0.7},
	}}}
	e, _ := newTestEngine(vector, &mockLexical{})

	result, err := e.Search(context.Background(), "asdfgh",
		Options{Limit: 10, Filters: catalog.FilterSpec{Genre: "romance"}})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Crash Landing on You", result.Items[0].Item.Title)
	assert.Equal(t, "Welcome to Samdalri", result.Items[1].Item.Title)
}

func TestSearchSimilarToIntersection(t *testing.T) {
	vector := &mockVector{responses: [][]store.Hit{
		{{ID: 0, Score: 0.9}, {ID: 1, Score: 0.8}, {ID: 2, Score: 0.7}},
		{{ID: 1, Score: 0.9}, {ID: 3, Score: 0.5}},
	}}
	e, embedder := newTestEngine(vector, &mockLexical{})

	result, err := e.Search(context.Background(), "asdfgh",
		Options{Limit: 10, SimilarTo: "Signal"})
	require.NoError(t, err)

	// Fused [0,1,2] intersected with the similarity set {1,3} keeps 1 only,
	// in fused order.
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Signal", result.Items[0].Item.Title)
	assert.Equal(t, 2, embedder.calls)
	assert.Equal(t, 2, vector.calls)
}

func TestSearchSimilarToEmptyIntersection(t *testing.T) {
	vector := &mockVector{responses: [][]store.Hit{
		{{ID: 0, Score: 0.9}},
		{{ID: 3, Score: 0.9}},
	}}
	e, _ := newTestEngine(vector, &mockLexical{})

	result, err := e.Search(context.Background(), "asdfgh",
		Options{Limit: 10, SimilarTo: "Misaeng"})
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.False(t, result.NoMatches)
}

func TestSearchRerankReorders(t *testing.T) {
	vector := &mockVector{responses: [][]store.Hit{
		{{ID: 0, Score: 0.9}, {ID: 1, Score: 0.8}},
	}}
	reranker := &scriptedReranker{scores: []float64{0.1, 0.9}}
	e, _ := newTestEngine(vector, &mockLexical{}, WithReranker(reranker))

	result, err := e.Search(context.Background(), "asdfgh", Options{Limit: 10})
	require.NoError(t, err)

	assert.True(t, result.Reranked)
	assert.Equal(t, 1, reranker.calls)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Signal", result.Items[0].Item.Title)
}

func TestSearchRerankFailureKeepsFusedOrder(t *testing.T) {
	vector := &mockVector{responses: [][]store.Hit{
		{{ID: 0, Score: 0.9}, {ID: 1, Score: 0.8}},
	}}
	reranker := &scriptedReranker{err: errors.New("connection refused")}
	e, _ := newTestEngine(vector, &mockLexical{}, WithReranker(reranker))

	result, err := e.Search(context.Background(), "asdfgh", Options{Limit: 10})
	require.NoError(t, err)

	assert.False(t, result.Reranked)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Crash Landing on You", result.Items[0].Item.Title)
}

func TestSearchRerankSkippedForSpecificTitle(t *testing.T) {
	vector := &mockVector{responses: [][]store.Hit{
		{{ID: 0, Score: 0.9}},
	}}
	reranker := &scriptedReranker{scores: []float64{1}}
	e, _ := newTestEngine(vector, &mockLexical{}, WithReranker(reranker))

	result, err := e.Search(context.Background(), "Crash Landing on You", Options{Limit: 10})
	require.NoError(t, err)

	assert.False(t, result.Reranked)
	assert.Zero(t, reranker.calls)
}

func TestSearchPopularityBoostKeepsRerankOrder(t *testing.T) {
	vector := &mockVector{responses: [][]store.Hit{
		{{ID: 0, Score: 0.9}, {ID: 1, Score: 0.8}},
	}}
	reranker := &scriptedReranker{scores: []float64{0.1, 0.9}}
	// Popularity for an item outside the candidate set must not revert the
	// reranked order to the fused one.
	pop := staticPopularity{"misaeng": 1}
	e, _ := newTestEngine(vector, &mockLexical{},
		WithReranker(reranker), WithPopularitySource(pop))

	result, err := e.Search(context.Background(), "asdfgh", Options{Limit: 10})
	require.NoError(t, err)

	assert.True(t, result.Reranked)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Signal", result.Items[0].Item.Title)
	assert.Equal(t, "Crash Landing on You", result.Items[1].Item.Title)
	// The cross-encoder score is the served score once reranking ran.
	assert.InDelta(t, 0.9, result.Items[0].CombinedScore, 1e-9)
}

func TestSearchLexicalUsesResolvedSeed(t *testing.T) {
	vector := &mockVector{responses: [][]store.Hit{{{ID: 1, Score: 0.9}}}}
	lexical := &mockLexical{}
	e, _ := newTestEngine(vector, lexical)

	// "Signal" resolves to a catalog item, so the lexical leg sees the
	// item's metadata, not just the expanded query.
	_, err := e.Search(context.Background(), "Signal", Options{Limit: 10})
	require.NoError(t, err)

	require.Len(t, lexical.queries, 1)
	assert.Contains(t, lexical.queries[0], "Thriller, Crime")
}

func TestSearchSimilarToUnresolvedSeedExpanded(t *testing.T) {
	vector := &mockVector{responses: [][]store.Hit{
		{{ID: 0, Score: 0.9}},
		{{ID: 0, Score: 0.5}},
	}}
	e, embedder := newTestEngine(vector, &mockLexical{})

	_, err := e.Search(context.Background(), "asdfgh",
		Options{Limit: 10, SimilarTo: "funny drama"})
	require.NoError(t, err)

	// The reference resolves to no title, so the similarity seed is the
	// synonym-expanded reference.
	require.Len(t, embedder.texts, 2)
	assert.Equal(t, "funny comedy humorous drama", embedder.texts[1])
}

func TestSearchPopularityBoost(t *testing.T) {
	vector := &mockVector{responses: [][]store.Hit{
		{{ID: 0, Score: 0.9}, {ID: 1, Score: 0.8}},
	}}
	pop := staticPopularity{"signal": 6}
	e, _ := newTestEngine(vector, &mockLexical{}, WithPopularitySource(pop))

	// "trending drama" selects the heavy 0.5 popularity boost.
	result, err := e.Search(context.Background(), "trending drama", Options{Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Signal", result.Items[0].Item.Title)
}

func TestSearchSortOverride(t *testing.T) {
	vector := &mockVector{responses: [][]store.Hit{
		{{ID: 0, Score: 0.9}, {ID: 1, Score: 0.8}, {ID: 3, Score: 0.7}},
	}}
	e, _ := newTestEngine(vector, &mockLexical{})

	result, err := e.Search(context.Background(), "asdfgh", Options{
		Limit: 10,
		Sort:  &catalog.SortSpec{Field: catalog.SortByRatingValue, Descending: true},
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	assert.Equal(t, "Signal", result.Items[0].Item.Title)
	assert.Equal(t, "Misaeng", result.Items[1].Item.Title)
	assert.Equal(t, "Crash Landing on You", result.Items[2].Item.Title)
}

func TestSearchLimitTruncates(t *testing.T) {
	vector := &mockVector{responses: [][]store.Hit{
		{{ID: 0, Score: 0.9}, {ID: 1, Score: 0.8}, {ID: 2, Score: 0.7}, {ID: 3, Score: 0.6}},
	}}
	e, _ := newTestEngine(vector, &mockLexical{})

	result, err := e.Search(context.Background(), "asdfgh", Options{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, result.Items, 2)
}

func TestDiversify(t *testing.T) {
	c := catalog.New([]catalog.Item{
		{Title: "R1", Genre: "Romance"},
		{Title: "R2", Genre: "Romance, Comedy"},
		{Title: "R3", Genre: "Romance"},
		{Title: "R4", Genre: "Romance"},
		{Title: "T1", Genre: "Thriller"},
	})
	e := NewEngine(c, query.NewAnalyzer(nil), &mockEmbedder{}, &mockVector{}, &mockLexical{})

	fused := []candidate{{id: 0}, {id: 1}, {id: 2}, {id: 3}, {id: 4}}
	out := e.diversify(fused)

	require.Len(t, out, 5)
	// The fourth romance item moves behind the thriller.
	assert.Equal(t, 4, out[3].id)
	assert.Equal(t, 3, out[4].id)
}
