package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hanbit/seoulmate/internal/catalog"
	serrors "github.com/hanbit/seoulmate/internal/errors"
	"github.com/hanbit/seoulmate/internal/query"
	"github.com/hanbit/seoulmate/internal/store"
)

// Engine defaults, overridable through options.
const (
	DefaultLimit    = 5
	DefaultMaxLimit = 50

	// DefaultCandidateMargin pads semantic retrieval beyond the universe
	// size because the vector index is not filter-aware.
	DefaultCandidateMargin = 50

	// DefaultLexicalExtra pads the lexical cut beyond the requested limit
	// so fusion sees candidates below the fold.
	DefaultLexicalExtra = 20

	// DefaultFuzzyThreshold is the 0-100 fuzzy title match cutoff.
	DefaultFuzzyThreshold = 70

	// DefaultPopularityWindowDays is the lookback for popularity boosts.
	DefaultPopularityWindowDays = 7

	// maxPerGenre caps items sharing a primary genre under the diversity
	// pass.
	maxPerGenre = 3
)

// Engine executes the search pipeline over one immutable catalog.
type Engine struct {
	catalog  *catalog.Catalog
	analyzer *query.Analyzer
	embedder Embedder
	vector   store.VectorSearcher
	lexical  store.LexicalSearcher

	reranker   Reranker
	popularity PopularitySource
	logger     *slog.Logger

	defaultLimit         int
	maxLimit             int
	candidateMargin      int
	lexicalExtra         int
	fuzzyThreshold       float64
	popularityWindowDays int
}

// Embedder is the slice of the embedding client the engine needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithReranker installs the cross-encoder used when the intent strategy asks
// for reranking.
func WithReranker(r Reranker) EngineOption {
	return func(e *Engine) { e.reranker = r }
}

// WithPopularitySource installs the popularity provider consulted for
// popularity boosts.
func WithPopularitySource(p PopularitySource) EngineOption {
	return func(e *Engine) { e.popularity = p }
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// WithLimits overrides the default and maximum result counts.
func WithLimits(defaultLimit, maxLimit int) EngineOption {
	return func(e *Engine) {
		if defaultLimit > 0 {
			e.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			e.maxLimit = maxLimit
		}
	}
}

// WithCandidateMargin overrides the semantic retrieval padding.
func WithCandidateMargin(margin int) EngineOption {
	return func(e *Engine) { e.candidateMargin = margin }
}

// WithFuzzyThreshold overrides the fuzzy title-match cutoff (0-100).
func WithFuzzyThreshold(threshold float64) EngineOption {
	return func(e *Engine) { e.fuzzyThreshold = threshold }
}

// WithPopularityWindow overrides the popularity lookback in days.
func WithPopularityWindow(days int) EngineOption {
	return func(e *Engine) {
		if days > 0 {
			e.popularityWindowDays = days
		}
	}
}

// NewEngine builds an engine over the given catalog and retrieval backends.
func NewEngine(c *catalog.Catalog, analyzer *query.Analyzer, embedder Embedder,
	vector store.VectorSearcher, lexical store.LexicalSearcher, opts ...EngineOption) *Engine {

	e := &Engine{
		catalog:              c,
		analyzer:             analyzer,
		embedder:             embedder,
		vector:               vector,
		lexical:              lexical,
		logger:               slog.New(slog.DiscardHandler),
		defaultLimit:         DefaultLimit,
		maxLimit:             DefaultMaxLimit,
		candidateMargin:      DefaultCandidateMargin,
		lexicalExtra:         DefaultLexicalExtra,
		fuzzyThreshold:       DefaultFuzzyThreshold,
		popularityWindowDays: DefaultPopularityWindowDays,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search runs the full pipeline for one query.
func (e *Engine) Search(ctx context.Context, rawQuery string, opts Options) (*Result, error) {
	if strings.TrimSpace(rawQuery) == "" {
		return nil, serrors.New(serrors.ErrCodeQueryEmpty, "query must not be empty", nil)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = e.defaultLimit
	}
	if limit > e.maxLimit {
		limit = e.maxLimit
	}

	analysis := e.analyzer.Analyze(rawQuery)
	strategy := query.StrategyFor(analysis.Intent)

	universe := opts.Filters.Apply(e.catalog)
	if len(universe) == 0 {
		// First-class outcome: retrieval and reranking never run.
		e.logger.Debug("search_no_matches", "query", rawQuery)
		return &Result{Analysis: analysis, NoMatches: true}, nil
	}
	inUniverse := make(map[int]bool, len(universe))
	for _, id := range universe {
		inUniverse[id] = true
	}

	seedText := e.seedText(rawQuery, analysis.ExpandedQuery, universe, inUniverse)

	semanticHits, lexicalHits, err := e.retrieve(ctx, seedText, len(universe), limit, inUniverse)
	if err != nil {
		return nil, err
	}

	fused := fuse(semanticHits, lexicalHits, analysis.DynamicAlpha)

	if opts.SimilarTo != "" {
		fused, err = e.intersectSimilar(ctx, fused, opts.SimilarTo, universe, inUniverse)
		if err != nil {
			return nil, err
		}
	}

	if len(fused) > strategy.TopKCandidates {
		fused = fused[:strategy.TopKCandidates]
	}

	reranked := false
	if strategy.UseReranker && e.reranker != nil {
		fused, reranked = e.rerank(ctx, rawQuery, fused)
	}

	if strategy.BoostPopularity > 0 && e.popularity != nil {
		fused = e.boostPopularity(fused, strategy.BoostPopularity)
	}

	if strategy.ApplyDiversity {
		fused = e.diversify(fused)
	}

	if opts.Sort != nil {
		spec := *opts.Sort
		sort.SliceStable(fused, func(i, j int) bool {
			return spec.Less(e.catalog.At(fused[i].id), e.catalog.At(fused[j].id))
		})
	}

	if len(fused) > limit {
		fused = fused[:limit]
	}

	result := &Result{Analysis: analysis, Reranked: reranked}
	result.Items = make([]ResultItem, len(fused))
	for i, c := range fused {
		result.Items[i] = ResultItem{
			Index:         c.id,
			Item:          e.catalog.At(c.id),
			SemanticScore: c.semantic,
			LexicalScore:  c.lexical,
			CombinedScore: c.combined,
		}
	}

	e.logger.Info("search_completed",
		"query", rawQuery,
		"intent", analysis.Intent.String(),
		"alpha", analysis.DynamicAlpha,
		"universe", len(universe),
		"results", len(result.Items),
		"reranked", reranked,
	)
	return result, nil
}

// seedText resolves the query to a canonical item within the universe and
// builds the retrieval seed. Unresolved queries fall back to the expanded
// query, never the raw text.
func (e *Engine) seedText(rawQuery, expandedQuery string, universe []int, inUniverse map[int]bool) string {
	idx, ok := e.resolveTitle(rawQuery, universe, inUniverse)
	if !ok {
		return expandedQuery
	}
	return itemSeedText(e.catalog.At(idx), expandedQuery)
}

// resolveTitle finds a canonical item for free text: exact case-insensitive
// title match first, fuzzy match above threshold second, both restricted to
// the universe.
func (e *Engine) resolveTitle(text string, universe []int, inUniverse map[int]bool) (int, bool) {
	if idx, ok := e.catalog.IndexOf(strings.TrimSpace(text)); ok && inUniverse[idx] {
		return idx, true
	}
	return e.catalog.BestMatchIn(text, universe, e.fuzzyThreshold)
}

// itemSeedText is the canonical retrieval text for an item.
func itemSeedText(it *catalog.Item, expandedQuery string) string {
	parts := make([]string, 0, 5)
	for _, p := range []string{it.Title, it.Genre, it.Description, it.Cast, expandedQuery} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// retrieve runs semantic and lexical retrieval in parallel over the same
// seed text and restricts both to the universe. Failures of either engine
// fail the request.
func (e *Engine) retrieve(ctx context.Context, seedText string,
	universeSize, limit int, inUniverse map[int]bool) (semantic, lexical []store.Hit, err error) {

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		vector, err := e.embedder.Embed(gctx, seedText)
		if err != nil {
			return err
		}
		// The vector index is not filter-aware: over-fetch, then discard
		// anything outside the universe.
		hits, err := e.vector.Search(gctx, vector, universeSize+e.candidateMargin)
		if err != nil {
			return err
		}
		for _, hit := range hits {
			if inUniverse[hit.ID] {
				semantic = append(semantic, hit)
			}
		}
		return nil
	})

	g.Go(func() error {
		hits, err := e.lexical.Search(gctx, seedText, e.catalog.Len())
		if err != nil {
			return err
		}
		keep := limit + e.lexicalExtra
		for _, hit := range hits {
			if !inUniverse[hit.ID] {
				continue
			}
			lexical = append(lexical, hit)
			if len(lexical) >= keep {
				break
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return semantic, lexical, nil
}

// intersectSimilar keeps only fused candidates that also appear near the
// similar-to item, preserving fused order. An empty intersection is a valid
// empty result.
func (e *Engine) intersectSimilar(ctx context.Context, fused []candidate,
	similarTo string, universe []int, inUniverse map[int]bool) ([]candidate, error) {

	// Same resolution as the main seed: canonical item text when the
	// reference resolves, synonym-expanded text when it does not.
	var seed string
	if idx, ok := e.resolveTitle(similarTo, universe, inUniverse); ok {
		seed = itemSeedText(e.catalog.At(idx), "")
	} else {
		seed = query.Expand(strings.ToLower(strings.TrimSpace(similarTo)))
	}

	vector, err := e.embedder.Embed(ctx, seed)
	if err != nil {
		return nil, err
	}
	hits, err := e.vector.Search(ctx, vector, len(universe)+e.candidateMargin)
	if err != nil {
		return nil, err
	}

	near := make(map[int]bool, len(hits))
	for _, hit := range hits {
		near[hit.ID] = true
	}

	kept := fused[:0]
	for _, c := range fused {
		if near[c.id] {
			kept = append(kept, c)
		}
	}
	return kept, nil
}

// rerank reorders candidates by cross-encoder score and folds that score into
// combined, so the later popularity re-sort ranks on top of the reranked
// order instead of reverting to the fused one. Any failure keeps the fused
// order and reports reranked=false; the request never fails here.
func (e *Engine) rerank(ctx context.Context, rawQuery string, fused []candidate) ([]candidate, bool) {
	if len(fused) == 0 {
		return fused, false
	}

	docs := make([]string, len(fused))
	for i, c := range fused {
		docs[i] = itemSeedText(e.catalog.At(c.id), "")
	}

	scores, err := e.reranker.Rerank(ctx, rawQuery, docs)
	if err != nil || len(scores) != len(fused) {
		e.logger.Warn("rerank_degraded",
			"query", rawQuery,
			"candidates", len(fused),
			"error", err,
		)
		return fused, false
	}

	order := make([]int, len(fused))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	reranked := make([]candidate, len(fused))
	for i, o := range order {
		reranked[i] = fused[o]
		reranked[i].combined = scores[o]
	}
	return reranked, true
}

// boostPopularity blends recent interaction popularity into combined scores:
// score += boost * popularity/maxPopularity. Failures to read popularity are
// logged and skipped; ranking must not depend on analytics availability.
func (e *Engine) boostPopularity(fused []candidate, boost float64) []candidate {
	scores, err := e.popularity.PopularityByTitle(e.popularityWindowDays)
	if err != nil {
		e.logger.Warn("popularity_boost_skipped", "error", err)
		return fused
	}
	if len(scores) == 0 {
		return fused
	}

	maxPop := 0.0
	for _, v := range scores {
		if v > maxPop {
			maxPop = v
		}
	}
	if maxPop == 0 {
		return fused
	}

	for i := range fused {
		title := strings.ToLower(e.catalog.At(fused[i].id).Title)
		if pop, ok := scores[title]; ok {
			fused[i].combined += boost * pop / maxPop
		}
	}
	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].combined > fused[j].combined
	})
	return fused
}

// diversify caps items sharing a primary genre at maxPerGenre, moving the
// overflow after everything that passed, otherwise preserving order.
func (e *Engine) diversify(fused []candidate) []candidate {
	counts := map[string]int{}
	kept := make([]candidate, 0, len(fused))
	var overflow []candidate

	for _, c := range fused {
		genre := primaryGenre(e.catalog.At(c.id).Genre)
		if genre != "" && counts[genre] >= maxPerGenre {
			overflow = append(overflow, c)
			continue
		}
		counts[genre]++
		kept = append(kept, c)
	}
	return append(kept, overflow...)
}

// primaryGenre is the first comma-separated genre, lower-cased.
func primaryGenre(genre string) string {
	first, _, _ := strings.Cut(genre, ",")
	return strings.ToLower(strings.TrimSpace(first))
}
