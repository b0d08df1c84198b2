package query

import (
	"log/slog"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// analysisCacheSize bounds the memoized analyses. Queries repeat heavily
// (pagination, refinement) and analysis is pure, so a small LRU covers most
// traffic.
const analysisCacheSize = 256

// Analyzer turns free text into an Analysis. Safe for concurrent use.
type Analyzer struct {
	cache  *lru.Cache[string, Analysis]
	logger *slog.Logger
}

// NewAnalyzer builds an analyzer. A nil logger disables logging.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cache, _ := lru.New[string, Analysis](analysisCacheSize)
	return &Analyzer{cache: cache, logger: logger}
}

// Analyze classifies the query and derives everything retrieval needs:
// intent, entities, expanded terms, and the fusion weight.
func (a *Analyzer) Analyze(rawQuery string) Analysis {
	if cached, ok := a.cache.Get(rawQuery); ok {
		return cached
	}

	normalized := strings.ToLower(strings.TrimSpace(rawQuery))

	intent, confidence := detectIntent(rawQuery, normalized)
	entities := extractEntities(rawQuery, normalized)
	expanded := Expand(normalized)
	alpha := dynamicAlpha(intent, entities)

	analysis := Analysis{
		OriginalQuery: rawQuery,
		Intent:        intent,
		Confidence:    confidence,
		ExpandedQuery: expanded,
		Entities:      entities,
		DynamicAlpha:  alpha,
	}

	a.logger.Debug("query_analyzed",
		"query", rawQuery,
		"intent", intent.String(),
		"confidence", confidence,
		"alpha", alpha,
	)

	a.cache.Add(rawQuery, analysis)
	return analysis
}

// detectIntent checks pattern groups in priority order against the
// normalized query, then falls back to capitalization and genre heuristics.
// The title heuristic needs the raw query because it keys off casing.
func detectIntent(rawQuery, normalized string) (Intent, float64) {
	for _, group := range intentPatterns {
		for _, pattern := range group.patterns {
			if pattern.MatchString(normalized) {
				return group.intent, 0.9
			}
		}
	}

	if titlePattern.MatchString(rawQuery) {
		return IntentSpecificTitle, 0.8
	}

	for _, genre := range browseGenres {
		if strings.Contains(normalized, genre) {
			return IntentGenreBrowse, 0.7
		}
	}

	return IntentVague, 0.5
}

// extractEntities pulls actors, genres, years, emotions, and episode bounds
// out of the query. Actor names are matched on the raw query since the
// pattern depends on capitalization.
func extractEntities(rawQuery, normalized string) Entities {
	var e Entities

	e.Actors = nil
	for _, m := range actorPattern.FindAllStringSubmatch(rawQuery, -1) {
		e.Actors = append(e.Actors, m[1])
	}

	for _, m := range yearPattern.FindAllString(normalized, -1) {
		year, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		e.Years = append(e.Years, year)
	}

	for _, genre := range entityGenres {
		if strings.Contains(normalized, genre) {
			e.Genres = append(e.Genres, genre)
		}
	}

	for _, emotion := range emotionTerms {
		if strings.Contains(normalized, emotion) {
			e.Emotions = append(e.Emotions, emotion)
		}
	}

	if m := maxEpisodesPattern.FindStringSubmatch(normalized); m != nil {
		e.MaxEpisodes, _ = strconv.Atoi(m[2])
	}
	if m := minEpisodesPattern.FindStringSubmatch(normalized); m != nil {
		e.MinEpisodes, _ = strconv.Atoi(m[2])
	}

	return e
}

// intentAlpha is the base semantic weight per intent. Specific lookups lean
// lexical; mood and vague queries lean semantic.
var intentAlpha = map[Intent]float64{
	IntentSpecificTitle:   0.3,
	IntentActorBased:      0.35,
	IntentYearBased:       0.5,
	IntentGenreBrowse:     0.65,
	IntentTopRated:        0.6,
	IntentEmotionBased:    0.85,
	IntentSimilarTo:       0.75,
	IntentTrending:        0.55,
	IntentConstraintBased: 0.6,
	IntentVague:           0.8,
}

const defaultAlpha = 0.7

// dynamicAlpha derives the fusion weight from the intent base, nudged by the
// entities present, and clamped to [0.2, 0.95].
func dynamicAlpha(intent Intent, entities Entities) float64 {
	alpha, ok := intentAlpha[intent]
	if !ok {
		alpha = defaultAlpha
	}

	if len(entities.Actors) > 0 {
		alpha -= 0.1
	}
	if len(entities.Years) > 0 {
		alpha -= 0.05
	}
	if len(entities.Emotions) > 0 {
		alpha += 0.1
	}

	return max(0.2, min(0.95, alpha))
}
