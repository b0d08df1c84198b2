// Package query analyzes free-text search queries: it classifies intent,
// extracts entities, expands terms with synonyms, and derives the
// semantic/lexical blend weight used downstream for score fusion.
package query

// Intent classifies what the user is looking for. It drives both the fusion
// weight and the retrieval strategy.
type Intent string

const (
	IntentSimilarTo       Intent = "similar_to"
	IntentGenreBrowse     Intent = "genre_browse"
	IntentActorBased      Intent = "actor_based"
	IntentTopRated        Intent = "top_rated"
	IntentYearBased       Intent = "year_based"
	IntentEmotionBased    Intent = "emotion_based"
	IntentConstraintBased Intent = "constraint"
	IntentTrending        Intent = "trending"
	IntentVague           Intent = "vague"
	IntentSpecificTitle   Intent = "specific_title"
)

// String implements fmt.Stringer.
func (i Intent) String() string { return string(i) }

// Entities are the structured fragments pulled out of a query.
type Entities struct {
	Actors   []string
	Genres   []string
	Years    []int
	Emotions []string

	// Episode bounds from constraint phrases ("under 10 episodes").
	// Zero means unset.
	MaxEpisodes int
	MinEpisodes int
}

// Analysis is the full result of analyzing one query.
type Analysis struct {
	OriginalQuery string
	Intent        Intent
	Confidence    float64
	ExpandedQuery string
	Entities      Entities

	// DynamicAlpha is the semantic weight for score fusion, in [0.2, 0.95].
	// 1.0 would be all semantic, 0.0 all lexical.
	DynamicAlpha float64
}
