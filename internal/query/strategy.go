package query

// Strategy tunes the retrieval pipeline per intent.
type Strategy struct {
	// UseReranker enables the cross-encoder rerank stage.
	UseReranker bool
	// TopKCandidates is how many fused candidates feed post-processing.
	TopKCandidates int
	// ApplyDiversity caps over-represented genres in the final list.
	ApplyDiversity bool
	// BoostPopularity blends recent interaction popularity into scores;
	// 0 disables the boost.
	BoostPopularity float64
}

var strategies = map[Intent]Strategy{
	IntentSpecificTitle: {UseReranker: false, TopKCandidates: 20, ApplyDiversity: false, BoostPopularity: 0},
	IntentActorBased:    {UseReranker: true, TopKCandidates: 50, ApplyDiversity: true, BoostPopularity: 0.1},
	IntentTopRated:      {UseReranker: true, TopKCandidates: 100, ApplyDiversity: true, BoostPopularity: 0.2},
	IntentEmotionBased:  {UseReranker: true, TopKCandidates: 80, ApplyDiversity: true, BoostPopularity: 0.05},
	IntentVague:         {UseReranker: true, TopKCandidates: 100, ApplyDiversity: true, BoostPopularity: 0.3},
	IntentTrending:      {UseReranker: false, TopKCandidates: 50, ApplyDiversity: true, BoostPopularity: 0.5},
}

var defaultStrategy = Strategy{
	UseReranker:     true,
	TopKCandidates:  50,
	ApplyDiversity:  true,
	BoostPopularity: 0.1,
}

// StrategyFor returns the retrieval strategy for an intent.
func StrategyFor(intent Intent) Strategy {
	if s, ok := strategies[intent]; ok {
		return s
	}
	return defaultStrategy
}
