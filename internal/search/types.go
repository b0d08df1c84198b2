// Package search is the retrieval orchestrator: it turns an analyzed query
// into a ranked list of catalog items by fusing semantic and lexical
// retrieval, then applying the intent-selected rerank, popularity, and
// diversity passes.
package search

import (
	"github.com/hanbit/seoulmate/internal/catalog"
	"github.com/hanbit/seoulmate/internal/query"
)

// Options controls one search call.
type Options struct {
	// Limit is the number of results to return. Non-positive values use the
	// engine default.
	Limit int

	// Filters narrow the candidate universe before retrieval.
	Filters catalog.FilterSpec

	// SimilarTo restricts results to items semantically near this title.
	SimilarTo string

	// Sort overrides the fused order with an explicit field sort.
	Sort *catalog.SortSpec
}

// ResultItem is one ranked item with its score breakdown.
type ResultItem struct {
	Index int           `json:"index"`
	Item  *catalog.Item `json:"item"`

	SemanticScore float64 `json:"semantic_score"`
	LexicalScore  float64 `json:"lexical_score"`
	CombinedScore float64 `json:"combined_score"`
}

// Result is the outcome of one search.
type Result struct {
	Items    []ResultItem   `json:"items"`
	Analysis query.Analysis `json:"analysis"`

	// Reranked reports whether cross-encoder scores shaped the served order
	// (later passes may still blend popularity on top). False either because
	// the strategy skipped reranking or because the reranker failed and the
	// fused order was kept.
	Reranked bool `json:"reranked"`

	// NoMatches marks the filters having eliminated every catalog item.
	// This is a first-class outcome: no retrieval was attempted.
	NoMatches bool `json:"no_matches"`
}

// Titles returns the result titles in rank order.
func (r *Result) Titles() []string {
	titles := make([]string, len(r.Items))
	for i, item := range r.Items {
		titles[i] = item.Item.Title
	}
	return titles
}

// PopularitySource supplies recent interaction popularity keyed by
// lower-cased title. The analytics store implements it; the engine only
// consumes the port so ranking never depends on the analytics package.
type PopularitySource interface {
	PopularityByTitle(days int) (map[string]float64, error)
}
