package catalog

import (
	"strings"

	"github.com/xrash/smetrics"
)

// BestMatch fuzzily resolves a free-text reference against catalog titles.
// Scores are Jaro-Winkler similarity scaled to 0..100; matches below
// threshold are rejected. Exact (case-insensitive) lookups should go through
// IndexOf first; this is the fallback for misspellings and partial titles.
func (c *Catalog) BestMatch(reference string, threshold float64) (int, bool) {
	all := make([]int, c.Len())
	for i := range all {
		all[i] = i
	}
	return c.BestMatchIn(reference, all, threshold)
}

// BestMatchIn is BestMatch restricted to the given catalog indices.
func (c *Catalog) BestMatchIn(reference string, indices []int, threshold float64) (int, bool) {
	ref := strings.ToLower(strings.TrimSpace(reference))
	if ref == "" {
		return 0, false
	}
	bestIdx, bestScore := -1, 0.0
	for _, i := range indices {
		title := strings.ToLower(c.items[i].Title)
		score := smetrics.JaroWinkler(ref, title, 0.7, 4) * 100
		// Threshold is inclusive; ties keep the earliest catalog entry.
		if score >= threshold && (bestIdx < 0 || score > bestScore) {
			bestIdx, bestScore = i, score
		}
	}
	if bestIdx < 0 {
		return 0, false
	}
	return bestIdx, true
}
