package search

import (
	"sort"

	"github.com/hanbit/seoulmate/internal/store"
)

// candidate is a catalog index with its per-source and fused scores.
type candidate struct {
	id       int
	semantic float64
	lexical  float64
	combined float64
}

// fuse combines semantic and lexical hits into one ranking:
//
//	combined = alpha*semantic + (1-alpha)*(lexical/maxLexical)
//
// Lexical scores are unbounded, so they normalize against the batch maximum
// (treated as 1 when the batch is empty or all-zero). A candidate missing
// from one source contributes 0 for that term. Ties in combined score keep
// catalog order.
func fuse(semantic, lexical []store.Hit, alpha float64) []candidate {
	byID := map[int]*candidate{}

	for _, hit := range semantic {
		byID[hit.ID] = &candidate{id: hit.ID, semantic: hit.Score}
	}

	maxLexical := 0.0
	for _, hit := range lexical {
		if hit.Score > maxLexical {
			maxLexical = hit.Score
		}
	}
	if maxLexical == 0 {
		maxLexical = 1
	}
	for _, hit := range lexical {
		c, ok := byID[hit.ID]
		if !ok {
			c = &candidate{id: hit.ID}
			byID[hit.ID] = c
		}
		c.lexical = hit.Score
	}

	fused := make([]candidate, 0, len(byID))
	for _, c := range byID {
		c.combined = alpha*c.semantic + (1-alpha)*(c.lexical/maxLexical)
		fused = append(fused, *c)
	}

	// Catalog order first so the stable sort breaks score ties by catalog
	// position.
	sort.Slice(fused, func(i, j int) bool { return fused[i].id < fused[j].id })
	sort.SliceStable(fused, func(i, j int) bool { return fused[i].combined > fused[j].combined })
	return fused
}
