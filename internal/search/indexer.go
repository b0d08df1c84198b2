package search

import (
	"context"

	"github.com/hanbit/seoulmate/internal/catalog"
	"github.com/hanbit/seoulmate/internal/embed"
	"github.com/hanbit/seoulmate/internal/store"
)

// BuildIndexes embeds every catalog item and constructs both retrieval
// indexes. Run once at startup; the catalog is fixed for the process life.
func BuildIndexes(ctx context.Context, c *catalog.Catalog, embedder embed.Embedder) (*store.VectorIndex, *store.LexicalIndex, error) {
	texts := make([]string, c.Len())
	for i := 0; i < c.Len(); i++ {
		texts[i] = itemSeedText(c.At(i), "")
	}

	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, nil, err
	}

	vectorIndex := store.NewVectorIndex(embedder.Dimensions())
	for i, vector := range vectors {
		if err := vectorIndex.Add(i, vector); err != nil {
			return nil, nil, err
		}
	}

	lexicalIndex, err := store.NewLexicalIndex(c)
	if err != nil {
		return nil, nil, err
	}

	return vectorIndex, lexicalIndex, nil
}
