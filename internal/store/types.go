// Package store holds the two retrieval indexes: an HNSW vector index for
// semantic search and an in-memory bleve index for lexical search. Both key
// documents by catalog position so results join back to items without string
// lookups.
package store

import "context"

// Hit is one retrieval result: a catalog index and its engine-native score.
// Vector scores are cosine similarities mapped to [0,1]; lexical scores are
// unbounded tf-idf values normalized later at fusion time.
type Hit struct {
	ID    int
	Score float64
}

// VectorSearcher is the semantic retrieval surface.
type VectorSearcher interface {
	Search(ctx context.Context, vector []float32, k int) ([]Hit, error)
}

// LexicalSearcher is the keyword retrieval surface.
type LexicalSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]Hit, error)
}
