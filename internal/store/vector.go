package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/coder/hnsw"

	serrors "github.com/hanbit/seoulmate/internal/errors"
)

// HNSW construction parameters. The catalog is small (thousands of items) so
// the defaults favor recall over build speed.
const (
	hnswM        = 16
	hnswEfSearch = 100
)

// VectorIndex is an in-memory HNSW graph over item embeddings, keyed by
// catalog position.
type VectorIndex struct {
	mu         sync.RWMutex
	graph      *hnsw.Graph[uint64]
	dimensions int
}

// NewVectorIndex creates an empty index for vectors of the given width.
func NewVectorIndex(dimensions int) *VectorIndex {
	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = hnswM
	graph.EfSearch = hnswEfSearch
	return &VectorIndex{graph: graph, dimensions: dimensions}
}

// Add inserts or replaces the vector for a catalog index.
func (idx *VectorIndex) Add(id int, vector []float32) error {
	if len(vector) != idx.dimensions {
		return serrors.RetrievalError(
			fmt.Sprintf("vector has %d dimensions, index expects %d", len(vector), idx.dimensions), nil)
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.graph.Add(hnsw.MakeNode(uint64(id), vector))
	return nil
}

// Search returns the k nearest items by cosine similarity, best first.
// Scores map cosine distance onto [0,1] where 1 is identical.
func (idx *VectorIndex) Search(ctx context.Context, vector []float32, k int) ([]Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, serrors.RetrievalError("context canceled", err)
	}
	if len(vector) != idx.dimensions {
		return nil, serrors.RetrievalError(
			fmt.Sprintf("query vector has %d dimensions, index expects %d", len(vector), idx.dimensions), nil)
	}
	if k <= 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	nodes := idx.graph.Search(vector, k)
	hits := make([]Hit, 0, len(nodes))
	for _, node := range nodes {
		// Cosine distance is in [0,2]; fold it to a [0,1] similarity.
		distance := hnsw.CosineDistance(vector, node.Value)
		hits = append(hits, Hit{
			ID:    int(node.Key),
			Score: 1 - float64(distance)/2,
		})
	}
	return hits, nil
}

// Len returns the number of indexed vectors.
func (idx *VectorIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.graph.Len()
}

var _ VectorSearcher = (*VectorIndex)(nil)
