// Package embed produces dense vectors for catalog items and queries.
//
// Two providers exist: a deterministic in-process hashing embedder that needs
// no external service, and an HTTP client for a local embedding server. Both
// sit behind the Embedder interface; the cached wrapper memoizes either.
package embed

import (
	"context"
	"math"
	"time"
)

const (
	// DefaultDimensions is the vector width of the default model.
	DefaultDimensions = 384

	// DefaultTimeout bounds a single HTTP embedding request.
	DefaultTimeout = 30 * time.Second

	// DefaultCacheSize is the default entry count for the cached wrapper.
	DefaultCacheSize = 128
)

// Embedder turns text into a fixed-dimension vector.
type Embedder interface {
	// Embed returns the vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds texts in order. Result length equals input length.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector width this embedder produces.
	Dimensions() int

	// Close releases provider resources.
	Close() error
}

// normalizeVector scales a vector to unit length. Zero vectors pass through
// unchanged.
func normalizeVector(vector []float32) []float32 {
	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vector
	}
	norm := float32(math.Sqrt(sum))
	for i := range vector {
		vector[i] /= norm
	}
	return vector
}
