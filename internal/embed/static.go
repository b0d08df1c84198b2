package embed

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"
	"sync"

	serrors "github.com/hanbit/seoulmate/internal/errors"
)

// StaticEmbedder generates embeddings with a hash-based scheme. It needs no
// network or model download and is fully deterministic, at the cost of
// semantic quality. Suitable for tests and offline deployments.
type StaticEmbedder struct {
	mu         sync.RWMutex
	closed     bool
	dimensions int
}

// Weights for vector generation. Whole tokens carry most of the signal;
// character trigrams add tolerance for misspelled titles and names.
const (
	tokenWeight = 0.7
	ngramWeight = 0.3
	ngramSize   = 3
)

// stopWords are high-frequency terms that carry no ranking signal for a
// drama catalog.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "in": true, "on": true, "to": true, "with": true,
	"drama": true, "series": true, "show": true, "watch": true,
}

// tokenRegex matches alphanumeric runs.
var tokenRegex = regexp.MustCompile(`[a-zA-Z0-9]+`)

// NewStaticEmbedder creates a static embedder producing vectors of the given
// width. Non-positive dimensions fall back to the default.
func NewStaticEmbedder(dimensions int) *StaticEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &StaticEmbedder{dimensions: dimensions}
}

// Embed generates the embedding for a single text.
func (e *StaticEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil, serrors.EmbeddingError("embedder is closed", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, serrors.EmbeddingError("context canceled", err)
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return make([]float32, e.dimensions), nil
	}

	return normalizeVector(e.generateVector(trimmed)), nil
}

// EmbedBatch embeds texts in order.
func (e *StaticEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}
	return vectors, nil
}

// Dimensions returns the vector width.
func (e *StaticEmbedder) Dimensions() int { return e.dimensions }

// Close marks the embedder closed; further Embed calls fail.
func (e *StaticEmbedder) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	return nil
}

func (e *StaticEmbedder) generateVector(text string) []float32 {
	vector := make([]float32, e.dimensions)

	lowered := strings.ToLower(text)
	for _, token := range tokenRegex.FindAllString(lowered, -1) {
		if stopWords[token] {
			continue
		}
		vector[hashToIndex(token, e.dimensions)] += tokenWeight
	}

	for _, ngram := range extractNgrams(lowered, ngramSize) {
		vector[hashToIndex(ngram, e.dimensions)] += ngramWeight
	}

	return vector
}

func extractNgrams(text string, n int) []string {
	runes := []rune(strings.Join(strings.Fields(text), " "))
	if len(runes) < n {
		return nil
	}
	ngrams := make([]string, 0, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		ngrams = append(ngrams, string(runes[i:i+n]))
	}
	return ngrams
}

func hashToIndex(s string, dimensions int) int {
	h := fnv.New32a()
	h.Write([]byte(s))
	return int(h.Sum32() % uint32(dimensions))
}

var _ Embedder = (*StaticEmbedder)(nil)
