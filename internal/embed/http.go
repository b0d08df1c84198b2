package embed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	serrors "github.com/hanbit/seoulmate/internal/errors"
)

// HTTPEmbedder talks to an Ollama-compatible embedding server.
type HTTPEmbedder struct {
	endpoint   string
	model      string
	dimensions int
	client     *http.Client
}

// HTTPOption configures an HTTPEmbedder.
type HTTPOption func(*HTTPEmbedder)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(e *HTTPEmbedder) { e.client = client }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(e *HTTPEmbedder) { e.client.Timeout = timeout }
}

// NewHTTPEmbedder creates a client for the given endpoint and model.
func NewHTTPEmbedder(endpoint, model string, dimensions int, opts ...HTTPOption) *HTTPEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	e := &HTTPEmbedder{
		endpoint:   endpoint,
		model:      model,
		dimensions: dimensions,
		client:     &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed returns the vector for a single text.
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in one request.
func (e *HTTPEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(embedRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, serrors.EmbeddingError("encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, serrors.EmbeddingError("build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, serrors.EmbeddingError("embedding server unreachable", err).
			WithDetail("endpoint", e.endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, serrors.EmbeddingError(
			fmt.Sprintf("embedding server returned %d", resp.StatusCode), nil).
			WithDetail("body", string(data))
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, serrors.EmbeddingError("decode response", err)
	}
	if len(parsed.Embeddings) != len(texts) {
		return nil, serrors.EmbeddingError(
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(parsed.Embeddings)), nil)
	}

	for i, vector := range parsed.Embeddings {
		parsed.Embeddings[i] = normalizeVector(vector)
	}
	return parsed.Embeddings, nil
}

// Dimensions returns the configured vector width.
func (e *HTTPEmbedder) Dimensions() int { return e.dimensions }

// Close is a no-op; the HTTP client holds no resources worth releasing.
func (e *HTTPEmbedder) Close() error { return nil }

var _ Embedder = (*HTTPEmbedder)(nil)
