package search

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	serrors "github.com/hanbit/seoulmate/internal/errors"
)

// Reranker scores documents against a query with a more expensive relevance
// model. Scores come back in input order; higher is more relevant.
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string) ([]float64, error)
}

// NoOpReranker returns a flat score for every document, leaving the incoming
// order untouched after a stable re-sort. Useful as a stand-in when no
// cross-encoder is deployed.
type NoOpReranker struct{}

// Rerank implements Reranker.
func (NoOpReranker) Rerank(_ context.Context, _ string, documents []string) ([]float64, error) {
	return make([]float64, len(documents)), nil
}

var _ Reranker = NoOpReranker{}

// defaultRerankTimeout bounds one rerank round trip. Failures degrade to the
// fused order, so the bound keeps a stuck reranker from stalling requests.
const defaultRerankTimeout = 10 * time.Second

// HTTPReranker calls an external cross-encoder service.
type HTTPReranker struct {
	endpoint string
	model    string
	client   *http.Client
}

// HTTPRerankerOption configures an HTTPReranker.
type HTTPRerankerOption func(*HTTPReranker)

// WithRerankerClient overrides the HTTP client, mainly for tests.
func WithRerankerClient(client *http.Client) HTTPRerankerOption {
	return func(r *HTTPReranker) { r.client = client }
}

// WithRerankerTimeout sets the per-request timeout.
func WithRerankerTimeout(timeout time.Duration) HTTPRerankerOption {
	return func(r *HTTPReranker) { r.client.Timeout = timeout }
}

// NewHTTPReranker creates a client for the given endpoint and model.
func NewHTTPReranker(endpoint, model string, opts ...HTTPRerankerOption) *HTTPReranker {
	r := &HTTPReranker{
		endpoint: endpoint,
		model:    model,
		client:   &http.Client{Timeout: defaultRerankTimeout},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResponse struct {
	Scores []float64 `json:"scores"`
}

// Rerank implements Reranker.
func (r *HTTPReranker) Rerank(ctx context.Context, queryText string, documents []string) ([]float64, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(rerankRequest{Model: r.model, Query: queryText, Documents: documents})
	if err != nil {
		return nil, serrors.New(serrors.ErrCodeRerankFailed, "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, serrors.New(serrors.ErrCodeRerankFailed, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, serrors.New(serrors.ErrCodeRerankFailed, "reranker unreachable", err).
			WithDetail("endpoint", r.endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, serrors.Newf(serrors.ErrCodeRerankFailed, "reranker returned %d", resp.StatusCode)
	}

	var parsed rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, serrors.New(serrors.ErrCodeRerankFailed, "decode response", err)
	}
	if len(parsed.Scores) != len(documents) {
		return nil, serrors.New(serrors.ErrCodeRerankFailed,
			fmt.Sprintf("expected %d scores, got %d", len(documents), len(parsed.Scores)), nil)
	}
	return parsed.Scores, nil
}

// Available probes the service health endpoint.
func (r *HTTPReranker) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

var _ Reranker = (*HTTPReranker)(nil)
