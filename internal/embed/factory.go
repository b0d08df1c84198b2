package embed

import (
	"fmt"

	"github.com/hanbit/seoulmate/internal/config"
)

// FromConfig builds the configured embedder provider, wrapped in a cache.
func FromConfig(cfg config.EmbeddingsConfig) (Embedder, error) {
	var inner Embedder
	switch cfg.Provider {
	case config.ProviderStatic, "":
		inner = NewStaticEmbedder(cfg.Dimensions)
	case config.ProviderHTTP:
		inner = NewHTTPEmbedder(cfg.Endpoint, cfg.Model, cfg.Dimensions,
			WithTimeout(cfg.Timeout))
	default:
		return nil, fmt.Errorf("unknown embeddings provider %q", cfg.Provider)
	}
	return NewCachedEmbedder(inner, cfg.CacheSize), nil
}
