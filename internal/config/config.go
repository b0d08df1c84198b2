// Package config loads and validates SeoulMate configuration.
// Precedence: built-in defaults < YAML file < environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable overrides.
const (
	EnvCatalogPath  = "SEOULMATE_CATALOG_PATH"
	EnvAnalyticsDir = "SEOULMATE_ANALYTICS_DIR"
	EnvLogLevel     = "SEOULMATE_LOG_LEVEL"
	EnvFuzzyCutoff  = "SEOULMATE_FUZZY_THRESHOLD"
)

// Config represents the complete SeoulMate configuration.
type Config struct {
	Catalog    CatalogConfig    `yaml:"catalog" json:"catalog"`
	Search     SearchConfig     `yaml:"search" json:"search"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Reranker   RerankerConfig   `yaml:"reranker" json:"reranker"`
	Analytics  AnalyticsConfig  `yaml:"analytics" json:"analytics"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

// CatalogConfig configures catalog loading.
type CatalogConfig struct {
	// Path is the scraped-metadata JSON file holding the full catalog.
	Path string `yaml:"path" json:"path"`
}

// SearchConfig configures the retrieval orchestrator.
type SearchConfig struct {
	// DefaultLimit is the default number of recommendations (default: 5).
	DefaultLimit int `yaml:"default_limit" json:"default_limit"`

	// MaxLimit is the maximum allowed recommendations (default: 50).
	MaxLimit int `yaml:"max_limit" json:"max_limit"`

	// CandidateMargin is the extra k requested from the vector index on top
	// of the filtered-universe size. The index is not filter-aware, so the
	// margin absorbs out-of-universe hits that get discarded (default: 50).
	CandidateMargin int `yaml:"candidate_margin" json:"candidate_margin"`

	// LexicalExtra is the slack added to topN when taking lexical candidates
	// (default: 20).
	LexicalExtra int `yaml:"lexical_extra" json:"lexical_extra"`

	// FuzzyThreshold is the 0-100 similarity a fuzzy title match must clear
	// to count as a resolution (default: 70).
	FuzzyThreshold float64 `yaml:"fuzzy_threshold" json:"fuzzy_threshold"`

	// PopularityWindowDays is the lookback window for the popularity boost
	// (default: 7).
	PopularityWindowDays int `yaml:"popularity_window_days" json:"popularity_window_days"`
}

// Embedding provider names accepted by EmbeddingsConfig.Provider.
const (
	ProviderStatic = "static"
	ProviderHTTP   = "http"
)

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider selects the embedder: "static" (offline, deterministic) or
	// "http" (external embedding server).
	Provider string `yaml:"provider" json:"provider"`

	// Endpoint is the HTTP embedding server base URL (http provider only).
	Endpoint string `yaml:"endpoint" json:"endpoint"`

	// Model is the model name sent to the HTTP provider.
	Model string `yaml:"model" json:"model"`

	// Dimensions is the embedding vector length (default: 384).
	Dimensions int `yaml:"dimensions" json:"dimensions"`

	// CacheSize bounds the query-embedding LRU cache (default: 128).
	CacheSize int `yaml:"cache_size" json:"cache_size"`

	// Timeout is the per-request timeout for the HTTP provider (default: 30s).
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// RerankerConfig configures the optional cross-encoder reranker.
type RerankerConfig struct {
	// Enabled toggles reranking globally; intent strategy can still skip it.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Endpoint is the cross-encoder server base URL.
	Endpoint string `yaml:"endpoint" json:"endpoint"`

	// Model is the cross-encoder model name.
	Model string `yaml:"model" json:"model"`

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// AnalyticsConfig configures the event store.
type AnalyticsConfig struct {
	// Dir is the directory holding the append-only event logs and the user
	// stats document (default: analytics_data).
	Dir string `yaml:"dir" json:"dir"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	FilePath string `yaml:"file" json:"file"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Path: "data/catalog.json",
		},
		Search: SearchConfig{
			DefaultLimit:         5,
			MaxLimit:             50,
			CandidateMargin:      50,
			LexicalExtra:         20,
			FuzzyThreshold:       70,
			PopularityWindowDays: 7,
		},
		Embeddings: EmbeddingsConfig{
			Provider:   "static",
			Dimensions: 384,
			CacheSize:  128,
			Timeout:    30 * time.Second,
		},
		Reranker: RerankerConfig{
			Enabled: false,
			Timeout: 30 * time.Second,
		},
		Analytics: AnalyticsConfig{
			Dir: "analytics_data",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads config from path, layering it over defaults and applying
// environment overrides. A missing file is not an error: defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variables on top of file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvCatalogPath); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv(EnvAnalyticsDir); v != "" {
		cfg.Analytics.Dir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvFuzzyCutoff); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Search.FuzzyThreshold = f
		}
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Search.DefaultLimit <= 0 {
		return fmt.Errorf("search.default_limit must be positive, got %d", c.Search.DefaultLimit)
	}
	if c.Search.MaxLimit < c.Search.DefaultLimit {
		return fmt.Errorf("search.max_limit (%d) must be >= default_limit (%d)",
			c.Search.MaxLimit, c.Search.DefaultLimit)
	}
	if c.Search.FuzzyThreshold < 0 || c.Search.FuzzyThreshold > 100 {
		return fmt.Errorf("search.fuzzy_threshold must be in [0,100], got %g", c.Search.FuzzyThreshold)
	}
	if c.Embeddings.Dimensions <= 0 {
		return fmt.Errorf("embeddings.dimensions must be positive, got %d", c.Embeddings.Dimensions)
	}
	switch c.Embeddings.Provider {
	case ProviderStatic, ProviderHTTP:
	default:
		return fmt.Errorf("embeddings.provider must be static or http, got %q", c.Embeddings.Provider)
	}
	if c.Embeddings.Provider == ProviderHTTP && c.Embeddings.Endpoint == "" {
		return fmt.Errorf("embeddings.endpoint is required for the http provider")
	}
	if c.Reranker.Enabled && c.Reranker.Endpoint == "" {
		return fmt.Errorf("reranker.endpoint is required when reranker.enabled is true")
	}
	return nil
}

// Save writes the config to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
