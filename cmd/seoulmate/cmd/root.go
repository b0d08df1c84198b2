// Package cmd provides the CLI commands for SeoulMate.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hanbit/seoulmate/internal/analytics"
	"github.com/hanbit/seoulmate/internal/catalog"
	"github.com/hanbit/seoulmate/internal/config"
	"github.com/hanbit/seoulmate/internal/embed"
	"github.com/hanbit/seoulmate/internal/logging"
	"github.com/hanbit/seoulmate/internal/query"
	"github.com/hanbit/seoulmate/internal/search"
	"github.com/hanbit/seoulmate/pkg/version"
)

var (
	configPath string
	debugMode  bool
)

// NewRootCmd creates the root command for the seoulmate CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seoulmate",
		Short: "Hybrid search and recommendations over a K-drama catalog",
		Long: `SeoulMate recommends titles from a fixed catalog by fusing semantic
similarity, keyword matching, and intent-aware reranking.

It also records search and interaction events and reports popularity,
trending queries, and per-user stats from them.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("seoulmate version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (YAML)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newInteractCmd())
	cmd.AddCommand(newPopularCmd())
	cmd.AddCommand(newTrendingCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newSummaryCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().ExecuteContext(context.Background())
}

// app bundles everything a command needs at runtime.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	analytics *analytics.Store
	cleanup   func()
}

// newApp loads config and sets up logging and the analytics store.
func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.FilePath = cfg.Logging.FilePath
	if debugMode {
		logCfg.Level = "debug"
	}
	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, err
	}

	store, err := analytics.NewStore(cfg.Analytics.Dir, logger)
	if err != nil {
		cleanup()
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, analytics: store, cleanup: cleanup}, nil
}

// newEngine loads the catalog, builds both retrieval indexes, and wires the
// search engine. Index construction is in-memory and runs on every
// invocation; the catalog is small enough that this stays fast.
func (a *app) newEngine(ctx context.Context) (*search.Engine, func(), error) {
	cat, err := catalog.Load(a.cfg.Catalog.Path)
	if err != nil {
		return nil, nil, err
	}

	embedder, err := embed.FromConfig(a.cfg.Embeddings)
	if err != nil {
		return nil, nil, err
	}

	vectorIndex, lexicalIndex, err := search.BuildIndexes(ctx, cat, embedder)
	if err != nil {
		embedder.Close()
		return nil, nil, err
	}

	opts := []search.EngineOption{
		search.WithLogger(a.logger),
		search.WithPopularitySource(a.analytics),
		search.WithLimits(a.cfg.Search.DefaultLimit, a.cfg.Search.MaxLimit),
		search.WithCandidateMargin(a.cfg.Search.CandidateMargin),
		search.WithFuzzyThreshold(a.cfg.Search.FuzzyThreshold),
		search.WithPopularityWindow(a.cfg.Search.PopularityWindowDays),
	}
	if a.cfg.Reranker.Enabled {
		opts = append(opts, search.WithReranker(
			search.NewHTTPReranker(a.cfg.Reranker.Endpoint, a.cfg.Reranker.Model,
				search.WithRerankerTimeout(a.cfg.Reranker.Timeout))))
	}

	engine := search.NewEngine(cat, query.NewAnalyzer(a.logger), embedder,
		vectorIndex, lexicalIndex, opts...)

	release := func() {
		embedder.Close()
		lexicalIndex.Close()
	}
	return engine, release, nil
}

func fail(err error) error {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return err
}
