package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ersonp/diagnostics-tracker/internal/application/handlers"
	"github.com/ersonp/diagnostics-tracker/internal/domain/ports"
	"github.com/ersonp/diagnostics-tracker/internal/domain/services"
	"github.com/ersonp/diagnostics-tracker/internal/infrastructure/config"
	embedder "github.com/ersonp/diagnostics-tracker/internal/infrastructure/embedder/openai"
	llm "github.com/ersonp/diagnostics-tracker/internal/infrastructure/llm/openai"
	"github.com/ersonp/diagnostics-tracker/internal/infrastructure/newsapi"
	"github.com/ersonp/diagnostics-tracker/internal/infrastructure/relationaldb/sqlite"
	"github.com/ersonp/diagnostics-tracker/internal/infrastructure/vectordb/qdrant"
	"github.com/ersonp/diagnostics-tracker/internal/logging"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config         *config.Config
	Logger         *zap.SugaredLogger
	StartupHandler *handlers.StartupHandler
	ReviewHandler  *handlers.ReviewHandler

	basePath string
	db       *sqlite.Repository
	queue    *services.ReviewQueue
	closers  []func() error
}

// RefreshOverrides adjusts a refresh run from command flags.
type RefreshOverrides struct {
	LookbackDays int
	FixturePath  string
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically.
func withDeps(ctx context.Context, fn func(*Deps) error) error {
	base, err := basePath()
	if err != nil {
		return err
	}

	cfg, err := config.Load(base)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := sqlite.NewRepository(cfg.SQLitePath(base))
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	queue := services.NewReviewQueue(services.ReviewStores{
		Reviews:  db,
		Registry: db,
		History:  db,
		Audit:    db,
		Tx:       db,
	}, logger.Named("review"))

	deps := &Deps{
		Config:         cfg,
		Logger:         logger,
		StartupHandler: handlers.NewStartupHandler(services.NewStartupService(db, db, db)),
		ReviewHandler:  handlers.NewReviewHandler(queue, cfg.Review.Reviewer),
		basePath:       base,
		db:             db,
		queue:          queue,
	}
	defer deps.close()

	return fn(deps)
}

// newLogger builds the logger from config, with global flags taking precedence.
func newLogger(cfg *config.Config) (*zap.SugaredLogger, error) {
	level := cfg.Logging.Level
	if globalLogLevel != "" {
		level = globalLogLevel
	}
	logger, err := logging.New(logging.Options{
		Level: level,
		JSON:  cfg.Logging.JSON || globalLogJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return logger, nil
}

func (d *Deps) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		_ = d.closers[i]()
	}
}

// RefreshHandler builds the discovery pipeline. Collaborators that need
// credentials are only created here, so read-only commands work without them.
func (d *Deps) RefreshHandler(ctx context.Context, o RefreshOverrides) (*handlers.RefreshHandler, error) {
	cfg := d.Config

	source, err := d.newsSource(o.FixturePath)
	if err != nil {
		return nil, err
	}

	extractor, err := d.extractor()
	if err != nil {
		return nil, err
	}

	filter, err := d.evidenceFilter(ctx)
	if err != nil {
		return nil, err
	}

	lookback := cfg.Refresh.LookbackDays
	if o.LookbackDays > 0 {
		lookback = o.LookbackDays
	}

	resolver := services.NewResolver(services.ResolverOptions{
		DecreaseTolerance:    cfg.Resolver.DecreaseTolerance,
		MaterialityThreshold: cfg.Resolver.Materiality,
	})

	svc := services.NewRefreshService(d.db, source, extractor, resolver, d.queue, d.db, filter,
		services.RefreshOptions{LookbackDays: lookback, Pause: cfg.Refresh.Pause},
		d.Logger.Named("refresh"))

	return handlers.NewRefreshHandler(svc), nil
}

func (d *Deps) newsSource(fixtureOverride string) (ports.NewsSource, error) {
	cfg := d.Config.News
	if fixtureOverride != "" {
		cfg.Provider = config.ProviderFixture
		cfg.FixturePath = fixtureOverride
	}

	if cfg.Provider == config.ProviderFixture {
		src, err := newsapi.NewFixtureSource(cfg.FixturePath)
		if err != nil {
			return nil, fmt.Errorf("loading news fixture: %w", err)
		}
		return src, nil
	}

	client, err := newsapi.NewClient(cfg, d.Logger.Named("newsapi"))
	if err != nil {
		return nil, fmt.Errorf("creating news client: %w", err)
	}
	return client, nil
}

func (d *Deps) extractor() (services.Extractor, error) {
	cfg := d.Config
	rules := services.NewRuleExtractor()
	if !cfg.NeedsLLM() {
		return rules, nil
	}

	client, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("creating llm client: %w", err)
	}
	llmExtractor := services.NewLLMExtractor(client, d.Logger.Named("llm"))

	if cfg.Extractor.Strategy == config.StrategyChain {
		return services.NewChainExtractor(rules, llmExtractor), nil
	}
	return llmExtractor, nil
}

// evidenceFilter returns nil unless semantic dedup is enabled.
func (d *Deps) evidenceFilter(ctx context.Context) (services.EvidenceFilter, error) {
	cfg := d.Config
	if !cfg.Evidence.Dedup {
		return nil, nil
	}

	emb, err := embedder.NewEmbedder(cfg.Embedder)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	index, err := qdrant.NewRepository(cfg.Qdrant)
	if err != nil {
		return nil, fmt.Errorf("creating qdrant repository: %w", err)
	}
	d.closers = append(d.closers, index.Close)

	if err := index.EnsureCollection(ctx, embedder.VectorSize); err != nil {
		d.Logger.Warnw("Evidence index unavailable, dedup disabled", "error", err)
		return nil, nil
	}

	return services.NewSemanticEvidenceFilter(emb, index, cfg.Evidence.Similarity, d.Logger.Named("evidence")), nil
}
