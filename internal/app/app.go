package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/shopfront/internal/assistant"
	"github.com/utafrali/shopfront/internal/catalog"
	"github.com/utafrali/shopfront/internal/config"
	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/event"
	handler "github.com/utafrali/shopfront/internal/handler/http"
	"github.com/utafrali/shopfront/internal/repository"
	memoryrepo "github.com/utafrali/shopfront/internal/repository/memory"
	redisrepo "github.com/utafrali/shopfront/internal/repository/redis"
	"github.com/utafrali/shopfront/internal/service"
	"github.com/utafrali/shopfront/pkg/database"
	"github.com/utafrali/shopfront/pkg/health"
	"github.com/utafrali/shopfront/pkg/httpclient"
	pkgkafka "github.com/utafrali/shopfront/pkg/kafka"
	"github.com/utafrali/shopfront/pkg/tracing"
)

// App wires together all dependencies and runs the storefront service.
// Backends without a configured address fall back to local defaults, so
// the service boots with zero configuration for demos and development.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	pool            *pgxpool.Pool
	redisClient     *redis.Client
	producer        *pkgkafka.Producer
	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	app := &App{cfg: cfg, logger: logger}

	// Tracing.
	traceCfg := tracing.DefaultConfig("shopfront")
	traceCfg.Environment = cfg.Environment
	traceCfg.OTLPEndpoint = cfg.OTLPEndpoint
	traceCfg.SampleRate = cfg.TraceSampleRate
	traceCfg.Enabled = cfg.TracingEnabled
	tracingShutdown, err := tracing.InitTracer(ctx, traceCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	app.tracingShutdown = tracingShutdown

	healthHandler := health.NewHandler()

	// Catalog: Postgres when configured, seed data otherwise.
	products, err := app.initCatalog(ctx, healthHandler)
	if err != nil {
		return nil, err
	}
	cat := catalog.NewService(products)
	logger.Info("catalog loaded", slog.Int("products", cat.Len()))

	// Session state store: Redis when configured, in-memory otherwise.
	repo, err := app.initStateRepository(ctx, healthHandler)
	if err != nil {
		return nil, err
	}

	// Events: Kafka when brokers are configured, disabled otherwise.
	eventProducer := app.initEvents(healthHandler)

	// Phrasing: remote service behind a circuit breaker when configured,
	// canned replies otherwise.
	summarizer := app.initSummarizer()

	// Build the dependency graph.
	locks := service.NewSessionLocks()
	cartService := service.NewCartService(repo, cat, eventProducer, locks, logger)
	searchService := service.NewSearchService(repo, cat, locks, logger)
	assistantService := service.NewAssistantService(cartService, searchService, cat, summarizer, logger)

	// HTTP router.
	router := handler.NewRouter(
		cartService,
		searchService,
		assistantService,
		cat,
		healthHandler,
		logger,
		cfg.RateLimitRPS,
		cfg.RateLimitBurst,
		cfg.PprofCIDRs,
	)

	app.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return app, nil
}

func (a *App) initCatalog(ctx context.Context, healthHandler *health.Handler) ([]domain.Product, error) {
	if a.cfg.CatalogDSN == "" {
		return catalog.SeedProducts(), nil
	}

	pgCfg := database.DefaultPostgresConfig(a.cfg.CatalogDSN)
	pool, err := database.NewPostgresPool(ctx, pgCfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	a.logger.Info("connected to PostgreSQL")

	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})

	products, err := catalog.LoadFromPostgres(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return products, nil
}

func (a *App) initStateRepository(ctx context.Context, healthHandler *health.Handler) (repository.StateRepository, error) {
	if a.cfg.RedisAddr == "" {
		a.logger.Info("using in-memory session store")
		return memoryrepo.NewStateRepository(), nil
	}

	client, err := database.NewRedisClient(ctx, database.RedisConfig{
		Addr:     a.cfg.RedisAddr,
		Password: a.cfg.RedisPass,
		DB:       a.cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.redisClient = client
	a.logger.Info("connected to Redis", slog.String("addr", a.cfg.RedisAddr))

	healthHandler.Register("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})

	return redisrepo.NewStateRepository(client, a.cfg.SessionTTL()), nil
}

func (a *App) initEvents(healthHandler *health.Handler) *event.Producer {
	if len(a.cfg.KafkaBrokers) == 0 {
		a.logger.Info("event publishing disabled, no kafka brokers configured")
		return event.NewDisabled(a.logger)
	}

	kafkaCfg := pkgkafka.DefaultProducerConfig(a.cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, a.logger)
	a.producer = producer
	a.logger.Info("kafka producer initialized", slog.Any("brokers", a.cfg.KafkaBrokers))

	healthHandler.Register("kafka", producer.Ping)

	return event.NewProducer(producer, a.logger)
}

func (a *App) initSummarizer() assistant.Summarizer {
	if a.cfg.PhrasingURL == "" {
		a.logger.Info("using canned reply phrasing")
		return &assistant.StaticSummarizer{}
	}

	client := httpclient.New(httpclient.DefaultConfig())
	cbClient := httpclient.NewCircuitBreakerClient(
		client,
		httpclient.DefaultCircuitBreakerConfig("phrasing"),
		a.logger,
	)
	a.logger.Info("phrasing service configured", slog.String("url", a.cfg.PhrasingURL))

	return assistant.NewHTTPSummarizer(cbClient, a.cfg.PhrasingURL, a.cfg.PhrasingTimeout(), a.logger)
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	if a.pool != nil {
		a.pool.Close()
	}

	if a.tracingShutdown != nil {
		if err := a.tracingShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}
