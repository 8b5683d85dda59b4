package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/auroralabs/aurora-search/internal/analytics"
	"github.com/auroralabs/aurora-search/internal/cache"
	"github.com/auroralabs/aurora-search/internal/ratelimit"
	"github.com/auroralabs/aurora-search/internal/search/engine"
	"github.com/auroralabs/aurora-search/internal/server/handler"
	srvmw "github.com/auroralabs/aurora-search/internal/server/middleware"
	"github.com/auroralabs/aurora-search/internal/server/router"
	"github.com/auroralabs/aurora-search/internal/source"
	"github.com/auroralabs/aurora-search/pkg/config"
	"github.com/auroralabs/aurora-search/pkg/health"
	"github.com/auroralabs/aurora-search/pkg/kafka"
	"github.com/auroralabs/aurora-search/pkg/logger"
	"github.com/auroralabs/aurora-search/pkg/metrics"
	pkgpostgres "github.com/auroralabs/aurora-search/pkg/postgres"
	pkgredis "github.com/auroralabs/aurora-search/pkg/redis"
	"github.com/auroralabs/aurora-search/pkg/resilience"
)

const (
	appName = "aurora-search"
	version = "1.0.0"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "version", version, "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := shutdownMetrics(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}()
		slog.Info("metrics server started", "port", cfg.Metrics.Port)
	}

	eng := engine.New(engine.Config{
		MinTokenLength: cfg.Search.MinTokenLength,
		MaxQueryLength: cfg.Search.MaxQueryLength,
		MaxLimit:       cfg.Search.MaxLimit,
	})

	src, cleanup, err := newSource(cfg)
	if err != nil {
		slog.Error("failed to create corpus source", "kind", cfg.Source.Kind, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis)
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	var collector *analytics.Collector
	var analyticsH *analytics.Handler
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.AnalyticsEvents)
		collector = analytics.NewCollector(producer, 100, 5*time.Second)
		collector.Start(ctx)
		defer collector.Close()

		aggregator := analytics.NewAggregator(cfg.Kafka)
		go func() {
			if err := aggregator.Start(ctx); err != nil && ctx.Err() == nil {
				slog.Error("analytics aggregator error", "error", err)
			}
		}()
		defer aggregator.Close()
		analyticsH = analytics.NewHandler(aggregator)
		slog.Info("analytics pipeline started", "topic", cfg.Kafka.AnalyticsEvents)
	}

	checker := health.NewChecker()
	checker.Register("search_engine", func(ctx context.Context) health.ComponentHealth {
		if !eng.Ready() {
			return health.ComponentHealth{Status: health.StatusDown, Message: "index not built yet"}
		}
		messages, movies := eng.Counts()
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d messages, %d movies indexed", messages, movies),
		}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	// The server comes up immediately and answers 503 on search until the
	// initial corpus fetch and index build succeed.
	go loadInitialIndex(ctx, src, eng, m)

	h := handler.New(handler.Config{
		AppName:      appName,
		Version:      version,
		DefaultLimit: cfg.Search.DefaultLimit,
	}, eng, src, queryCache, collector, m)

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(cfg.RateLimit.PerMinute, time.Minute)
	}

	var corsCfg *srvmw.CORSConfig
	if cfg.CORS.Enabled && len(cfg.CORS.AllowOrigins) > 0 {
		c := srvmw.DefaultCORSConfig()
		c.AllowOrigins = cfg.CORS.AllowOrigins
		corsCfg = &c
	}

	chain := router.New(h, checker, router.Options{
		Metrics:        m,
		Limiter:        limiter,
		Analytics:      analyticsH,
		CORS:           corsCfg,
		RequestTimeout: cfg.Server.WriteTimeout,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}

// newSource builds the corpus source selected by config. The returned cleanup
// releases whatever the source holds open.
func newSource(cfg *config.Config) (source.Source, func(), error) {
	switch cfg.Source.Kind {
	case "postgres":
		db, err := pkgpostgres.New(cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using postgres corpus source", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
		return source.NewPostgres(db), func() { _ = db.Close() }, nil
	default:
		slog.Info("using api corpus source", "base_url", cfg.Source.BaseURL, "page_size", cfg.Source.PageSize)
		return source.NewAPI(cfg.Source), func() {}, nil
	}
}

// loadInitialIndex fetches the corpus and builds the first index, retrying
// until it succeeds or the process is shutting down.
func loadInitialIndex(ctx context.Context, src source.Source, eng *engine.Engine, m *metrics.Metrics) {
	start := time.Now()
	err := resilience.Retry(ctx, "initial_index_load", resilience.RetryConfig{
		MaxAttempts:  5,
		InitialDelay: 2 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}, func() error {
		batch, err := src.Fetch(ctx)
		if err != nil {
			return err
		}
		if err := eng.Load(batch.Messages, batch.Movies); err != nil {
			return err
		}
		if m != nil {
			m.IndexBuildsTotal.WithLabelValues("ok").Inc()
			m.IndexBuildDuration.Observe(time.Since(start).Seconds())
			m.DocsIndexed.WithLabelValues("messages").Set(float64(len(batch.Messages)))
			m.DocsIndexed.WithLabelValues("movies").Set(float64(len(batch.Movies)))
		}
		return nil
	})
	if err != nil {
		if m != nil {
			m.IndexBuildsTotal.WithLabelValues("rejected").Inc()
		}
		slog.Error("initial index load failed, service stays not ready", "error", err)
		return
	}
	messages, movies := eng.Counts()
	slog.Info("initial index built",
		"messages", messages,
		"movies", movies,
		"duration", time.Since(start),
	)
}
