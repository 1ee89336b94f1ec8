package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	appservice "github.com/turtacn/aewis/internal/application/service"
	"github.com/turtacn/aewis/internal/config"
	domainservice "github.com/turtacn/aewis/internal/domain/service"
	"github.com/turtacn/aewis/internal/infrastructure/events"
	"github.com/turtacn/aewis/internal/infrastructure/monitoring"
	"github.com/turtacn/aewis/internal/infrastructure/persistence/postgres"
	redispersistence "github.com/turtacn/aewis/internal/infrastructure/persistence/redis"
	"github.com/turtacn/aewis/internal/infrastructure/ratelimit"
	"github.com/turtacn/aewis/internal/interfaces/http/handlers"
	"github.com/turtacn/aewis/internal/interfaces/http/middleware"
	"github.com/turtacn/aewis/internal/interfaces/http/router"
	"github.com/turtacn/aewis/pkg/logger"
)

const dbStatsInterval = 15 * time.Second

func main() {
	configFile := flag.String("config", "", "path to config.yaml (defaults to ./config.yaml, ./configs, /etc/aewis)")
	flag.Parse()

	if err := run(*configFile); err != nil {
		log.Fatalf("aewis server: %v", err)
	}
}

func run(configFile string) error {
	// Logger for startup
	startupLogger, err := monitoring.NewZapLogger(&config.LogConfig{Level: "info", Format: "json"})
	if err != nil {
		return fmt.Errorf("create startup logger: %w", err)
	}

	// Load config
	loader := config.NewLoader(configFile, startupLogger)
	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	// Initialize logger
	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	logger.SetGlobalLogger(appLogger)
	loader.WatchLogLevel(appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize tracing
	tracing, err := monitoring.NewTracingManager(ctx, &cfg.Tracing, appLogger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracing.Shutdown(shutdownCtx)
	}()

	promMetrics := monitoring.NewMetrics()
	metrics := monitoring.NewMetricsAdapter(promMetrics)

	// Initialize database
	db, err := postgres.NewDBConnection(ctx, &cfg.Database, appLogger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	// Initialize Redis (optional)
	var (
		redisClient redis.UniversalClient
		redisPinger handlers.Pinger
	)
	if cfg.Redis.Enabled {
		redisConn := redispersistence.NewRedisConnection(&cfg.Redis, appLogger)
		if err := redisConn.Connect(ctx); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisConn.Close()
		redisClient = redisConn.GetClient()
		redisPinger = redisConn
	}

	reportCache := redispersistence.NewReportCache(redisClient, cfg.Cache.ReportTTL, cfg.Cache.LocalTTL, metrics, appLogger)

	uploadLimiter, ipLimiter, err := buildRateLimiters(cfg, redisClient, appLogger)
	if err != nil {
		return err
	}

	// Domain events (optional Kafka)
	var (
		publisher domainservice.EventPublisher
		consumer  *events.CacheInvalidationConsumer
	)
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(cfg.Kafka, appLogger)
		consumer = events.NewCacheInvalidationConsumer(cfg.Kafka, instanceGroupID(cfg.Kafka.GroupID), reportCache, appLogger)
	} else {
		publisher = events.NewLogPublisher(appLogger)
	}
	defer publisher.Close()

	// Initialize repositories
	riskRepo := postgres.NewRiskRepository(db.DB(), cfg.Database.BatchSize, metrics, appLogger)
	interventionRepo := postgres.NewInterventionRepository(db.DB(), metrics, appLogger)

	// Initialize application services
	riskSvc := appservice.NewRiskAppService(riskRepo, reportCache, publisher, uploadLimiter, metrics,
		appservice.RiskAppServiceConfig{
			ClassifyWorkers: cfg.Scoring.ClassifyWorkers,
			RiskTrend:       cfg.Scoring.RiskTrendPlaceholder,
			UploadLimit:     cfg.RateLimit.UploadPerWindow,
			SlowOperation:   cfg.Monitoring.SlowOperationThreshold,
			Tracer:          tracing,
		}, appLogger)
	interventionSvc := appservice.NewInterventionAppService(riskRepo, interventionRepo,
		domainservice.NewInterventionLedger(cfg.Scoring.SuccessBonus),
		reportCache, publisher, metrics, tracing, appLogger)

	// Initialize HTTP handlers and router
	mw := router.Middlewares{
		Observability: middleware.ObservabilityMiddleware(tracing.Tracer(), promMetrics),
		Idempotency:   middleware.IdempotencyMiddleware(redisClient, &cfg.Idempotency, appLogger),
	}
	if ipLimiter != nil {
		mw.RateLimit = middleware.RateLimitMiddleware(ipLimiter, cfg.RateLimit.IPPerWindow, metrics, appLogger)
	}
	srv := router.NewRouter(cfg, appLogger,
		handlers.NewHealthHandler(db, redisPinger, appLogger),
		handlers.NewRiskHandler(riskSvc, cfg.Server.MaxUploadBytes, appLogger),
		handlers.NewInterventionHandler(interventionSvc, appLogger),
		mw,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})
	g.Go(func() error {
		reportDBStats(gctx, db, metrics)
		return nil
	})
	if consumer != nil {
		g.Go(func() error {
			consumer.Start(gctx)
			return nil
		})
		defer consumer.Stop()
	}

	if err := g.Wait(); err != nil {
		appLogger.Error(context.Background(), "Server exited with error", err)
		return err
	}
	appLogger.Info(context.Background(), "Server stopped")
	return nil
}

// buildRateLimiters returns the per-college upload limiter and the optional per-IP limiter.
// Both are nil when rate limiting is disabled.
func buildRateLimiters(cfg *config.Config, client redis.UniversalClient, log logger.Logger) (domainservice.RateLimitService, domainservice.RateLimitService, error) {
	if !cfg.RateLimit.Enabled {
		return nil, nil, nil
	}

	build := func(limit int) (domainservice.RateLimitService, error) {
		if client == nil {
			return ratelimit.NewLocalRateLimiter(limit, cfg.RateLimit.Window), nil
		}
		rlCfg := ratelimit.DefaultRateLimiterConfig()
		rlCfg.Limit = limit
		rlCfg.Window = cfg.RateLimit.Window
		return ratelimit.NewRedisRateLimiter(client, rlCfg, log)
	}

	upload, err := build(cfg.RateLimit.UploadPerWindow)
	if err != nil {
		return nil, nil, fmt.Errorf("create upload rate limiter: %w", err)
	}
	if cfg.RateLimit.IPPerWindow <= 0 {
		return upload, nil, nil
	}
	ip, err := build(cfg.RateLimit.IPPerWindow)
	if err != nil {
		return nil, nil, fmt.Errorf("create ip rate limiter: %w", err)
	}
	return upload, ip, nil
}

// instanceGroupID gives every instance its own consumer group so each one sees every invalidation.
func instanceGroupID(base string) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return base
	}
	return base + "-" + host
}

func reportDBStats(ctx context.Context, db *postgres.DBConnection, metrics domainservice.Metrics) {
	ticker := time.NewTicker(dbStatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := db.Stats()
			metrics.UpdateDBConnections(stats.InUse, stats.Idle)
		}
	}
}

//Personal.AI order the ending
