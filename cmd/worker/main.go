// Package main is the entry point for the recommendation worker: it wires
// the catalog and interaction stores, the multi-tier cache, the strategy
// pipeline, and the interaction-ingestion buffer, then serves until a
// shutdown signal arrives.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/wardrobe-hub/wardrobe-recs/config"
	"github.com/wardrobe-hub/wardrobe-recs/internal/application/ingest"
	"github.com/wardrobe-hub/wardrobe-recs/internal/application/recommend"
	"github.com/wardrobe-hub/wardrobe-recs/internal/infrastructure/cache"
	"github.com/wardrobe-hub/wardrobe-recs/internal/infrastructure/persistence/postgres"
	"github.com/wardrobe-hub/wardrobe-recs/internal/infrastructure/persistence/redis"
	"github.com/wardrobe-hub/wardrobe-recs/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. Configuration & logging
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)
	log.Info("starting recommendation worker",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Bool("debug", cfg.App.Debug),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. PostgreSQL
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	health, err := dbConn.Health(ctx)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	if !health.Healthy {
		return fmt.Errorf("database is unhealthy: %s", health.Error)
	}
	log.Info("database connection established",
		logger.Latency(health.PingLatency),
		logger.Int("total_conns", int(health.TotalConns)),
		logger.Int("max_conns", int(health.MaxConns)),
	)

	log.Info("checking database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 3. Redis (optional - the cache degrades to L1 -> loader without it)
	// ─────────────────────────────────────────────────────────────────────────
	var l2 cache.L2Cache
	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")

		var redisCache *redis.Cache
		if cfg.Redis.URL != "" {
			redisCache, err = redis.NewCacheFromURL(cfg.Redis.URL)
		} else {
			redisCfg := redis.DefaultConfig()
			redisCfg.Host = cfg.Redis.Host
			redisCfg.Port = cfg.Redis.Port
			redisCfg.Password = cfg.Redis.Password
			redisCfg.DB = cfg.Redis.DB
			redisCfg.PoolSize = cfg.Redis.PoolSize
			redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
			redisCache, err = redis.NewCache(redisCfg)
		}
		if err != nil {
			log.Warn("failed to connect to Redis, shared cache disabled", logger.Err(err))
		} else {
			defer redisCache.Close()
			l2 = redisCache
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. Repositories & cache tiers
	// ─────────────────────────────────────────────────────────────────────────
	catalogRepo := postgres.NewCatalogRepository(dbConn)
	interactionRepo := postgres.NewInteractionRepository(dbConn)

	tiers := cache.New(cache.Config{
		L1Size:          cfg.Cache.L1Size,
		L1TTL:           cfg.Cache.L1TTL,
		WarmConcurrency: cfg.Cache.WarmConcurrency,
		ProbeTimeout:    cfg.Cache.ProbeTimeout,
	}, l2,
		cache.WithLogger(log),
		cache.WithL3Probe(dbConn.Ping),
	)
	cachedCatalog := cache.NewCachedCatalog(tiers, catalogRepo)

	// ─────────────────────────────────────────────────────────────────────────
	// 5. Ingestion buffer
	// ─────────────────────────────────────────────────────────────────────────
	buffer := ingest.NewBuffer(interactionRepo, catalogRepo, ingest.Config{
		FlushThreshold: cfg.Ingest.FlushThreshold,
		FlushInterval:  cfg.Ingest.FlushInterval,
	}, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. Strategy pipeline & service
	// ─────────────────────────────────────────────────────────────────────────
	scorer := recommend.NewSimilarityScorer()
	ensemble := recommend.NewEnsembleRanker()
	extractor := recommend.NewPreferenceExtractor(cachedCatalog, interactionRepo)

	popular := recommend.NewPopularStrategy(cachedCatalog)
	similar := recommend.NewSimilarStrategy(cachedCatalog, scorer)

	strategies := []recommend.Strategy{
		popular,
		similar,
		recommend.NewNewArrivalsStrategy(cachedCatalog),
		recommend.NewTrendingStrategy(cachedCatalog, interactionRepo),
		recommend.NewComplementaryStrategy(cachedCatalog, similar),
		recommend.NewPersonalizedStrategy(cachedCatalog, interactionRepo, extractor, ensemble, popular),
	}

	results := recommend.NewResultCache(cfg.Recommend.ResultTTL, cfg.Recommend.ResultCacheMax)
	service := recommend.NewService(strategies, ensemble, results,
		cachedCatalog, tiers, interactionRepo, buffer, log)

	if ids := parseWarmIDs(cfg.Recommend.WarmItemIDs, log); len(ids) > 0 {
		log.Info("warming cache...", logger.Int("items", len(ids)))
		service.WarmCache(ctx, ids)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. Graceful shutdown
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("recommendation worker is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	log.Info("received shutdown signal", logger.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	log.Info("flushing interaction buffer...")
	if err := buffer.Close(shutdownCtx); err != nil {
		log.Error("final buffer flush failed", logger.Err(err))
	}

	log.Info("shutdown completed successfully")
	return nil
}

// setupLogger builds the process logger from the observability config.
func setupLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		opts.Level = logger.LevelDebug
	}
	return logger.New(opts)
}

// parseWarmIDs parses the configured warm-list, skipping malformed entries.
func parseWarmIDs(raw []string, log *logger.Logger) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			log.Warn("skipping malformed warm item ID", logger.String("value", s))
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
