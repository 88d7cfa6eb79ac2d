package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"queued-ledger/config"
	httpHandler "queued-ledger/internal/adapter/http/handler"
	pgStorage "queued-ledger/internal/adapter/storage/postgres"
	redisStorage "queued-ledger/internal/adapter/storage/redis"
	"queued-ledger/internal/core/domain"
	"queued-ledger/internal/core/ports"
	"queued-ledger/internal/service"
	"queued-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load(os.Getenv("QLG_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.Mode)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("rate_limit_backend", cfg.Ledger.RateLimitBackend).
		Bool("database", cfg.Database.Enabled).
		Bool("redis", cfg.Redis.Enabled).
		Msg("Starting Queued Ledger")

	ctx := context.Background()
	var checkers []ports.HealthChecker

	// Redis is optional: it backs the shared rate limiter and enqueue idempotency.
	var idempotencyCache ports.IdempotencyCache
	var limiter ports.RateLimiter = service.NewDailyRateLimiter(cfg.Ledger.Window, nil)
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		log.Info().Msg("Redis connected")

		idempotencyCache = redisStorage.NewIdempotencyCache(rdb)
		checkers = append(checkers, redisStorage.NewHealthCheck(rdb))
		if cfg.Ledger.RateLimitBackend == "redis" {
			limiter = redisStorage.NewRateLimitStore(rdb, cfg.Ledger.Window)
		}
	}

	ledger := service.NewLedgerService(limiter, service.LedgerOptions{
		AccountIDBase: cfg.Ledger.AccountIDBase,
		Policy: domain.RatePolicy{
			MinorDailyLimit: cfg.Ledger.MinorDailyLimit,
			AdultDailyLimit: cfg.Ledger.AdultDailyLimit,
			AdultAge:        cfg.Ledger.AdultAge,
		},
		ClearRedoOnNewActivity: cfg.Ledger.ClearRedoOnNewActivity,
		Clock:                  time.Now,
	}, logger.Component(log, "ledger"))

	// PostgreSQL is optional: without it the ledger lives only in memory.
	var persistence ports.PersistenceService
	var auditRepo ports.AuditRepository
	if cfg.Database.Enabled {
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		log.Info().Msg("PostgreSQL connected")

		if err := pgStorage.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply schema")
		}

		persistence = service.NewPersistenceService(
			ledger,
			pgStorage.NewAccountRepo(pool),
			pgStorage.NewJournalRepo(pool),
			pgStorage.NewTransactor(pool),
			logger.Component(log, "persistence"),
		)
		if err := persistence.Load(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to load saved ledger")
		}

		auditRepo = pgStorage.NewAuditRepository(pool)
		checkers = append(checkers, pgStorage.NewHealthCheck(pool))
	}
	auditSvc := service.NewAuditService(auditRepo, logger.Component(log, "audit"))

	if specBytes, err := os.ReadFile("docs/api/openapi.yaml"); err == nil {
		httpHandler.SetSwaggerSpec(specBytes)
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Ledger:           ledger,
		Persistence:      persistence,
		IdempotencyCache: idempotencyCache,
		AuditSvc:         auditSvc,
		HealthCheckers:   checkers,
		AdultAge:         cfg.Ledger.AdultAge,
		Logger:           logger.Component(log, "http"),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Final save after in-flight requests have drained.
	if persistence != nil {
		if err := persistence.Save(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to save ledger on shutdown")
		}
	}

	log.Info().Msg("Server exited")
}
