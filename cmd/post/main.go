// Copyright (c) 2026 Sajag Subedi. All rights reserved.

// Command post is the entry point for the content service.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis (response cache).
//  5. Run database migrations (idempotent).
//  6. Wire the event publisher and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sajagsubedi/Social-Media-Microservice/internal/api"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/cache"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/config"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/constants"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/events"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/migration"
	pgstore "github.com/sajagsubedi/Social-Media-Microservice/internal/platform/postgres"
	redisstore "github.com/sajagsubedi/Social-Media-Microservice/internal/platform/redis"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/sec"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/post"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("service", "post"))
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("service", "post"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Token Service ──────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 7. Event Publisher ────────────────────────────────────────────────
	// Lazy: the broker connection is established on the first publish, so
	// the service starts even while RabbitMQ is still booting.
	publisher := events.NewAMQPPublisher(cfg.RabbitMQURL, constants.EventExchange, log)
	defer func() {
		if cerr := publisher.Close(); cerr != nil {
			log.Error("publisher close error", slog.Any("error", cerr))
		}
	}()

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	postRepository := post.NewRepository(pool)
	cacheStore := cache.NewRedisStore(rdb)
	postService := post.NewService(postRepository, cacheStore, publisher)
	postHandler := post.NewHandler(postService)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	done := make(chan struct{})
	defer close(done)

	router := api.NewBackendRouter(api.BackendRouterOptions{
		Logger:   log,
		Verifier: jwtSvc,
		Done:     done,
		Readiness: api.NewReadinessHandler(api.HealthDependencies{
			CheckDatabase: func() error {
				return pgstore.Ping(context.Background(), pool)
			},
			CheckCache: func() error {
				return redisstore.Ping(context.Background(), rdb)
			},
		}, log),
	})
	router.Mount("/api/posts", postHandler.Routes())

	server := api.NewServer(cfg.ServerPort, router, log)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	log.Info("shutting down server", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
