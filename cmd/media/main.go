// Copyright (c) 2026 Sajag Subedi. All rights reserved.

// Command media is the entry point for the media service.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Run database migrations (idempotent).
//  5. Open the blob store and subscribe to post deletion events.
//  6. Wire HTTP handlers.
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
	"github.com/sajagsubedi/Social-Media-Microservice/internal/media"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/config"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/constants"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/events"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/migration"
	pgstore "github.com/sajagsubedi/Social-Media-Microservice/internal/platform/postgres"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("service", "media"))
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("service", "media"))
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

	// ── 4. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 5. Token Service ──────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 6. Blob Store & Domain Wiring ─────────────────────────────────────
	blobStore, err := media.NewFilesystemBlobStore(cfg.MediaStoragePath)
	must(log, err, "open blob store")

	mediaRepository := media.NewRepository(pool)
	mediaService := media.NewService(mediaRepository, blobStore)
	mediaHandler := media.NewHandler(mediaService)

	// ── 7. Event Consumer ─────────────────────────────────────────────────
	runtimeCtx, runtimeCancel := context.WithCancel(context.Background())
	defer runtimeCancel()

	consumer := events.NewAMQPConsumer(cfg.RabbitMQURL, constants.EventExchange, log)
	must(log,
		consumer.Subscribe(runtimeCtx, constants.RoutingKeyPostDeleted, media.PostDeletedHandler(mediaService)),
		"subscribe to post deletion events")
	defer func() {
		if cerr := consumer.Close(); cerr != nil {
			log.Error("consumer close error", slog.Any("error", cerr))
		}
	}()

	// ── 8. HTTP Server ────────────────────────────────────────────────────
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
		}, log),
	})
	router.Mount("/api/media", mediaHandler.Routes())

	server := api.NewServer(cfg.ServerPort, router, log)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
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
