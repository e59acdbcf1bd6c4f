// Copyright (c) 2026 Sajag Subedi. All rights reserved.

/*
Package api wires routers, middleware chains, and handlers into runnable
[http.Server] instances for every service binary.

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and the cmd/ binaries are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/constants"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/middleware"
)

// # Server Definitions

// Server wraps an [http.Server] with opinionated timeouts and graceful
// shutdown. It is constructed once per binary with all dependencies injected.
type Server struct {
	httpServer *http.Server
	log        *slog.Logger
}

// NewServer wraps the given handler in a production-configured HTTP server.
func NewServer(port string, handler http.Handler, log *slog.Logger) *Server {
	return &Server{
		log: log,
		httpServer: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Backend Router Composition

// BackendRouterOptions configures the shared middleware chain for a backend
// service sitting behind the gateway.
type BackendRouterOptions struct {
	// Logger receives per-request structured log entries.
	Logger *slog.Logger

	// Verifier validates Bearer tokens. Authenticated claims are injected
	// into the request context; route groups opt into enforcement.
	Verifier middleware.TokenVerifier

	// Done signals the local limiter's janitor goroutine to stop.
	Done <-chan struct{}

	// Readiness is mounted at /ready when non-nil.
	Readiness http.HandlerFunc
}

// NewBackendRouter builds the middleware chain every backend service shares.
//
// The gateway already rate-limits admitted traffic, but each backend keeps a
// local in-memory limiter as well: it protects against traffic that reaches
// the service directly on the internal network.
func NewBackendRouter(options BackendRouterOptions) *chi.Mux {
	router := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(options.Logger))
	router.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	router.Use(middleware.LocalRateLimit(options.Done))
	router.Use(middleware.PanicRecovery(options.Logger))
	router.Use(middleware.Authenticate(options.Verifier))
	router.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	router.Get("/health", Liveness)
	if options.Readiness != nil {
		router.Get("/ready", options.Readiness)
	}

	return router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
