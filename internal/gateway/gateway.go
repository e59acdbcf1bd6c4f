// Copyright (c) 2026 Sajag Subedi. All rights reserved.

/*
Package gateway implements the single public entry point for the platform.

Every client request passes three stages before reaching a backend:

 1. Admission: distributed per-IP rate limiting on a shared Redis counter.
 2. Authentication: JWT verification for the protected route groups.
 3. Relay: path rewriting and reverse-proxying to the owning service.

# Architecture

The gateway holds no business logic and no database. Its only state is the
shared rate-limit counter, which it deliberately shares with its own replicas
so quotas hold across the whole fleet.
*/
package gateway

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/config"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/constants"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/middleware"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/ratelimit"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/respond"
)

// Router assembles the full gateway handler chain.
//
// # Route Map
//   - /v1/auth/*  -> identity service (public, sensitive-quota on register/login)
//   - /v1/posts/* -> post service (JWT required)
//   - /v1/media/* -> media service (JWT required)
func Router(configuration *config.Config, limiter ratelimit.Limiter, verifier middleware.TokenVerifier, logger *slog.Logger) (http.Handler, error) {
	router := chi.NewRouter()

	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(logger))
	router.Use(middleware.PanicRecovery(logger))

	// Every request, any path: the global admission quota.
	router.Use(GlobalRateLimit(limiter))

	identityProxy, err := NewProxy(configuration.IdentityServiceURL)
	if err != nil {
		return nil, err
	}
	postProxy, err := NewProxy(configuration.PostServiceURL)
	if err != nil {
		return nil, err
	}
	mediaProxy, err := NewProxy(configuration.MediaServiceURL)
	if err != nil {
		return nil, err
	}

	// Identity routes stay public; enrollment endpoints carry the extra
	// sensitive quota on top of the global one.
	router.Route("/v1/auth", func(r chi.Router) {
		r.Group(func(sensitive chi.Router) {
			sensitive.Use(SensitiveRateLimit(limiter))
			sensitive.Handle("/register", identityProxy)
			sensitive.Handle("/login", identityProxy)
		})
		r.Handle("/*", identityProxy)
	})

	// Content and media routes require a verified access token before any
	// bytes are relayed.
	router.Group(func(protected chi.Router) {
		protected.Use(middleware.Authenticate(verifier))
		protected.Use(middleware.RequireAuth)
		protected.Handle("/v1/posts", postProxy)
		protected.Handle("/v1/posts/*", postProxy)
		protected.Handle("/v1/media", mediaProxy)
		protected.Handle("/v1/media/*", mediaProxy)
	})

	router.Get("/health", health)

	return router, nil
}

// health reports gateway liveness. Backend health is each service's own.
func health(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, constants.AppName+" gateway is healthy", nil)
}
