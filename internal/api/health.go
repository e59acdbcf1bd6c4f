// Copyright (c) 2026 Sajag Subedi. All rights reserved.

package api

import (
	"log/slog"
	"net/http"

	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/respond"
)

// HealthDependencies holds the injectable dependency checkers for the /ready endpoint.
type HealthDependencies struct {
	// CheckDatabase pings the PostgreSQL pool.
	CheckDatabase func() error

	// CheckCache pings the Redis client.
	CheckCache func() error
}

// Liveness handles GET /health. It returns 200 whenever the process is alive.
func Liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, "ok", nil)
}

// NewReadinessHandler creates the /ready http.HandlerFunc over the given
// dependency checkers.
func NewReadinessHandler(dependencies HealthDependencies, logger *slog.Logger) http.HandlerFunc {
	type checkResult struct {
		Name  string `json:"name"`
		IsOK  bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}

	return func(writer http.ResponseWriter, request *http.Request) {
		results := make([]checkResult, 0, 2)
		isSystemReady := true

		// Check PostgreSQL
		if dependencies.CheckDatabase != nil {
			result := checkResult{Name: "postgres", IsOK: true}
			if err := dependencies.CheckDatabase(); err != nil {
				result.IsOK = false
				result.Error = err.Error()
				isSystemReady = false
				logger.Error("readiness_check_failed", slog.String("dependency", "postgres"), slog.Any("error", err))
			}
			results = append(results, result)
		}

		// Check Redis
		if dependencies.CheckCache != nil {
			result := checkResult{Name: "redis", IsOK: true}
			if err := dependencies.CheckCache(); err != nil {
				result.IsOK = false
				result.Error = err.Error()
				isSystemReady = false
				logger.Error("readiness_check_failed", slog.String("dependency", "redis"), slog.Any("error", err))
			}
			results = append(results, result)
		}

		status := http.StatusOK
		label := "ready"
		if !isSystemReady {
			status = http.StatusServiceUnavailable
			label = "degraded"
		}

		respond.JSON(writer, status, respond.SuccessEnvelope{
			Success: isSystemReady,
			Message: label,
			Data:    map[string]any{"checks": results},
		})
	}
}
