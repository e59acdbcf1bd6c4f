// Copyright (c) 2026 Sajag Subedi. All rights reserved.

package gateway

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/apperr"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/constants"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/ctxutil"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/middleware"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/ratelimit"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/respond"
)

// GlobalRateLimit enforces the fleet-wide per-IP admission quota.
func GlobalRateLimit(limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	return quotaMiddleware(limiter, quotaPolicy{
		keyPrefix: constants.RedisPrefixGlobalLimit,
		quota:     constants.GlobalRateLimitQuota,
		window:    constants.GlobalRateLimitWindow,
	})
}

// SensitiveRateLimit enforces the tighter long-window quota on enrollment
// endpoints. It counts independently of [GlobalRateLimit].
func SensitiveRateLimit(limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	return quotaMiddleware(limiter, quotaPolicy{
		keyPrefix: constants.RedisPrefixSensitiveLimit,
		quota:     constants.SensitiveRateLimitQuota,
		window:    constants.SensitiveRateLimitWindow,
	})
}

// quotaPolicy pairs a counter namespace with its quota and window.
type quotaPolicy struct {
	keyPrefix string
	quota     int
	window    time.Duration
}

// quotaMiddleware runs one quota check per request against the shared counter.
//
// # Failure Mode
//
// If the counter is unreachable the request is REJECTED with a generic 500.
// Waving unaccounted traffic through would turn a Redis outage into an open
// gate, which is exactly when abuse is cheapest.
func quotaMiddleware(limiter ratelimit.Limiter, policy quotaPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			clientIP := middleware.RealIP(request)
			key := policy.keyPrefix + clientIP

			result, err := limiter.Consume(request.Context(), key, policy.quota, policy.window)
			if err != nil {
				logger := ctxutil.GetLogger(request.Context())
				logger.Error("rate_limit_counter_unreachable",
					slog.String("key", key),
					slog.Any("error", err),
				)
				respond.Error(writer, request, apperr.Internal(err))
				return
			}

			if !result.Allowed {
				logger := ctxutil.GetLogger(request.Context())
				logger.Warn("rate_limit_exceeded",
					slog.String("ip", clientIP),
					slog.String("key", key),
				)
				respond.Error(writer, request, apperr.RateLimited(0))
				return
			}

			writer.Header().Set(constants.HeaderRateLimitLimit, strconv.Itoa(policy.quota))
			writer.Header().Set(constants.HeaderRateLimitRemaining, strconv.Itoa(result.Remaining))

			next.ServeHTTP(writer, request)
		})
	}
}
