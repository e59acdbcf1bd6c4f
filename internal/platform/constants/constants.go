// Copyright (c) 2026 Sajag Subedi. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between the gateway and the backend services.

Categories:

  - Server Timing: Read/Write/Idle timeouts for every HTTP server.
  - Admission Control: Distributed quota windows enforced at the gateway.
  - Messaging: Exchange and routing-key taxonomy for the event bridge.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "social-media-microservice"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Admission Control (Gateway)

const (
	// GlobalRateLimitQuota is the number of requests a client may issue per
	// GlobalRateLimitWindow before the gateway rejects with 429.
	GlobalRateLimitQuota = 10

	// GlobalRateLimitWindow is the fixed window for the global limiter.
	GlobalRateLimitWindow = 1 * time.Second

	// SensitiveRateLimitQuota is the total quota on sensitive endpoints
	// (registration, login) counted independently of the global limiter.
	SensitiveRateLimitQuota = 50

	// SensitiveRateLimitWindow is the window for the sensitive-endpoint limiter.
	SensitiveRateLimitWindow = 15 * time.Minute

	// ProxyTimeout bounds the round trip to a resolved backend. Exceeding it
	// is a backend failure, never a client error.
	ProxyTimeout = 10 * time.Second
)

// # Local Overload Protection (Backend Services)

const (
	// LocalRateLimitRPS is the per-instance requests per second allowed per IP
	// for traffic that reaches a backend directly, bypassing the gateway.
	LocalRateLimitRPS = 100.0

	// LocalRateLimitBurst is the maximum burst allowed for the local limiter.
	LocalRateLimitBurst = 150

	// RateLimitCleanupInterval is how often idle IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in access tokens.
	AuthIssuer = "social-media-microservice"
)

// # Messaging (Event Bridge)

const (
	// EventExchange is the shared topic exchange all services publish to.
	EventExchange = "socialmedia_exchange"

	// RoutingKeyPostDeleted identifies post deletion lifecycle events.
	RoutingKeyPostDeleted = "post.deleted"
)

// # Redis Key Taxonomy

const (
	RedisPrefixGlobalLimit    = "ratelimit:gw:"
	RedisPrefixSensitiveLimit = "ratelimit:sensitive:"
	RedisPrefixPost           = "post:"
	RedisPrefixPostList       = "posts:"
)

// # HTTP Headers

const (
	HeaderXRequestID         = "X-Request-ID"
	HeaderXRealIP            = "X-Real-IP"
	HeaderXForwardedFor      = "X-Forwarded-For"
	HeaderOrigin             = "Origin"
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
)
