// Copyright (c) 2026 Sajag Subedi. All rights reserved.

// Package ratelimit provides distributed request quota accounting backed by Redis.
//
// # Architecture
//
// This package belongs to the Infrastructure layer. The gateway shares one
// counter space across all of its replicas, so a caller cannot escape its
// quota by spreading requests over instances.
//
// # Algorithm
//
// Counting uses a fixed window: the first hit on a key INCRements it to 1 and
// arms the window expiry; subsequent hits increment without touching the TTL.
// When the window lapses the key disappears and the count restarts. Both
// commands travel in a single pipeline round trip.
package ratelimit

import (
	stdctx "context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// opTimeout bounds a single counter round trip so a slow Redis cannot
// stall admission decisions behind it.
const opTimeout = 2 * time.Second

// Result reports the outcome of a quota consumption attempt.
type Result struct {
	// Allowed is true when the request fits inside the current window.
	Allowed bool
	// Remaining is the number of requests left in the window. Zero when
	// the request was rejected.
	Remaining int
}

// Limiter decides whether a request identified by key may proceed.
//
// Implementations must be safe for concurrent use.
type Limiter interface {
	// Consume spends one unit of quota for key. It returns an error only
	// when the counter itself is unreachable; a rejected request is a
	// normal Result, not an error.
	Consume(context stdctx.Context, key string, quota int, window time.Duration) (Result, error)
}

// Counter tracks how many hits a window key has absorbed.
type Counter interface {
	// Increment adds one hit to key, arming the window expiry on the first
	// hit, and returns the running count inside the current window.
	Increment(context stdctx.Context, key string, window time.Duration) (int64, error)
}

// FixedWindowLimiter is a [Limiter] that turns raw window counts from a
// [Counter] into admission decisions.
type FixedWindowLimiter struct {
	counter Counter
}

// NewFixedWindowLimiter constructs a limiter over the given counter.
func NewFixedWindowLimiter(counter Counter) *FixedWindowLimiter {
	return &FixedWindowLimiter{counter: counter}
}

// Consume implements [Limiter].
//
// # Failure Mode
//
// When the counter is unreachable the error is surfaced to the caller.
// Admission control treats that as a denial: an unaccountable request is
// never waved through.
func (limiter *FixedWindowLimiter) Consume(context stdctx.Context, key string, quota int, window time.Duration) (Result, error) {
	count, err := limiter.counter.Increment(context, key, window)
	if err != nil {
		return Result{}, err
	}

	if count > int64(quota) {
		return Result{Allowed: false, Remaining: 0}, nil
	}

	return Result{Allowed: true, Remaining: quota - int(count)}, nil
}

// RedisCounter implements [Counter] on a shared Redis instance.
type RedisCounter struct {
	client *redis.Client
}

// NewRedisCounter constructs a counter over an established Redis client.
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

// Increment implements [Counter]. INCR and ExpireNX travel in one pipeline
// round trip, bounded by [opTimeout].
func (counter *RedisCounter) Increment(context stdctx.Context, key string, window time.Duration) (int64, error) {
	opContext, cancel := stdctx.WithTimeout(context, opTimeout)
	defer cancel()

	pipeline := counter.client.TxPipeline()
	countCmd := pipeline.Incr(opContext, key)
	pipeline.ExpireNX(opContext, key, window)

	if _, err := pipeline.Exec(opContext); err != nil {
		return 0, fmt.Errorf("ratelimit: counter update for %q failed: %w", key, err)
	}

	return countCmd.Val(), nil
}

// NewRedisLimiter is the standard wiring: a [FixedWindowLimiter] over a
// [RedisCounter].
func NewRedisLimiter(client *redis.Client) *FixedWindowLimiter {
	return NewFixedWindowLimiter(NewRedisCounter(client))
}
