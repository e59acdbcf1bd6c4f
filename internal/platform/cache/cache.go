// Copyright (c) 2026 Sajag Subedi. All rights reserved.

/*
Package cache provides a shared read-through response cache backed by Redis.

It stores fully serialized API payloads under deterministic keys so that any
service replica can answer a repeated read without touching PostgreSQL.

Core Responsibilities:

  - Read-through: A miss is a normal outcome, reported as [ErrMiss].
  - Expiry: Every entry carries a TTL; nothing lives in the cache forever.
  - Invalidation: Single-key deletes plus pattern sweeps for list pages.
*/
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by [Store.Get] when the key holds no live entry.
// Callers fall back to the primary store and re-populate.
var ErrMiss = errors.New("cache: miss")

// scanBatchSize bounds how many keys a single SCAN iteration returns
// during pattern invalidation.
const scanBatchSize = 100

// Store is the cache protocol shared by the read-path services.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the raw payload stored under key, or [ErrMiss].
	Get(context context.Context, key string) ([]byte, error)

	// Set stores payload under key with the given TTL.
	Set(context context.Context, key string, payload []byte, ttl time.Duration) error

	// Delete removes the given entries. Deleting absent keys is not an error.
	Delete(context context.Context, keys ...string) error

	// DeleteByPattern removes every entry whose key matches the glob
	// pattern, e.g. "posts:*".
	DeleteByPattern(context context.Context, pattern string) error
}

// RedisStore implements [Store] on a shared Redis instance.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed cache store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get implements [Store].
func (store *RedisStore) Get(context context.Context, key string) ([]byte, error) {
	payload, err := store.client.Get(context, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("cache: get %q failed: %w", key, err)
	}

	return payload, nil
}

// Set implements [Store].
func (store *RedisStore) Set(context context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := store.client.Set(context, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %q failed: %w", key, err)
	}

	return nil
}

// Delete implements [Store].
func (store *RedisStore) Delete(context context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := store.client.Del(context, keys...).Err(); err != nil {
		return fmt.Errorf("cache: delete %v failed: %w", keys, err)
	}

	return nil
}

// DeleteByPattern implements [Store].
//
// # Scanning
//
// Keys are discovered with incremental SCAN rather than KEYS so the sweep
// never blocks the shared Redis instance, then deleted in batches.
func (store *RedisStore) DeleteByPattern(context context.Context, pattern string) error {
	var cursor uint64

	for {
		keys, nextCursor, err := store.client.Scan(context, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("cache: scan %q failed: %w", pattern, err)
		}

		if len(keys) > 0 {
			if err := store.client.Del(context, keys...).Err(); err != nil {
				return fmt.Errorf("cache: bulk delete for %q failed: %w", pattern, err)
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return nil
}
