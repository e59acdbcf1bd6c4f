// Copyright (c) 2026 Sajag Subedi. All rights reserved.

package ratelimit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/ratelimit"
)

// fakeCounter is an in-memory Counter that can simulate window expiry and
// store failures.
type fakeCounter struct {
	counts   map[string]int64
	windows  map[string]time.Duration
	failWith error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{
		counts:  map[string]int64{},
		windows: map[string]time.Duration{},
	}
}

func (counter *fakeCounter) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	if counter.failWith != nil {
		return 0, counter.failWith
	}
	counter.counts[key]++
	if counter.counts[key] == 1 {
		counter.windows[key] = window
	}
	return counter.counts[key], nil
}

// expire simulates the window key lapsing in the store.
func (counter *fakeCounter) expire(key string) {
	delete(counter.counts, key)
	delete(counter.windows, key)
}

/*
TestFixedWindowLimiter_Consume drains a quota of N and verifies request N is
the last one admitted, with the remaining budget counting down to zero.
*/
func TestFixedWindowLimiter_Consume(t *testing.T) {
	const quota = 5

	counter := newFakeCounter()
	limiter := ratelimit.NewFixedWindowLimiter(counter)

	for i := 1; i <= quota; i++ {
		result, err := limiter.Consume(context.Background(), "ratelimit:gw:203.0.113.7", quota, time.Second)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d should fit the window", i)
		assert.Equal(t, quota-i, result.Remaining)
	}

	// Request N+1 exceeds the window.
	result, err := limiter.Consume(context.Background(), "ratelimit:gw:203.0.113.7", quota, time.Second)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
}

/*
TestFixedWindowLimiter_WindowReset verifies a lapsed window restores the full
quota and re-arms the expiry on the first hit of the new window.
*/
func TestFixedWindowLimiter_WindowReset(t *testing.T) {
	const quota = 2

	counter := newFakeCounter()
	limiter := ratelimit.NewFixedWindowLimiter(counter)

	for i := 0; i <= quota; i++ {
		_, err := limiter.Consume(context.Background(), "ratelimit:gw:203.0.113.7", quota, time.Second)
		require.NoError(t, err)
	}
	counter.expire("ratelimit:gw:203.0.113.7")

	result, err := limiter.Consume(context.Background(), "ratelimit:gw:203.0.113.7", quota, time.Second)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, quota-1, result.Remaining)
	assert.Equal(t, time.Second, counter.windows["ratelimit:gw:203.0.113.7"])
}

/*
TestFixedWindowLimiter_KeysAreIndependent verifies one client's exhausted
window does not spend another client's quota.
*/
func TestFixedWindowLimiter_KeysAreIndependent(t *testing.T) {
	const quota = 1

	counter := newFakeCounter()
	limiter := ratelimit.NewFixedWindowLimiter(counter)

	_, err := limiter.Consume(context.Background(), "ratelimit:gw:203.0.113.7", quota, time.Second)
	require.NoError(t, err)
	result, err := limiter.Consume(context.Background(), "ratelimit:gw:203.0.113.7", quota, time.Second)
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	result, err = limiter.Consume(context.Background(), "ratelimit:gw:203.0.113.8", quota, time.Second)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

/*
TestFixedWindowLimiter_CounterFailure verifies a store error surfaces as an
error, never as an admission.
*/
func TestFixedWindowLimiter_CounterFailure(t *testing.T) {
	counter := newFakeCounter()
	counter.failWith = errors.New("counter is down")
	limiter := ratelimit.NewFixedWindowLimiter(counter)

	result, err := limiter.Consume(context.Background(), "ratelimit:gw:203.0.113.7", 10, time.Second)
	require.Error(t, err)
	assert.False(t, result.Allowed)
}
