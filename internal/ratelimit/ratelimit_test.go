package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/hushbox/internal/clock"
	"github.com/stretchr/testify/require"
)

func TestMemoryBucketBurstThenRefill(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	var limiter Limiter = NewMemoryBucket(clk)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "signin:1.2.3.4", 0.5, 3)
		require.NoError(t, err)
		require.True(t, res.Allowed, "request %d", i)
		require.Equal(t, 3, res.Limit)
	}

	res, err := limiter.Allow(ctx, "signin:1.2.3.4", 0.5, 3)
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.Equal(t, 2*time.Second, res.RetryAfter)

	// Another key has its own bucket.
	res, err = limiter.Allow(ctx, "signin:5.6.7.8", 0.5, 3)
	require.NoError(t, err)
	require.True(t, res.Allowed)

	clk.Advance(2 * time.Second)
	res, err = limiter.Allow(ctx, "signin:1.2.3.4", 0.5, 3)
	require.NoError(t, err)
	require.True(t, res.Allowed)
	require.Zero(t, res.Remaining)
}

func TestMemoryBucketNeverExceedsBurst(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	limiter := NewMemoryBucket(clk)
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "k", 1, 2)
	require.NoError(t, err)
	clk.Advance(time.Second)
	res, err := limiter.Allow(ctx, "k", 1, 2)
	require.NoError(t, err)
	require.True(t, res.Allowed)
	require.Equal(t, 1, res.Remaining)
}

func TestMemoryBucketExpiresIdleBuckets(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	limiter := NewMemoryBucket(clk)
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "k", 1, 1)
	require.NoError(t, err)
	clk.Advance(bucketTTL(1, 1))

	limiter.mu.Lock()
	limiter.sweep(clk.Now())
	size := len(limiter.buckets)
	limiter.mu.Unlock()
	require.Zero(t, size)
}

func TestAllowRejectsBadArguments(t *testing.T) {
	limiter := NewMemoryBucket(clock.New())
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "", 1, 1)
	require.Error(t, err)
	_, err = limiter.Allow(ctx, "k", 0, 1)
	require.Error(t, err)
	_, err = limiter.Allow(ctx, "k", 1, 0)
	require.Error(t, err)

	var bucket *TokenBucket
	res, err := bucket.Allow(ctx, "k", 1, 1)
	require.Error(t, err)
	require.False(t, res.Allowed)
}

func TestParseTokens(t *testing.T) {
	v, err := parseTokens("2.5")
	require.NoError(t, err)
	require.InDelta(t, 2.5, v, 1e-9)

	v, err = parseTokens(int64(3))
	require.NoError(t, err)
	require.InDelta(t, 3.0, v, 1e-9)

	_, err = parseTokens("nope")
	require.Error(t, err)
	_, err = parseTokens([]byte("1"))
	require.Error(t, err)
}

func TestBucketTTL(t *testing.T) {
	require.Equal(t, 20*time.Second, bucketTTL(0.5, 5))
	require.Equal(t, time.Second, bucketTTL(100, 1))
	require.Equal(t, time.Second, bucketTTL(0, 1))
}
