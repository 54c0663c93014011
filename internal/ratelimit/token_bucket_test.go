package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisBucket(t *testing.T) (*TokenBucket, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	srv.SetTime(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))

	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTokenBucket(client), srv
}

func TestTokenBucketBurstThenRefill(t *testing.T) {
	bucket, srv := newRedisBucket(t)
	ctx := context.Background()
	key := "ratelimit:signin:1.2.3.4"

	for i := 0; i < 2; i++ {
		res, err := bucket.Allow(ctx, key, 1, 2)
		require.NoError(t, err)
		require.True(t, res.Allowed, "request %d", i)
		require.Equal(t, 2, res.Limit)
	}

	res, err := bucket.Allow(ctx, key, 1, 2)
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.Zero(t, res.Remaining)
	require.Equal(t, time.Second, res.RetryAfter)

	// Other clients keep their own bucket.
	res, err = bucket.Allow(ctx, "ratelimit:signin:5.6.7.8", 1, 2)
	require.NoError(t, err)
	require.True(t, res.Allowed)

	srv.SetTime(time.Date(2025, 3, 1, 9, 0, 1, 0, time.UTC))
	res, err = bucket.Allow(ctx, key, 1, 2)
	require.NoError(t, err)
	require.True(t, res.Allowed)
}

func TestTokenBucketKeepsFractionalTokens(t *testing.T) {
	bucket, srv := newRedisBucket(t)
	ctx := context.Background()
	key := "ratelimit:message_send:1.2.3.4"

	res, err := bucket.Allow(ctx, key, 0.5, 1)
	require.NoError(t, err)
	require.True(t, res.Allowed)

	// Half a token has refilled: still denied, and the wait is for the other half.
	srv.SetTime(time.Date(2025, 3, 1, 9, 0, 1, 0, time.UTC))
	res, err = bucket.Allow(ctx, key, 0.5, 1)
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.Equal(t, time.Second, res.RetryAfter)

	srv.SetTime(time.Date(2025, 3, 1, 9, 0, 2, 0, time.UTC))
	res, err = bucket.Allow(ctx, key, 0.5, 1)
	require.NoError(t, err)
	require.True(t, res.Allowed)
}

func TestTokenBucketSetsExpiry(t *testing.T) {
	bucket, srv := newRedisBucket(t)

	_, err := bucket.Allow(context.Background(), "ratelimit:signin:9.9.9.9", 1, 2)
	require.NoError(t, err)
	require.True(t, srv.Exists("ratelimit:signin:9.9.9.9"))
	require.Equal(t, bucketTTL(1, 2), srv.TTL("ratelimit:signin:9.9.9.9"))
}

func TestTokenBucketRejectsInvalidPolicy(t *testing.T) {
	bucket, _ := newRedisBucket(t)

	_, err := bucket.Allow(context.Background(), "k", 0, 1)
	require.Error(t, err)
	_, err = bucket.Allow(context.Background(), "", 1, 1)
	require.Error(t, err)
}

func TestTokenBucketBackendDown(t *testing.T) {
	bucket, srv := newRedisBucket(t)
	srv.Close()

	res, err := bucket.Allow(context.Background(), "k", 1, 1)
	require.Error(t, err)
	require.False(t, res.Allowed)
}
