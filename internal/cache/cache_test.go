package cache

import (
	"testing"
	"time"

	authdomain "github.com/smallbiznis/hushbox/internal/auth/domain"
	"github.com/smallbiznis/hushbox/internal/clock"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpires(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	c := NewTTLCache[string, int](clk)

	c.Set("a", 1, time.Minute)
	got, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, got)

	clk.Advance(time.Minute)
	_, ok = c.Get("a")
	require.False(t, ok)
}

func TestTTLCacheIgnoresNonPositiveTTL(t *testing.T) {
	c := NewTTLCache[string, int](clock.New())
	c.Set("a", 1, 0)
	_, ok := c.Get("a")
	require.False(t, ok)
}

func TestProfileCacheKeysAreCaseSensitive(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	c := NewProfileCache(clk)

	c.Set("Alice", authdomain.PublicProfile{Username: "Alice"})
	_, ok := c.Get("alice")
	require.False(t, ok)

	got, ok := c.Get(" Alice ")
	require.True(t, ok)
	require.Equal(t, "Alice", got.Username)

	c.Set("alice", authdomain.PublicProfile{Username: "alice"})
	c.Invalidate("Alice")
	_, ok = c.Get("Alice")
	require.False(t, ok)
	got, ok = c.Get("alice")
	require.True(t, ok)
	require.Equal(t, "alice", got.Username)

	c.Set("", authdomain.PublicProfile{Username: "x"})
	_, ok = c.Get("")
	require.False(t, ok)
}

func TestProfileCacheTTL(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	c := NewProfileCache(clk)

	c.Set("bob", authdomain.PublicProfile{Username: "bob"})
	clk.Advance(defaultProfileTTL - time.Second)
	_, ok := c.Get("bob")
	require.True(t, ok)

	clk.Advance(time.Second)
	_, ok = c.Get("bob")
	require.False(t, ok)
}
