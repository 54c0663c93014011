package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/smallbiznis/hushbox/internal/clock"
)

const memorySweepThreshold = 10000

// MemoryBucket is a process-local Limiter with the same refill rules as TokenBucket.
type MemoryBucket struct {
	clock   clock.Clock
	mu      sync.Mutex
	buckets map[string]*memoryState
}

type memoryState struct {
	tokens    float64
	ts        time.Time
	expiresAt time.Time
}

func NewMemoryBucket(clk clock.Clock) *MemoryBucket {
	if clk == nil {
		clk = clock.New()
	}
	return &MemoryBucket{
		clock:   clk,
		buckets: make(map[string]*memoryState),
	}
}

func (m *MemoryBucket) Allow(_ context.Context, key string, rate float64, burst int) (*Result, error) {
	if err := validate(key, rate, burst); err != nil {
		return &Result{Allowed: false}, err
	}

	now := m.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.buckets) >= memorySweepThreshold {
		m.sweep(now)
	}

	state, ok := m.buckets[key]
	if !ok || !now.Before(state.expiresAt) {
		state = &memoryState{tokens: float64(burst), ts: now}
		m.buckets[key] = state
	} else {
		delta := now.Sub(state.ts)
		if delta < 0 {
			delta = 0
		}
		state.tokens = math.Min(float64(burst), state.tokens+delta.Seconds()*rate)
		state.ts = now
	}

	allowed := false
	if state.tokens >= 1 {
		allowed = true
		state.tokens--
	}
	state.expiresAt = now.Add(bucketTTL(rate, burst))

	return newResult(allowed, state.tokens, rate, burst), nil
}

func (m *MemoryBucket) sweep(now time.Time) {
	for key, state := range m.buckets {
		if !now.Before(state.expiresAt) {
			delete(m.buckets, key)
		}
	}
}
