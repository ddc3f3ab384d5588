// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(cfg Config, now *time.Time) *Limiter {
	l := New(cfg)
	l.now = func() time.Time { return *now }
	l.lastCleanup = *now
	return l
}

func TestLimiter_BurstThenReject(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newTestLimiter(Config{Rate: 1, Burst: 2}, &now)

	ok, _ := l.Allow("alice")
	assert.True(t, ok)
	ok, _ = l.Allow("alice")
	assert.True(t, ok)

	ok, retry := l.Allow("alice")
	assert.False(t, ok)
	assert.InDelta(t, time.Second.Seconds(), retry.Seconds(), 0.01)

	ok, _ = l.Allow("bob")
	assert.True(t, ok, "buckets are per key")

	now = now.Add(time.Second)
	ok, _ = l.Allow("alice")
	assert.True(t, ok, "token refills")
}

func TestLimiter_RejectedCallsDoNotConsume(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newTestLimiter(Config{Rate: 1, Burst: 1}, &now)

	ok, _ := l.Allow("alice")
	assert.True(t, ok)
	for i := 0; i < 5; i++ {
		ok, _ = l.Allow("alice")
		assert.False(t, ok)
	}
	now = now.Add(time.Second)
	ok, _ = l.Allow("alice")
	assert.True(t, ok)
}

func TestLimiter_Disabled(t *testing.T) {
	l := New(Config{Rate: 0})
	for i := 0; i < 100; i++ {
		ok, _ := l.Allow("alice")
		assert.True(t, ok)
	}

	var nilLimiter *Limiter
	ok, _ := nilLimiter.Allow("alice")
	assert.True(t, ok)
}

func TestLimiter_CleanupIdle(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newTestLimiter(Config{Rate: 1, Burst: 1, IdleTTL: time.Minute}, &now)

	l.Allow("alice")
	l.Allow("bob")
	assert.Equal(t, 2, l.Len())

	now = now.Add(2 * time.Minute)
	l.Allow("carol")
	assert.Equal(t, 1, l.Len())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 5, cfg.Burst)
	assert.InDelta(t, 0.5, float64(cfg.Rate), 1e-9)
}
