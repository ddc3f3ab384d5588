// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package ratelimit holds per-user token buckets for expensive endpoints.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds rate limiting configuration.
type Config struct {
	// Rate is the refill rate per key in tokens per second.
	Rate rate.Limit
	// Burst is the bucket size per key.
	Burst int
	// IdleTTL drops buckets not used for this long.
	IdleTTL time.Duration
}

// DefaultConfig allows one chat message every two seconds with a burst of 5.
func DefaultConfig() Config {
	return Config{
		Rate:    0.5,
		Burst:   5,
		IdleTTL: 10 * time.Minute,
	}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per key.
type Limiter struct {
	config Config
	now    func() time.Time

	mu          sync.Mutex
	buckets     map[string]*bucket
	lastCleanup time.Time
}

// New creates a limiter. A non-positive rate disables limiting.
func New(config Config) *Limiter {
	if config.Burst <= 0 {
		config.Burst = 1
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = DefaultConfig().IdleTTL
	}
	return &Limiter{
		config:      config,
		now:         time.Now,
		buckets:     make(map[string]*bucket),
		lastCleanup: time.Now(),
	}
}

// Allow consumes a token for key. When rejected it returns how long until a
// token is available.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	if l == nil || l.config.Rate <= 0 {
		return true, 0
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.cleanupLocked(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.config.Rate, l.config.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, 0
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) cleanupLocked(now time.Time) {
	if now.Sub(l.lastCleanup) < l.config.IdleTTL {
		return
	}
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.config.IdleTTL {
			delete(l.buckets, key)
		}
	}
	l.lastCleanup = now
}
