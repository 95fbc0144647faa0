package ratelimit

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	tokens float64
	last   time.Time
}

// Limiter is a keyed token bucket. Every key gets its own bucket with the
// same capacity and refill rate.
type Limiter struct {
	mu         sync.Mutex
	m          map[string]*bucket
	capacity   float64
	refillRate float64 // tokens per second
	idle       time.Duration
	lastSweep  time.Time
	now        func() time.Time
}

// New creates a limiter that allows bursts of capacity and refills
// perSecond tokens every second.
func New(capacity, perSecond float64) *Limiter {
	if capacity < 1 {
		capacity = 1
	}
	l := &Limiter{
		m:          make(map[string]*bucket),
		capacity:   capacity,
		refillRate: perSecond,
		now:        time.Now,
	}
	if perSecond > 0 {
		l.idle = time.Duration(capacity / perSecond * float64(time.Second))
	}
	return l
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	return l.reserve(key) == 0
}

// Wait blocks until a token for key is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	for {
		delay := l.reserve(key)
		if delay == 0 {
			return nil
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// reserve consumes a token and returns 0, or returns how long until one is due.
func (l *Limiter) reserve(key string) time.Duration {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	b, ok := l.m[key]
	if !ok {
		b = &bucket{tokens: l.capacity, last: now}
		l.m[key] = b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens += elapsed * l.refillRate
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return 0
	}
	if l.refillRate <= 0 {
		return time.Second
	}
	return time.Duration((1 - b.tokens) / l.refillRate * float64(time.Second))
}

// sweep drops buckets untouched for long enough to have refilled completely;
// a fresh bucket for the same key is identical. Caller holds mu.
func (l *Limiter) sweep(now time.Time) {
	if l.idle <= 0 || now.Sub(l.lastSweep) < l.idle {
		return
	}
	l.lastSweep = now
	for key, b := range l.m {
		if now.Sub(b.last) >= l.idle {
			delete(l.m, key)
		}
	}
}
