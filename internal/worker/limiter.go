package worker

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// bucket is one provider's token bucket plus a pause imposed by the
// provider itself through a 429.
type bucket struct {
	tokens      *rate.Limiter
	pausedUntil time.Time
}

// Limiter hands out tokens per key, one bucket per provider name, so
// concurrent cases sharing an API key share its budget. A Penalize on a
// key holds back every caller of that key, not only the one that was
// rate limited.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    rate.Limit
	burst   int
	now     func() time.Time
}

// NewLimiter creates a limiter. A non-positive rate disables throttling;
// a non-positive burst means 5.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    limitOf(requestsPerSecond),
		burst:   burst,
		now:     time.Now,
	}
}

func limitOf(rps float64) rate.Limit {
	if rps <= 0 {
		return rate.Inf
	}
	return rate.Limit(rps)
}

// Wait blocks until any pause on key has lapsed and a token is available,
// or ctx is done.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	for {
		pause := l.pauseLeft(key)
		if pause <= 0 {
			break
		}
		timer := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		// Another caller may have extended the pause meanwhile.
	}
	return l.tokens(key).Wait(ctx)
}

// Allow takes a token without waiting. A paused key never allows.
func (l *Limiter) Allow(key string) bool {
	if l.pauseLeft(key) > 0 {
		return false
	}
	return l.tokens(key).Allow()
}

// Penalize pauses key for d. Overlapping penalties keep the later end.
func (l *Limiter) Penalize(key string, d time.Duration) {
	if d <= 0 {
		return
	}
	b := l.bucket(key)
	l.mu.Lock()
	defer l.mu.Unlock()
	if until := l.now().Add(d); until.After(b.pausedUntil) {
		b.pausedUntil = until
	}
}

// SetRate replaces the bucket for one key, e.g. a local ollama daemon
// that needs no throttling (rps <= 0). Any pause on the key is kept.
func (l *Limiter) SetRate(key string, requestsPerSecond float64, burst int) {
	if burst <= 0 {
		burst = l.burst
	}
	b := l.bucket(key)
	l.mu.Lock()
	defer l.mu.Unlock()
	b.tokens = rate.NewLimiter(limitOf(requestsPerSecond), burst)
}

func (l *Limiter) pauseLeft(key string) time.Duration {
	b := l.bucket(key)
	l.mu.Lock()
	defer l.mu.Unlock()
	return b.pausedUntil.Sub(l.now())
}

func (l *Limiter) tokens(key string) *rate.Limiter {
	b := l.bucket(key)
	l.mu.Lock()
	defer l.mu.Unlock()
	return b.tokens
}

func (l *Limiter) bucket(key string) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[key] = b
	}
	return b
}
