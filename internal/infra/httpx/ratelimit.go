// Package httpx provides the shared outbound-call infrastructure: named
// rate-limit buckets, retry with exponential backoff, and the HTTP
// transport that every remote lookup goes through.
package httpx

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"contract-chat-mapping/internal/metrics"
)

// RateLimiter paces outbound calls per named resource. Each bucket
// enforces a requests-per-minute quota with grants spaced 60/qpm apart,
// measured from the previous granted slot. Burst is fixed at 1 so a
// quiet period never accumulates credit beyond a single call.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewRateLimiter creates buckets for each named quota. Quotas below 1
// are clamped to 1.
func NewRateLimiter(qpm map[string]int) *RateLimiter {
	rl := &RateLimiter{buckets: make(map[string]*rate.Limiter)}
	for name, q := range qpm {
		rl.buckets[name] = rate.NewLimiter(perMinute(q), 1)
	}
	return rl
}

// Acquire blocks until the named bucket grants a slot. Unknown names
// are no-ops. The bucket lookup holds the limiter lock; the wait itself
// happens outside it so concurrent callers against other buckets are
// not serialized.
func (rl *RateLimiter) Acquire(ctx context.Context, name string) error {
	rl.mu.Lock()
	b := rl.buckets[name]
	rl.mu.Unlock()
	if b == nil {
		return nil
	}

	start := time.Now()
	if err := b.Wait(ctx); err != nil {
		return err
	}
	if wait := time.Since(start); wait > 0 {
		metrics.RateLimitWait.WithLabelValues(name).Add(wait.Seconds())
	}
	return nil
}

// SetQPM reconfigures a bucket's quota, creating the bucket if absent.
func (rl *RateLimiter) SetQPM(name string, qpm int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if b, ok := rl.buckets[name]; ok {
		b.SetLimit(perMinute(qpm))
		return
	}
	rl.buckets[name] = rate.NewLimiter(perMinute(qpm), 1)
}

func perMinute(qpm int) rate.Limit {
	if qpm < 1 {
		qpm = 1
	}
	return rate.Limit(float64(qpm) / 60.0)
}
