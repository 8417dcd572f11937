package fetcher

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// AdaptiveLimiter is a rate.Limiter that speeds up after successes and backs
// off after 429s. The rate stays within [start/4, start*2].
type AdaptiveLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	floor   rate.Limit
	ceiling rate.Limit
	limit   rate.Limit
}

// NewAdaptiveLimiter creates a limiter starting at start events per second.
func NewAdaptiveLimiter(start rate.Limit, burst int) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		limiter: rate.NewLimiter(start, burst),
		floor:   start / 4,
		ceiling: start * 2,
		limit:   start,
	}
}

// Wait blocks until a request may proceed.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// OnSuccess raises the rate by a fifth.
func (a *AdaptiveLimiter) OnSuccess() {
	a.set(a.Limit() * 1.2)
}

// OnRateLimit halves the rate.
func (a *AdaptiveLimiter) OnRateLimit() {
	a.set(a.Limit() / 2)
	zap.L().Warn("host rate limited us, slowing down", zap.Float64("rate", float64(a.Limit())))
}

// Limit returns the current rate.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.limit
}

func (a *AdaptiveLimiter) set(l rate.Limit) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.limit = min(max(l, a.floor), a.ceiling)
	a.limiter.SetLimit(a.limit)
}
