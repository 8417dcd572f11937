// Package resilience provides retry with backoff, transient-error
// classification, and circuit breakers for calls to remote sources.
package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Policy controls how an operation is retried.
type Policy struct {
	// Attempts is the total number of tries, including the first.
	Attempts int
	// Base is the delay before the first retry.
	Base time.Duration
	// Cap bounds any single delay.
	Cap time.Duration
	// Factor multiplies the delay after each retry.
	Factor float64
	// Jitter spreads each delay by ±Jitter of its value.
	Jitter float64
	// Retryable decides whether an error is worth another try. Nil means
	// Transient.
	Retryable func(error) bool
	// Notify runs before each backoff sleep.
	Notify func(attempt int, err error)
	// Clock drives the backoff sleeps. Nil means the real clock.
	Clock clockwork.Clock
}

// DefaultPolicy is three attempts starting at 500ms and doubling.
func DefaultPolicy() Policy {
	return Policy{
		Attempts: 3,
		Base:     500 * time.Millisecond,
		Cap:      10 * time.Second,
		Factor:   2,
		Jitter:   0.2,
	}
}

func (p Policy) normalized() Policy {
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	if p.Base <= 0 {
		p.Base = 500 * time.Millisecond
	}
	if p.Cap < p.Base {
		p.Cap = p.Base
	}
	if p.Factor < 1 {
		p.Factor = 1
	}
	if p.Jitter < 0 {
		p.Jitter = 0
	}
	if p.Retryable == nil {
		p.Retryable = Transient
	}
	if p.Clock == nil {
		p.Clock = clockwork.NewRealClock()
	}
	return p
}

// Delay returns the sleep before retry n (zero-based), jitter included.
func (p Policy) Delay(n int) time.Duration {
	p = p.normalized()
	d := math.Min(float64(p.Base)*math.Pow(p.Factor, float64(n)), float64(p.Cap))
	if p.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * p.Jitter
	}
	return time.Duration(math.Max(d, 0))
}

// Retry runs op until it succeeds, returns a non-retryable error, runs out of
// attempts, or ctx ends. The last error is returned on failure.
func Retry[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	p = p.normalized()

	var zero T
	for n := 0; ; n++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil || !p.Retryable(err) || n+1 >= p.Attempts {
			return zero, err
		}
		if p.Notify != nil {
			p.Notify(n+1, err)
		}
		select {
		case <-ctx.Done():
			return zero, err
		case <-p.Clock.After(p.Delay(n)):
		}
	}
}

// RetryErr is Retry for operations without a result.
func RetryErr(ctx context.Context, p Policy, op func(context.Context) error) error {
	_, err := Retry(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// LogRetries returns a Notify hook that logs each retry.
func LogRetries(source, operation string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying",
			zap.String("source", source),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
