// Package fetcher downloads source pages with per-host rate limiting,
// retries, and circuit breaking.
package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gazette-evn/colorado-snow-conditions/internal/resilience"
)

// ErrBodyTooLarge is returned when a response exceeds Options.MaxBodyBytes.
var ErrBodyTooLarge = eris.New("fetcher: response body too large")

// Fetcher retrieves the body of a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Options configures an HTTP fetcher.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// RatePerSec is the starting request rate allowed per host.
	RatePerSec float64
	Retry      resilience.Policy
	Breaker    resilience.BreakerSettings
	// MaxBodyBytes caps how much of a response is read.
	MaxBodyBytes int64
	// Client replaces the default HTTP client, mainly for tests.
	Client *http.Client
}

// HTTP is a Fetcher over net/http. Each host gets its own adaptive limiter
// and circuit breaker, created on first use.
type HTTP struct {
	client *http.Client
	opts   Options

	mu       sync.Mutex
	limiters map[string]*AdaptiveLimiter
	breakers map[string]*gobreaker.CircuitBreaker
}

// New creates an HTTP fetcher.
func New(opts Options) *HTTP {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 2
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "snowcli/1.0"
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 16 << 20
	}
	if opts.Retry.Attempts <= 0 {
		opts.Retry = resilience.DefaultPolicy()
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &HTTP{
		client:   client,
		opts:     opts,
		limiters: make(map[string]*AdaptiveLimiter),
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

func (f *HTTP) hostState(host string) (*AdaptiveLimiter, *gobreaker.CircuitBreaker) {
	f.mu.Lock()
	defer f.mu.Unlock()

	lim, ok := f.limiters[host]
	if !ok {
		lim = NewAdaptiveLimiter(rate.Limit(f.opts.RatePerSec), 1)
		f.limiters[host] = lim
	}
	cb, ok := f.breakers[host]
	if !ok {
		cb = resilience.NewBreaker(host, f.opts.Breaker)
		f.breakers[host] = cb
	}
	return lim, cb
}

// Fetch GETs rawURL and returns its body. 429 and 5xx responses and network
// failures are retried; other non-200 statuses fail at once.
func (f *HTTP) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse url %q", rawURL)
	}
	lim, cb := f.hostState(u.Host)

	policy := f.opts.Retry
	if policy.Notify == nil {
		policy.Notify = resilience.LogRetries(u.Host, "fetch")
	}

	body, err := resilience.Retry(ctx, policy, func(ctx context.Context) ([]byte, error) {
		if err := lim.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetcher: rate limiter wait")
		}
		return resilience.Guard(cb, func() ([]byte, error) {
			return f.get(ctx, rawURL, lim)
		})
	})
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: get %s", rawURL)
	}
	return body, nil
}

func (f *HTTP) get(ctx context.Context, rawURL string, lim *AdaptiveLimiter) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/json;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	zap.L().Debug("fetched",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode == http.StatusTooManyRequests {
		lim.OnRateLimit()
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resilience.NewStatusError(rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > f.opts.MaxBodyBytes {
		return nil, eris.Wrapf(ErrBodyTooLarge, "%s exceeds %d bytes", rawURL, f.opts.MaxBodyBytes)
	}
	lim.OnSuccess()
	return body, nil
}
