// Package stage runs the named steps of an update in order and reports how
// each one went.
package stage

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a stage when the runner is given none.
const DefaultTimeout = 5 * time.Minute

// ErrTimeout marks a stage that overran its timeout.
var ErrTimeout = eris.New("stage: timed out")

// Stage is one named step of an update.
type Stage struct {
	Name string
	Run  func(ctx context.Context) error
}

// Result is the outcome of one stage.
type Result struct {
	Name    string
	Err     error
	Elapsed time.Duration
}

// OK reports whether the stage succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Summary is the outcome of a whole run.
type Summary struct {
	Results []Result
	Elapsed time.Duration
}

// OK reports whether every stage succeeded.
func (s Summary) OK() bool {
	for _, r := range s.Results {
		if !r.OK() {
			return false
		}
	}
	return true
}

// Failed returns the names of the stages that failed.
func (s Summary) Failed() []string {
	var out []string
	for _, r := range s.Results {
		if !r.OK() {
			out = append(out, r.Name)
		}
	}
	return out
}

// Log writes one line per stage and a closing line with the totals.
func (s Summary) Log() {
	for _, r := range s.Results {
		if r.OK() {
			zap.L().Info("stage: ok",
				zap.String("stage", r.Name),
				zap.Duration("elapsed", r.Elapsed),
			)
			continue
		}
		zap.L().Error("stage: failed",
			zap.String("stage", r.Name),
			zap.Duration("elapsed", r.Elapsed),
			zap.Error(r.Err),
		)
	}
	zap.L().Info("stage: summary",
		zap.Int("stages", len(s.Results)),
		zap.Strings("failed", s.Failed()),
		zap.Duration("elapsed", s.Elapsed),
		zap.Bool("ok", s.OK()),
	)
}

// Option configures a Runner.
type Option func(*Runner)

// WithObserver registers a callback invoked after every stage.
func WithObserver(fn func(Result)) Option {
	return func(r *Runner) {
		r.observe = fn
	}
}

// Runner executes stages sequentially. A failed stage does not stop the
// ones after it.
type Runner struct {
	timeout time.Duration
	observe func(Result)
}

// NewRunner creates a Runner with the given per-stage timeout.
func NewRunner(timeout time.Duration, opts ...Option) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	r := &Runner{timeout: timeout}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run executes stages in order and returns the summary.
func (r *Runner) Run(ctx context.Context, stages []Stage) Summary {
	start := time.Now()
	var sum Summary
	for _, s := range stages {
		zap.L().Info("stage: starting", zap.String("stage", s.Name))
		res := r.runOne(ctx, s)
		if r.observe != nil {
			r.observe(res)
		}
		sum.Results = append(sum.Results, res)
	}
	sum.Elapsed = time.Since(start)
	return sum
}

func (r *Runner) runOne(ctx context.Context, s Stage) Result {
	start := time.Now()
	sctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- eris.Errorf("stage: %s panicked: %v", s.Name, p)
			}
		}()
		done <- s.Run(sctx)
	}()

	res := Result{Name: s.Name}
	select {
	case err := <-done:
		res.Err = err
	case <-sctx.Done():
		if ctx.Err() != nil {
			res.Err = eris.Wrapf(ctx.Err(), "stage: %s cancelled", s.Name)
		} else {
			res.Err = eris.Wrapf(ErrTimeout, "%s after %s", s.Name, r.timeout)
		}
	}
	res.Elapsed = time.Since(start)
	return res
}
