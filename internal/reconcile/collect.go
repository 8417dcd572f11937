package reconcile

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gazette-evn/colorado-snow-conditions/internal/model"
	"github.com/gazette-evn/colorado-snow-conditions/internal/resilience"
	"github.com/gazette-evn/colorado-snow-conditions/internal/source"
)

// ErrAdapterTimeout marks an adapter that did not answer in time.
var ErrAdapterTimeout = eris.New("reconcile: adapter timed out")

// Collect runs every adapter concurrently, one worker each, and waits for all
// of them. Each adapter gets its own timeout; one that overruns is recorded as
// failed and its result, if it ever arrives, is discarded. Results come back
// in the order adapters were given, not completion order. Collect never fails
// as a whole.
func Collect(ctx context.Context, adapters []source.Adapter, timeout time.Duration) []SourceResult {
	results := make([]SourceResult, len(adapters))
	if len(adapters) == 0 {
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(adapters))

	for i, a := range adapters {
		g.Go(func() error {
			results[i] = runAdapter(gctx, a, timeout)
			res := results[i]
			if res.OK() {
				zap.L().Info("adapter finished",
					zap.String("source", string(res.Source)),
					zap.Int("records", len(res.Records)),
					zap.Duration("elapsed", res.Elapsed),
				)
			} else {
				zap.L().Error("adapter failed",
					zap.String("source", string(res.Source)),
					zap.Int("records", len(res.Records)),
					zap.Duration("elapsed", res.Elapsed),
					zap.String("error_type", resilience.ClassifyError(res.Err)),
					zap.Error(res.Err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

type fetchOutcome struct {
	recs []model.ResortRecord
	err  error
}

func runAdapter(ctx context.Context, a source.Adapter, timeout time.Duration) SourceResult {
	start := time.Now()
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan fetchOutcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fetchOutcome{err: eris.Errorf("reconcile: adapter %s panicked: %v", a.Name(), p)}
			}
		}()
		recs, err := a.Fetch(actx)
		done <- fetchOutcome{recs: recs, err: err}
	}()

	res := SourceResult{Source: a.Name()}
	select {
	case out := <-done:
		res.Records, res.Err = out.recs, out.err
		if res.Err == nil && len(res.Records) == 0 {
			res.Err = source.ErrNoRecords
		}
	case <-actx.Done():
		if ctx.Err() != nil {
			res.Err = eris.Wrapf(ctx.Err(), "reconcile: %s cancelled", a.Name())
		} else {
			res.Err = eris.Wrapf(ErrAdapterTimeout, "%s after %s", a.Name(), timeout)
		}
	}
	res.Elapsed = time.Since(start)
	return res
}
