package stage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(name string) Stage {
	return Stage{Name: name, Run: func(context.Context) error { return nil }}
}

func TestRunner_AllStagesSucceed(t *testing.T) {
	var order []string
	mk := func(name string) Stage {
		return Stage{Name: name, Run: func(context.Context) error {
			order = append(order, name)
			return nil
		}}
	}

	sum := NewRunner(time.Second).Run(context.Background(), []Stage{mk("scrape"), mk("sheets"), mk("charts")})

	assert.True(t, sum.OK())
	assert.Empty(t, sum.Failed())
	assert.Equal(t, []string{"scrape", "sheets", "charts"}, order)
	require.Len(t, sum.Results, 3)
	assert.Equal(t, "sheets", sum.Results[1].Name)
}

func TestRunner_FailureDoesNotStopLaterStages(t *testing.T) {
	boom := errors.New("upload refused")
	ran := false

	sum := NewRunner(time.Second).Run(context.Background(), []Stage{
		ok("scrape"),
		{Name: "sheets", Run: func(context.Context) error { return boom }},
		{Name: "charts", Run: func(context.Context) error { ran = true; return nil }},
	})

	assert.False(t, sum.OK())
	assert.True(t, ran)
	assert.Equal(t, []string{"sheets"}, sum.Failed())
	assert.ErrorIs(t, sum.Results[1].Err, boom)
	assert.True(t, sum.Results[2].OK())
}

func TestRunner_Timeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	sum := NewRunner(30*time.Millisecond).Run(context.Background(), []Stage{
		{Name: "forecast", Run: func(context.Context) error {
			<-release
			return nil
		}},
	})

	assert.Less(t, time.Since(start), 2*time.Second)
	require.Len(t, sum.Results, 1)
	assert.ErrorIs(t, sum.Results[0].Err, ErrTimeout)
	assert.Equal(t, []string{"forecast"}, sum.Failed())
}

func TestRunner_RecoversPanic(t *testing.T) {
	sum := NewRunner(time.Second).Run(context.Background(), []Stage{
		{Name: "charts", Run: func(context.Context) error { panic("nil chart") }},
		ok("after"),
	})

	require.Error(t, sum.Results[0].Err)
	assert.Contains(t, sum.Results[0].Err.Error(), "nil chart")
	assert.True(t, sum.Results[1].OK())
}

func TestRunner_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	release := make(chan struct{})
	defer close(release)

	sum := NewRunner(time.Minute).Run(ctx, []Stage{
		{Name: "scrape", Run: func(context.Context) error {
			<-release
			return nil
		}},
	})

	assert.ErrorIs(t, sum.Results[0].Err, context.Canceled)
	assert.NotErrorIs(t, sum.Results[0].Err, ErrTimeout)
}

func TestRunner_ObserverSeesEveryStage(t *testing.T) {
	var seen []Result
	r := NewRunner(time.Second, WithObserver(func(res Result) { seen = append(seen, res) }))

	r.Run(context.Background(), []Stage{
		ok("scrape"),
		{Name: "sheets", Run: func(context.Context) error { return errors.New("no") }},
	})

	require.Len(t, seen, 2)
	assert.True(t, seen[0].OK())
	assert.False(t, seen[1].OK())
}

func TestRunner_DefaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, NewRunner(0).timeout)
}

func TestSummary_Empty(t *testing.T) {
	sum := NewRunner(time.Second).Run(context.Background(), nil)
	assert.True(t, sum.OK())
	assert.Empty(t, sum.Results)
	sum.Log()
}
