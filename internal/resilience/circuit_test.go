package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-pricing/internal/resilience"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

var errDown = errors.New("redis down")

func TestBreakerOpensAndRecovers(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	breaker := resilience.NewBreaker(2, 0.5, 10*time.Second).WithTarget("cache_open_recover").WithClock(clock.now)
	ctx := context.Background()

	fail := func(context.Context) error { return errDown }
	ok := func(context.Context) error { return nil }

	require.ErrorIs(t, breaker.Do(ctx, fail), errDown)
	require.ErrorIs(t, breaker.Do(ctx, fail), errDown)
	require.Equal(t, resilience.Open, breaker.State())

	calls := 0
	err := breaker.Do(ctx, func(context.Context) error { calls++; return nil })
	require.ErrorIs(t, err, resilience.ErrOpenCircuit)
	require.Zero(t, calls)

	clock.advance(10 * time.Second)
	require.NoError(t, breaker.Do(ctx, ok))
	require.Equal(t, resilience.Closed, breaker.State())

	require.Equal(t, 0.0, testutil.ToFloat64(resilience.BreakerState.WithLabelValues("cache_open_recover")))
	require.Equal(t, 1.0, testutil.ToFloat64(resilience.BreakerTransitions.WithLabelValues("cache_open_recover", "closed", "open")))
	require.Equal(t, 1.0, testutil.ToFloat64(resilience.BreakerTransitions.WithLabelValues("cache_open_recover", "open", "half_open")))
	require.Equal(t, 1.0, testutil.ToFloat64(resilience.BreakerTransitions.WithLabelValues("cache_open_recover", "half_open", "closed")))
}

func TestBreakerHalfOpenAdmitsSingleProbe(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	breaker := resilience.NewBreaker(1, 1, time.Second).WithTarget("cache_single_probe").WithClock(clock.now)
	ctx := context.Background()

	require.True(t, breaker.Allow(ctx))
	breaker.Report(ctx, false)
	require.Equal(t, resilience.Open, breaker.State())

	clock.advance(time.Second)
	require.True(t, breaker.Allow(ctx))
	require.Equal(t, resilience.HalfOpen, breaker.State())
	require.False(t, breaker.Allow(ctx), "only one probe while half-open")

	breaker.Report(ctx, false)
	require.Equal(t, resilience.Open, breaker.State())
	require.False(t, breaker.Allow(ctx))
}

func TestBreakerIgnoresCallerCancellation(t *testing.T) {
	breaker := resilience.NewBreaker(1, 0.5, time.Minute).WithTarget("cache_cancel")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := breaker.Do(ctx, func(ctx context.Context) error { return ctx.Err() })
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, resilience.Closed, breaker.State())
}

func TestBreakerStaysClosedBelowRatio(t *testing.T) {
	breaker := resilience.NewBreaker(4, 0.5, time.Minute).WithTarget("cache_ratio")
	ctx := context.Background()

	for _, success := range []bool{true, true, false, true} {
		require.True(t, breaker.Allow(ctx))
		breaker.Report(ctx, success)
	}
	require.Equal(t, resilience.Closed, breaker.State())
}

func TestNilBreakerRunsCall(t *testing.T) {
	var breaker *resilience.Breaker
	require.ErrorIs(t, breaker.Do(context.Background(), func(context.Context) error { return errDown }), errDown)
}
