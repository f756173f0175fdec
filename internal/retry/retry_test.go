package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
	}
}

func TestComputeDelay(t *testing.T) {
	base := 100 * time.Millisecond
	max := time.Second

	assert.Equal(t, 100*time.Millisecond, ComputeDelay(1, base, max))
	assert.Equal(t, 200*time.Millisecond, ComputeDelay(2, base, max))
	assert.Equal(t, 400*time.Millisecond, ComputeDelay(3, base, max))
	assert.Equal(t, 800*time.Millisecond, ComputeDelay(4, base, max))
	assert.Equal(t, time.Second, ComputeDelay(5, base, max))
	assert.Equal(t, time.Second, ComputeDelay(500, base, max))

	// Некорректный ввод не паникует
	assert.Equal(t, base, ComputeDelay(0, base, max))
	assert.Equal(t, base, ComputeDelay(-3, base, max))
	assert.Equal(t, time.Duration(0), ComputeDelay(3, -base, max))
	assert.Equal(t, time.Duration(0), ComputeDelay(3, base, -max))
}

func TestComputeDelayMonotonicAndCapped(t *testing.T) {
	cases := []struct {
		base time.Duration
		max  time.Duration
	}{
		{0, 0},
		{time.Millisecond, 50 * time.Millisecond},
		{time.Second, 10 * time.Second},
		{3 * time.Second, 3 * time.Second},
		{time.Nanosecond, time.Duration(1<<63 - 1)},
		{time.Minute, time.Second}, // base больше потолка
	}

	for _, tc := range cases {
		prev := time.Duration(0)
		for attempt := 1; attempt <= 80; attempt++ {
			d := ComputeDelay(attempt, tc.base, tc.max)
			assert.LessOrEqual(t, d, tc.max, "base=%s max=%s attempt=%d", tc.base, tc.max, attempt)
			assert.GreaterOrEqual(t, d, prev, "base=%s max=%s attempt=%d", tc.base, tc.max, attempt)
			prev = d
		}
	}
}

func TestCappedExponentialReset(t *testing.T) {
	b := &CappedExponential{Base: 10 * time.Millisecond, Max: 35 * time.Millisecond}

	assert.Equal(t, 10*time.Millisecond, b.NextBackOff())
	assert.Equal(t, 20*time.Millisecond, b.NextBackOff())
	assert.Equal(t, 35*time.Millisecond, b.NextBackOff())

	b.Reset()
	assert.Equal(t, 10*time.Millisecond, b.NextBackOff())
}

func TestDoExhaustsRetries(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5} {
		calls := 0
		var hooks []int

		cfg := fastConfig(n)
		cfg.OnRetry = func(attempt int, err error) {
			hooks = append(hooks, attempt)
			assert.ErrorIs(t, err, errBoom)
		}

		_, err := Do(context.Background(), func(context.Context) (int, error) {
			calls++
			return 0, errBoom
		}, cfg)

		require.Error(t, err)
		var exhausted *ExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, n, exhausted.Attempts)
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, n, calls)
		assert.Len(t, hooks, n-1)
		for i, attempt := range hooks {
			assert.Equal(t, i+1, attempt)
		}
	}
}

func TestDoShortCircuitsOnSuccess(t *testing.T) {
	const n = 5
	for k := 1; k <= n; k++ {
		calls := 0
		res, err := Do(context.Background(), func(context.Context) (string, error) {
			calls++
			if calls < k {
				return "", errBoom
			}
			return "ok", nil
		}, fastConfig(n))

		require.NoError(t, err)
		assert.Equal(t, "ok", res)
		assert.Equal(t, k, calls)
	}
}

func TestDoRejectsInvalidConfig(t *testing.T) {
	called := false
	op := func(context.Context) (int, error) {
		called = true
		return 1, nil
	}

	for _, cfg := range []Config{
		{MaxAttempts: 0},
		{MaxAttempts: 1, BaseDelay: -time.Second},
		{MaxAttempts: 1, BaseDelay: time.Second, MaxDelay: time.Millisecond},
	} {
		_, err := Do(context.Background(), op, cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	}
	assert.False(t, called)
}

func TestDoPermanentErrorStopsRetries(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), func(context.Context) (int, error) {
		calls++
		return 0, backoff.Permanent(errBoom)
	}, fastConfig(4))

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, errBoom)
	var exhausted *ExhaustedError
	assert.False(t, errors.As(err, &exhausted))
}

func TestDoCancelDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	cfg := Config{MaxAttempts: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}
	cfg.OnRetry = func(int, error) { cancel() }

	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, func(context.Context) (int, error) {
			calls++
			return 0, errBoom
		}, cfg)
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(2 * time.Second):
		t.Fatal("retry loop was not aborted by cancellation")
	}
}

func TestDoCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Do(ctx, func(context.Context) (int, error) {
		calls++
		return 0, nil
	}, fastConfig(3))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestWithFallbackActivatesSecondary(t *testing.T) {
	primaryCalls, secondaryCalls, fallbacks := 0, 0, 0

	res, err := WithFallback(context.Background(),
		func(context.Context) (string, error) {
			primaryCalls++
			return "", errBoom
		},
		func(context.Context) (string, error) {
			secondaryCalls++
			return "secondary", nil
		},
		FallbackOptions{
			Retry:      fastConfig(3),
			OnFallback: func(error) { fallbacks++ },
		})

	require.NoError(t, err)
	assert.Equal(t, "secondary", res)
	assert.Equal(t, 3, primaryCalls)
	assert.Equal(t, 1, secondaryCalls)
	assert.Equal(t, 1, fallbacks)
}

func TestWithFallbackSkipsSecondaryOnPrimarySuccess(t *testing.T) {
	secondaryCalls, fallbacks := 0, 0
	primaryCalls := 0

	res, err := WithFallback(context.Background(),
		func(context.Context) (int, error) {
			primaryCalls++
			if primaryCalls < 3 {
				return 0, errBoom
			}
			return 42, nil
		},
		func(context.Context) (int, error) {
			secondaryCalls++
			return 7, nil
		},
		FallbackOptions{Retry: fastConfig(3), OnFallback: func(error) { fallbacks++ }})

	require.NoError(t, err)
	assert.Equal(t, 42, res)
	assert.Zero(t, secondaryCalls)
	assert.Zero(t, fallbacks)
}

func TestWithFallbackChainExhausted(t *testing.T) {
	errPrimary := errors.New("primary down")
	errSecondary := errors.New("secondary down")

	_, err := WithFallback(context.Background(),
		func(context.Context) (int, error) { return 0, errPrimary },
		func(context.Context) (int, error) { return 0, errSecondary },
		FallbackOptions{Retry: fastConfig(2)})

	var chain *ChainExhaustedError
	require.ErrorAs(t, err, &chain)
	assert.ErrorIs(t, err, errPrimary)
	assert.ErrorIs(t, err, errSecondary)

	var exhausted *ExhaustedError
	require.ErrorAs(t, chain.Secondary, &exhausted)
	assert.Equal(t, 2, exhausted.Attempts)
}

func TestWithFallbackDoesNotFallBackOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	secondaryCalls := 0

	_, err := WithFallback(ctx,
		func(context.Context) (int, error) {
			cancel()
			return 0, errBoom
		},
		func(context.Context) (int, error) {
			secondaryCalls++
			return 1, nil
		},
		FallbackOptions{Retry: fastConfig(3)})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, secondaryCalls)
}
