package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pokedex/pkg/config"
	errs "pokedex/pkg/errors"
)

type fakeClock struct {
	waits []time.Duration
}

func (f *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	f.waits = append(f.waits, d)
	return ctx.Err()
}

func testConfig(clock *fakeClock) *Config {
	cfg := DefaultConfig()
	cfg.Sleep = clock.sleep
	return cfg
}

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   1 * time.Second,
		Multiplier: 2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 0},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1 * time.Second},
		{9, 1 * time.Second},
	}

	for _, tt := range tests {
		if got := backoff.NextDelay(tt.attempt); got != tt.expected {
			t.Errorf("NextDelay(%d) = %v, want %v", tt.attempt, got, tt.expected)
		}
	}
}

func TestLinearBackoff(t *testing.T) {
	backoff := &LinearBackoff{BaseDelay: time.Second, Increment: time.Second, MaxDelay: 3 * time.Second}

	assert.Equal(t, time.Second, backoff.NextDelay(1))
	assert.Equal(t, 2*time.Second, backoff.NextDelay(2))
	assert.Equal(t, 3*time.Second, backoff.NextDelay(7))
}

func TestNewBackoff(t *testing.T) {
	assert.IsType(t, &ConstantBackoff{}, NewBackoff("constant", time.Second, 0, 0))
	assert.IsType(t, &LinearBackoff{}, NewBackoff("Linear", time.Second, 0, 0))
	assert.IsType(t, &ExponentialBackoff{}, NewBackoff("exponential", time.Second, 0, 2))
	assert.IsType(t, &ConstantBackoff{}, NewBackoff("", time.Second, 0, 0))
}

func TestRetrySucceedsOnThirdAttempt(t *testing.T) {
	clock := &fakeClock{}
	attempts := 0

	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errs.New(errs.ErrorTypeServerError, 503, "unavailable")
		}
		return nil
	}, testConfig(clock))

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second}, clock.waits)
}

func TestRetryExhaustionDoesNotWaitAfterLastAttempt(t *testing.T) {
	clock := &fakeClock{}
	attempts := 0

	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errs.New(errs.ErrorTypeNetwork, 0, "connection refused")
	}, testConfig(clock))

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Len(t, clock.waits, 2)
	assert.Equal(t, errs.ErrorTypeNetwork, errs.TypeOf(err))
	assert.Contains(t, err.Error(), "max retry attempts (3) exceeded")
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	clock := &fakeClock{}
	attempts := 0

	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errs.New(errs.ErrorTypeDecode, 0, "bad image")
	}, testConfig(clock))

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, clock.waits)
}

func TestRetryCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	cfg := DefaultConfig()
	cfg.Sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	err := Do(ctx, func(ctx context.Context) error {
		attempts++
		return errors.New("temporary")
	}, cfg)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestOnRetryCallback(t *testing.T) {
	var seen []int
	cfg := testConfig(&fakeClock{})
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		seen = append(seen, attempt)
	}

	_ = Do(context.Background(), func(ctx context.Context) error {
		return errors.New("always")
	}, cfg)

	assert.Equal(t, []int{1, 2}, seen)
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	got, err := DoWithResult(context.Background(), func(ctx context.Context) (string, error) {
		attempts++
		if attempts == 1 {
			return "", errors.New("flaky")
		}
		return "bulbasaur", nil
	}, testConfig(&fakeClock{}))

	require.NoError(t, err)
	assert.Equal(t, "bulbasaur", got)
}

func TestDefaultRetryIf(t *testing.T) {
	assert.False(t, DefaultRetryIf(nil))
	assert.False(t, DefaultRetryIf(context.Canceled))
	assert.True(t, DefaultRetryIf(errors.New("eof")))
	assert.True(t, DefaultRetryIf(errs.FromStatus(404)))
	assert.False(t, DefaultRetryIf(errs.New(errs.ErrorTypeCheckpoint, 0, "corrupt")))
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.RetryConfig{
		MaxAttempts: 5,
		Delay:       time.Second,
		Backoff:     "exponential",
		MaxDelay:    10 * time.Second,
		Multiplier:  3,
	}, nil)

	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 9*time.Second, cfg.Backoff.NextDelay(3))
	assert.NotNil(t, cfg.Logger)
}

func TestWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Wait(ctx, time.Hour), context.Canceled)
	assert.NoError(t, Wait(context.Background(), time.Millisecond))
}
