package retry

import (
	"context"
	"math"
	"strings"
	"time"
)

// BackoffStrategy computes the wait before the next attempt.
// attempt is the 1-based number of the attempt that just failed.
type BackoffStrategy interface {
	NextDelay(attempt int) time.Duration
}

// NewBackoff builds a strategy by name: constant, linear or exponential.
// Unknown names fall back to constant.
func NewBackoff(kind string, delay, maxDelay time.Duration, multiplier float64) BackoffStrategy {
	switch strings.ToLower(kind) {
	case "linear":
		return &LinearBackoff{BaseDelay: delay, Increment: delay, MaxDelay: maxDelay}
	case "exponential":
		return &ExponentialBackoff{BaseDelay: delay, MaxDelay: maxDelay, Multiplier: multiplier}
	default:
		return &ConstantBackoff{Delay: delay}
	}
}

// ExponentialBackoff multiplies the delay after every failure
type ExponentialBackoff struct {
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	mult := eb.Multiplier
	if mult < 1 {
		mult = 1
	}

	delay := float64(eb.BaseDelay) * math.Pow(mult, float64(attempt-1))
	if eb.MaxDelay > 0 && delay > float64(eb.MaxDelay) {
		delay = float64(eb.MaxDelay)
	}
	return time.Duration(delay)
}

// LinearBackoff grows the delay by Increment per failure
type LinearBackoff struct {
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Increment time.Duration
}

func (lb *LinearBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	delay := lb.BaseDelay + lb.Increment*time.Duration(attempt-1)
	if lb.MaxDelay > 0 && delay > lb.MaxDelay {
		delay = lb.MaxDelay
	}
	return delay
}

// ConstantBackoff implements constant delay backoff
type ConstantBackoff struct {
	Delay time.Duration
}

func (cb *ConstantBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return cb.Delay
}

// Wait waits for the specified duration or until context is cancelled
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
