// Package resilience provides the one retry policy every external call
// in the pipeline goes through. Call sites differ only in their Policy
// values (attempts, backoff schedule, retryable predicate); the loop is
// never duplicated per integration.
package resilience

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Policy controls bounded retries with configurable backoff.
type Policy struct {
	// MaxAttempts is the total number of attempts including the first.
	// 1 means no retries. Default: 3.
	MaxAttempts int

	// InitialBackoff is the delay before the first retry. Default: 1s.
	InitialBackoff time.Duration

	// Multiplier scales the delay after each attempt. 1.0 gives a fixed
	// (linear) delay, 2.0 doubles it. Default: 2.0.
	Multiplier float64

	// MaxBackoff caps a single delay. Default: 30s.
	MaxBackoff time.Duration

	// JitterFraction adds random jitter as a fraction of the computed
	// delay (0 = none, 0.5 = ±50%).
	JitterFraction float64

	// Retryable decides whether an error is worth another attempt.
	// Nil means IsTransient.
	Retryable func(err error) bool
}

// Linear returns a fixed-delay policy: attempts total tries with the
// same delay between each.
func Linear(attempts int, delay time.Duration) Policy {
	return Policy{MaxAttempts: attempts, InitialBackoff: delay, Multiplier: 1.0}
}

// Exponential returns a doubling-delay policy starting at base.
func Exponential(attempts int, base time.Duration) Policy {
	return Policy{MaxAttempts: attempts, InitialBackoff: base, Multiplier: 2.0}
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = time.Second
	}
	if p.Multiplier <= 0 {
		p.Multiplier = 2.0
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = 30 * time.Second
	}
	return p
}

// Do runs fn under the policy, sleeping between attempts. Context
// cancellation stops retries immediately and returns the last error.
func Do(ctx context.Context, op string, p Policy, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, op, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoVal is Do for calls that produce a value.
func DoVal[T any](ctx context.Context, op string, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	p = p.withDefaults()
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}

	var zero T
	var lastErr error
	delay := p.InitialBackoff

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !retryable(err) || attempt == p.MaxAttempts {
			break
		}

		zap.L().Warn("retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(jittered(delay, p.JitterFraction))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * p.Multiplier)
		if delay > p.MaxBackoff {
			delay = p.MaxBackoff
		}
	}

	return zero, lastErr
}

// jittered spreads a delay by ±fraction so synchronized callers do not
// hammer a recovering service in lockstep.
func jittered(delay time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return delay
	}
	spread := (rand.Float64()*2 - 1) * fraction * float64(delay)
	out := time.Duration(float64(delay) + spread)
	if out < 0 {
		out = 0
	}
	return out
}
