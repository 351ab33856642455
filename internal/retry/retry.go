package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// ErrAttemptsExhausted is returned by Policy.Do when every attempt failed.
// The last attempt's error is wrapped alongside it, so callers can inspect
// both the exhaustion and the underlying cause with errors.Is.
var ErrAttemptsExhausted = errors.New("retry attempts exhausted")

// BackoffFunc returns the delay to apply after a failed attempt.
// Implementations may return a different duration on each call.
type BackoffFunc func() time.Duration

// Uniform returns a BackoffFunc drawing a random delay from [minDelay, maxDelay],
// rounded to the nearest tenth of a second. The coarse rounding mimics human
// pacing rather than machine-precise intervals, which is all the politeness
// the catalog publisher asks for.
func Uniform(minDelay, maxDelay time.Duration) BackoffFunc {
	if maxDelay < minDelay {
		minDelay, maxDelay = maxDelay, minDelay
	}
	return func() time.Duration {
		d := minDelay
		if span := maxDelay - minDelay; span > 0 {
			d = minDelay + rand.N(span+1)
		}
		d = d.Round(100 * time.Millisecond)
		// Rounding can nudge the value past a bound; clamp it back
		if d < minDelay {
			d = minDelay
		}
		if d > maxDelay {
			d = maxDelay
		}
		return d
	}
}

// Policy bounds how an operation is retried.
// The zero value performs a single attempt with no delay.
//
// Design decision: The retry bound and the backoff are explicit data rather
// than hard-coded loops at call sites, because the bound is a run-level
// policy choice (5 in permissive mode, 3 in strict mode) that must apply
// uniformly to every retried operation in the run.
type Policy struct {
	// MaxAttempts is the total number of invocations, not the number of
	// retries after the first failure. Values below 1 are treated as 1.
	MaxAttempts int

	// Backoff supplies the delay applied after each failed attempt,
	// including the last. A nil Backoff means no delay.
	Backoff BackoffFunc

	// Logger receives a debug line per failed attempt. A nil Logger
	// disables attempt logging.
	Logger *slog.Logger
}

// Do invokes op until it succeeds or MaxAttempts invocations have failed.
// A delay is applied after every failed attempt. When all attempts fail,
// the returned error wraps both ErrAttemptsExhausted and the last attempt's
// error. Cancelling ctx stops the loop promptly, including mid-delay.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if p.Logger != nil {
			p.Logger.Debug("attempt failed",
				"attempt", attempt,
				"max_attempts", attempts,
				"error", err)
		}

		if err := p.sleep(ctx); err != nil {
			return errors.Join(err, lastErr)
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, attempts, lastErr)
}

// sleep applies the backoff delay, returning early if ctx is cancelled.
func (p Policy) sleep(ctx context.Context) error {
	if p.Backoff == nil {
		return nil
	}
	delay := p.Backoff()
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
