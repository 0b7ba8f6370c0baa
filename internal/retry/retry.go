// Package retry wraps fallible operations in a bounded
// retry-with-exponential-backoff loop.
package retry

import (
	"context"
	"fmt"
	"time"

	"email-dispatch/internal/common/logger"
)

// Options bounds the retry loop. BackoffFactor multiplies the delay after
// every failed attempt; no jitter is applied.
type Options struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	BackoffFactor int
}

// DefaultOptions mirrors the historical deployment defaults.
func DefaultOptions() Options {
	return Options{
		MaxAttempts:   3,
		InitialDelay:  5 * time.Second,
		BackoffFactor: 2,
	}
}

func (o Options) normalized() Options {
	if o.MaxAttempts < 1 {
		o.MaxAttempts = 1
	}
	if o.BackoffFactor < 1 {
		o.BackoffFactor = 1
	}
	return o
}

// Do runs op up to MaxAttempts times, sleeping between failed attempts but
// not after the last. Earlier failures are logged and discarded; the most
// recent one is surfaced. The caller decides whether op is safe to repeat:
// every error is treated as retriable here, with no transient/permanent
// distinction, so wrapping a non-idempotent action accepts duplicate
// side effects.
func Do[T any](ctx context.Context, log logger.Logger, opts Options, op func(context.Context) (T, error)) (T, error) {
	opts = opts.normalized()
	delay := opts.InitialDelay

	var zero T
	var lastErr error

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == opts.MaxAttempts {
			break
		}

		if log != nil {
			log.Warn("attempt failed, retrying", map[string]interface{}{
				"attempt":     attempt,
				"maxAttempts": opts.MaxAttempts,
				"nextRetryIn": delay.String(),
				"error":       err.Error(),
			})
		}

		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
		delay *= time.Duration(opts.BackoffFactor)
	}

	if log != nil {
		log.Error("max attempts reached", map[string]interface{}{
			"maxAttempts": opts.MaxAttempts,
			"error":       lastErr.Error(),
		})
	}
	return zero, lastErr
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("retry aborted: %w", ctx.Err())
	}
}
