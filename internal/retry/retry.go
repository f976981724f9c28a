package retry

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"
)

// Attempt describes a failed attempt that is about to be retried.
type Attempt struct {
	Operation string
	Number    int           // 1-indexed attempt that failed
	Delay     time.Duration // Wait before the next attempt
	Err       error
}

// Policy pairs a Config with error classification and observation hooks.
// A zero Retryable uses IsRetryable; a nil Log disables logging.
type Policy struct {
	Config    Config
	Retryable func(error) bool
	Operation string
	Log       *slog.Logger
	OnRetry   func(Attempt)

	// Test seams.
	jitter func() float64
	sleep  func(context.Context, time.Duration) error
}

// NewPolicy returns a Policy using the default classification.
func NewPolicy(cfg Config, operation string, log *slog.Logger) Policy {
	return Policy{Config: cfg, Operation: operation, Log: log}
}

// WithOperation returns a copy of p labelled for a different call site.
func (p Policy) WithOperation(operation string) Policy {
	p.Operation = operation
	return p
}

// Backoff returns the delay before retry n (1-indexed), jittered when the
// config enables it.
func (p Policy) Backoff(n int) time.Duration {
	d := p.Config.Delay(n)
	if !p.Config.EnableJitter {
		return d
	}
	r := rand.Float64
	if p.jitter != nil {
		r = p.jitter
	}
	return time.Duration(float64(d) * (0.8 + 0.4*r()))
}

// Do invokes op until it succeeds, fails with a non-retryable error, or
// MaxRetries retries have been spent. The context is checked before every
// attempt and while waiting; cancellation yields a *CanceledError.
// Exhaustion yields an *ExhaustedError wrapping the last error.
// Non-retryable errors are returned as-is.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	maxAttempts := p.Config.MaxRetries + 1

	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, &CanceledError{Attempts: attempt - 1, Err: err, Last: lastErr}
		}

		v, err := op(ctx)
		if err == nil {
			if attempt > 1 && p.Log != nil {
				p.Log.Info("retry succeeded", "operation", p.Operation, "attempt", attempt)
			}
			return v, nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, &CanceledError{Attempts: attempt, Err: ctxErr, Last: err}
		}
		if !retryable(err) {
			if p.Log != nil {
				p.Log.Debug("non-retryable error", "operation", p.Operation, "attempt", attempt, "error", err)
			}
			return zero, err
		}
		if attempt >= maxAttempts {
			if p.Log != nil {
				p.Log.Error("retries exhausted", "operation", p.Operation, "attempts", attempt, "error", err)
			}
			return zero, &ExhaustedError{Attempts: attempt, Err: err}
		}

		delay := p.Backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(Attempt{Operation: p.Operation, Number: attempt, Delay: delay, Err: err})
		}
		if p.Log != nil {
			p.Log.Warn("retryable error",
				"operation", p.Operation,
				"attempt", attempt,
				"max_attempts", maxAttempts,
				"delay", delay,
				"error", err,
			)
		}
		if err := sleep(ctx, delay); err != nil {
			return zero, &CanceledError{Attempts: attempt, Err: err, Last: lastErr}
		}
	}
}

// Run is Do for operations without a result value.
func (p Policy) Run(ctx context.Context, op func(context.Context) error) error {
	_, err := Do(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
