// Package retryexec wraps destructive remote operations with bounded
// exponential-backoff retry. Only transient failures are retried; everything
// else surfaces immediately.
package retryexec

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/stewardbooks/church-finance/internal"
)

// Options bounds an executor. Zero values fall back to 3 retries starting at
// one second.
type Options struct {
	MaxRetries   int
	InitialDelay time.Duration
	// OnRetry is invoked before each wait with the attempt just failed and
	// the delay about to elapse, so callers can render retry progress.
	OnRetry func(attempt int, delay time.Duration)
}

type Executor struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Executor {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = time.Second
	}
	return &Executor{opts: opts, logger: logger}
}

// Do runs op, retrying transient failures up to MaxRetries times with delays
// of InitialDelay·2^(attempt−1). Cancelling ctx abandons further retries
// immediately. Exhaustion wraps the last error with the total attempt count.
func (e *Executor) Do(ctx context.Context, name string, op func(context.Context) error) error {
	attempts := 0
	backoff := retry.WithMaxRetries(uint64(e.opts.MaxRetries), retry.NewExponential(e.opts.InitialDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !internal.IsTransient(err) {
			return err
		}

		if attempts <= e.opts.MaxRetries {
			delay := e.opts.InitialDelay << (attempts - 1)
			e.logger.Warn("transient failure, retrying",
				"operation", name,
				"attempt", attempts,
				"delay", delay,
				"error", err)
			if e.opts.OnRetry != nil {
				e.opts.OnRetry(attempts, delay)
			}
		}
		return retry.RetryableError(err)
	})
	if err == nil {
		return nil
	}

	if ctx.Err() != nil {
		e.logger.Info("retry abandoned by caller", "operation", name, "attempts", attempts)
		return ctx.Err()
	}
	if internal.IsTransient(err) {
		e.logger.Error("retries exhausted", "operation", name, "attempts", attempts, "error", err)
		return internal.NewRetriesExhaustedError(attempts, err)
	}
	return err
}
