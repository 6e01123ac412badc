package retry

import (
	"context"
	"time"

	"github.com/vvka-141/dvload/pkg/dvload"
)

// RetryFunc is called before each retry with the zero-based retry number, the
// error that caused it and the delay about to be waited.
type RetryFunc func(attempt int, err error, delay time.Duration)

// Executor runs an operation until it succeeds, fails fatally, or the backoff
// strategy runs out of attempts.
//
// An Executor is immutable once built; WithOnRetry returns a copy.
type Executor struct {
	classifier dvload.ErrorClassifier
	strategy   dvload.BackoffStrategy
	onRetry    RetryFunc
}

// NewExecutor creates an Executor. Panics if classifier or strategy is nil.
func NewExecutor(classifier dvload.ErrorClassifier, strategy dvload.BackoffStrategy) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{classifier: classifier, strategy: strategy}
}

// WithOnRetry returns a copy of e that calls fn before every retry.
func (e *Executor) WithOnRetry(fn RetryFunc) *Executor {
	clone := *e
	clone.onRetry = fn
	return &clone
}

// Execute runs op. The first call is not a retry; at most MaxAttempts retries
// follow it (unbounded when MaxAttempts is negative). The error of the last
// attempt is returned, or the context error if ctx ends while waiting.
func (e *Executor) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	err := op(ctx)
	limit := e.strategy.MaxAttempts()

	for attempt := 0; err != nil && e.classifier.IsTransient(err); attempt++ {
		if limit >= 0 && attempt >= limit {
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		delay := e.strategy.NextDelay(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, err, delay)
		}
		if waitErr := sleep(ctx, delay); waitErr != nil {
			return waitErr
		}

		err = op(ctx)
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// LogRetry returns a RetryFunc that reports retries of what through logger.
func LogRetry(logger dvload.Logger, what string) RetryFunc {
	return func(attempt int, err error, delay time.Duration) {
		logger.Info("%s failed (%v), retry %d in %v", what, err, attempt+1, delay.Round(time.Millisecond))
	}
}
