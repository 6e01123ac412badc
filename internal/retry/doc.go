// Package retry retries connection attempts that fail for transient reasons.
//
// An Executor combines a dvload.ErrorClassifier, which decides whether a
// failure is worth another attempt, with a dvload.BackoffStrategy, which
// decides how long to wait before it:
//
//	executor := retry.NewExecutor(
//	    retry.NewPostgreSQLErrorClassifier(),
//	    retry.NewExponentialBackoff(3),
//	).WithOnRetry(retry.LogRetry(logger, "connect"))
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return ping(ctx)
//	})
//
// Only establishing a connection is retried. A load that fails after the
// transaction has begun is rolled back and reported, never replayed.
package retry
