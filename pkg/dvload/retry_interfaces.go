package dvload

import "time"

// ErrorClassifier decides which connection errors are worth another attempt.
// Errors raised inside the load transaction are never retried: the run is
// rolled back instead.
type ErrorClassifier interface {
	IsTransient(err error) bool
}

// BackoffStrategy spaces out connection attempts.
type BackoffStrategy interface {
	// NextDelay returns the wait before retry number attempt (zero-indexed).
	NextDelay(attempt int) time.Duration

	// MaxAttempts caps the retries; 0 disables them and -1 removes the cap.
	MaxAttempts() int
}
