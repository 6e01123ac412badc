package dvload

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	report, err := loader.Load(ctx, config)
//	if errors.Is(err, dvload.ErrMissingTables) {
//	    // Run the warehouse DDL first
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSourceNotFound indicates the source batch file does not exist.
	ErrSourceNotFound = errors.New("source file not found")

	// ErrEmptyBatch indicates the source batch holds no data rows.
	ErrEmptyBatch = errors.New("source batch is empty")

	// ErrInvalidSource indicates the source is not a rectangular table with the
	// required columns and numeric values.
	ErrInvalidSource = errors.New("invalid source batch")

	// ErrMissingTables indicates required warehouse tables are absent.
	ErrMissingTables = errors.New("required tables are missing")

	// ErrConnectionFailed indicates the warehouse could not be reached.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrLoadFailed indicates a query or insert failed mid-run.
	// The transaction has been rolled back when this error is returned.
	ErrLoadFailed = errors.New("load failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")
)

// usageErrorPrefixes are the message prefixes cobra uses for CLI misuse.
var usageErrorPrefixes = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"requires at least",
	"required flag",
	"invalid argument",
	"flag needs an argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrSourceNotFound), errors.Is(err, ErrEmptyBatch), errors.Is(err, ErrInvalidSource):
		return ExitSourceError
	case errors.Is(err, ErrMissingTables):
		return ExitMissingTables
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrLoadFailed):
		return ExitLoadFailed
	}

	errStr := err.Error()
	for _, prefix := range usageErrorPrefixes {
		if strings.HasPrefix(errStr, prefix) {
			return ExitUsageError
		}
	}

	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
