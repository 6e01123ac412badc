package dvload

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Load committed
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitConnectionError = 11 // Failed to connect to the warehouse
	ExitSourceError     = 12 // Source file missing or empty
	ExitLoadFailed      = 13 // Query or insert failed, transaction rolled back
	ExitMissingTables   = 14 // Required hub/link/satellite tables absent
)

const (
	// DefaultTimeout bounds a whole load run, connection included.
	DefaultTimeout = 10 * time.Minute

	// DefaultSchema is the schema holding the vault tables.
	DefaultSchema = "public"

	// DefaultAppName is reported to the server as application_name.
	DefaultAppName = "dvload"

	// DefaultConnectTimeout bounds establishing a single connection.
	DefaultConnectTimeout = 30 * time.Second

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of connection retry attempts.
	DefaultRetryMaxAttempts = 3

	// InsertChunkSize caps the number of rows queued into one pgx batch.
	InsertChunkSize = 1000
)
