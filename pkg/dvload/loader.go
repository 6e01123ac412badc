package dvload

import "context"

// Loader is the main interface for executing a load run.
// Implementations handle the full workflow: reading the batch, connecting,
// deduplicating against persisted keys, inserting and committing.
type Loader interface {
	// Load executes one run using the provided configuration.
	// On error nothing has been committed.
	Load(ctx context.Context, config LoadConfig) (*LoadReport, error)

	// Check verifies a run could start: the connection works and every
	// required table exists. When config.SourcePath is set the batch is read
	// and summarized as well. Nothing is written.
	Check(ctx context.Context, config LoadConfig) (*CheckReport, error)
}
