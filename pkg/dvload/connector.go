package dvload

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connector opens the pool a load session runs on. Implementations differ in
// how they authenticate: a static password, a cloud IAM token refreshed per
// connection, or the Cloud SQL dialer.
//
// Connectors that hold resources of their own implement io.Closer; the session
// closes them after the pool.
type Connector interface {
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}
