package dvload

import (
	"context"
	"time"
)

// Version identifies one persisted satellite row version.
type Version struct {
	HashKey string
	LoadDTS time.Time
}

// KeyStore exposes the persisted state the dedup step compares against.
// All reads must observe the same snapshot, the one of the enclosing transaction.
type KeyStore interface {
	// MissingTables returns the subset of tables that do not exist, in input order.
	MissingTables(ctx context.Context, tables []string) ([]string, error)

	// FetchKeys returns every value of keyColumn currently stored in table.
	FetchKeys(ctx context.Context, table, keyColumn string) ([]string, error)

	// FetchVersions returns every (keyColumn, load_dts) pair stored in table.
	FetchVersions(ctx context.Context, table, keyColumn string) ([]Version, error)
}

// RowInserter persists rows. Any failure is fatal for the load run.
type RowInserter interface {
	// InsertRows inserts rows into table. Each row holds one value per column,
	// in the order of columns. Returns the number of rows inserted.
	InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
}

// Warehouse combines the read and write sides used by the load engine.
type Warehouse interface {
	KeyStore
	RowInserter
}

// Session is a Warehouse bound to one open transaction.
//
// Thread-Safety: NOT safe for concurrent use.
//
// Lifecycle:
//  1. Created by SessionOpener.Open() with the transaction already begun
//  2. Used for key fetches and inserts
//  3. Finished by exactly one of Commit() or Rollback()
//  4. Released via Close() (idempotent; rolls back if still open)
type Session interface {
	Warehouse

	// Commit makes every insert of the run durable.
	Commit(ctx context.Context) error

	// Rollback discards every insert of the run.
	Rollback(ctx context.Context) error

	// Close releases the transaction and the connection pool.
	Close()
}

// SessionOpener connects to the warehouse and begins the load transaction.
type SessionOpener interface {
	// Open connects with connConfig and begins a transaction whose queries
	// target the given schema.
	Open(ctx context.Context, connConfig *ConnectionConfig, schema string) (Session, error)
}
