package warehouse

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var errStatement = errors.New("duplicate key value violates unique constraint")

// fakeDB records the batches sent to it. Statements are numbered across
// batches; the one at failAt fails.
type fakeDB struct {
	batches  []*pgx.Batch
	executed int
	failAt   int
	closes   int
}

func newFakeDB() *fakeDB {
	return &fakeDB{failAt: -1}
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("fakeDB: Query not supported")
}

func (f *fakeDB) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	f.batches = append(f.batches, b)
	return &fakeResults{db: f}
}

type fakeResults struct {
	db *fakeDB
}

func (r *fakeResults) Exec() (pgconn.CommandTag, error) {
	i := r.db.executed
	r.db.executed++
	if i == r.db.failAt {
		return pgconn.CommandTag{}, errStatement
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *fakeResults) Query() (pgx.Rows, error) { return nil, errors.New("fakeResults: Query not supported") }
func (r *fakeResults) QueryRow() pgx.Row        { return nil }

func (r *fakeResults) Close() error {
	r.db.closes++
	return nil
}

// fakeTx implements the parts of pgx.Tx a TxSession finishes with.
type fakeTx struct {
	pgx.Tx
	commits   int
	rollbacks int
	commitErr error
}

func (t *fakeTx) Commit(context.Context) error {
	t.commits++
	return t.commitErr
}

func (t *fakeTx) Rollback(context.Context) error {
	t.rollbacks++
	return nil
}

type fakeConnector struct {
	err    error
	closes int
}

func (c *fakeConnector) Connect(context.Context) (*pgxpool.Pool, error) {
	return nil, c.err
}

func (c *fakeConnector) Close() error {
	c.closes++
	return nil
}
