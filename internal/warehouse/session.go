package warehouse

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/dvload/pkg/dvload"
)

// rollbackTimeout bounds the rollback Close issues for an unfinished
// transaction. The run's context may already be cancelled at that point.
const rollbackTimeout = 10 * time.Second

// TxSession is a dvload.Session over one pgx transaction. It owns the pool the
// transaction came from and, when it implements io.Closer, the connector.
type TxSession struct {
	*Store

	tx        pgx.Tx
	pool      *pgxpool.Pool
	connector dvload.Connector
	logger    dvload.Logger

	finished bool
	closed   bool
}

var _ dvload.Session = (*TxSession)(nil)

// NewTxSession wraps an open transaction. pool and connector may be nil.
func NewTxSession(tx pgx.Tx, schema string, pool *pgxpool.Pool, connector dvload.Connector, logger dvload.Logger) *TxSession {
	return &TxSession{
		Store:     NewStore(tx, schema),
		tx:        tx,
		pool:      pool,
		connector: connector,
		logger:    logger,
	}
}

// Commit commits the transaction.
func (s *TxSession) Commit(ctx context.Context) error {
	if s.finished {
		return fmt.Errorf("transaction already finished")
	}
	s.finished = true
	if err := s.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Rollback rolls the transaction back. It is a no-op once the transaction is
// finished.
func (s *TxSession) Rollback(ctx context.Context) error {
	if s.finished {
		return nil
	}
	s.finished = true
	if err := s.tx.Rollback(ctx); err != nil {
		return fmt.Errorf("failed to roll back: %w", err)
	}
	return nil
}

// Close rolls back an unfinished transaction and releases the pool and the
// connector. It is safe to call more than once.
func (s *TxSession) Close() {
	if s.closed {
		return
	}
	s.closed = true

	if !s.finished {
		ctx, cancel := context.WithTimeout(context.Background(), rollbackTimeout)
		if err := s.Rollback(ctx); err != nil {
			s.logger.Error("%v", err)
		}
		cancel()
	}
	if s.pool != nil {
		s.pool.Close()
	}
	if closer, ok := s.connector.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			s.logger.Error("failed to close connector: %v", err)
		}
	}
}
