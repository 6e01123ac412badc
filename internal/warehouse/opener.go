package warehouse

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/dvload/pkg/dvload"
)

// ConnectorFactory builds the connector for a connection config.
// db.NewConnector is the production implementation.
type ConnectorFactory func(*dvload.ConnectionConfig, dvload.Logger) (dvload.Connector, error)

// Opener connects to the warehouse and begins the load transaction.
type Opener struct {
	connectorFactory ConnectorFactory
	logger           dvload.Logger
}

var _ dvload.SessionOpener = (*Opener)(nil)

// NewOpener creates an Opener.
//
// Panics if any dependency is nil.
func NewOpener(connectorFactory ConnectorFactory, logger dvload.Logger) *Opener {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Opener{connectorFactory: connectorFactory, logger: logger}
}

// Open connects with connConfig and begins a REPEATABLE READ transaction, so
// every key fetch of the run observes one snapshot.
// Connection failures wrap dvload.ErrConnectionFailed.
func (o *Opener) Open(ctx context.Context, connConfig *dvload.ConnectionConfig, schema string) (dvload.Session, error) {
	o.logger.Verbose("Connecting to database '%s' on %s:%d", connConfig.Database, connConfig.Host, connConfig.Port)

	connector, err := o.connectorFactory(connConfig, o.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create connector: %w", err)
	}

	pool, err := connector.Connect(ctx)
	if err != nil {
		closeConnector(connector)
		return nil, fmt.Errorf("%w: %w", dvload.ErrConnectionFailed, err)
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		pool.Close()
		closeConnector(connector)
		return nil, fmt.Errorf("%w: failed to begin transaction: %w", dvload.ErrConnectionFailed, err)
	}
	o.logger.Verbose("Began transaction (repeatable read)")

	return NewTxSession(tx, schema, pool, connector, o.logger), nil
}

func closeConnector(connector dvload.Connector) {
	if closer, ok := connector.(io.Closer); ok {
		closer.Close() //nolint:errcheck
	}
}
