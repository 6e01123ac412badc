package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/dvload/internal/retry"
	"github.com/vvka-141/dvload/pkg/dvload"
)

// tokenExpiryWarning is how close to expiry a fresh token triggers a warning.
// A load holds its connection for the whole run.
const tokenExpiryWarning = 5 * time.Minute

// TokenBasedConnector authenticates with a short-lived cloud token used as the
// PostgreSQL password (AWS IAM, Azure Entra ID). A new token is acquired on
// every attempt.
type TokenBasedConnector struct {
	config        *dvload.ConnectionConfig
	tokenProvider TokenProvider
	providerName  string
	logger        dvload.Logger
	retryExecutor *retry.Executor
}

// NewTokenBasedConnector creates a TokenBasedConnector. providerName appears
// in messages, e.g. "AWS IAM".
func NewTokenBasedConnector(config *dvload.ConnectionConfig, tokenProvider TokenProvider, providerName string, logger dvload.Logger) *TokenBasedConnector {
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		providerName:  providerName,
		logger:        logger,
		retryExecutor: newRetryExecutor(logger, providerName+" connect"),
	}
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		token, expiresOn, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
		}
		c.logger.Verbose("Acquired token from %s", c.tokenProvider)

		if remaining := time.Until(expiresOn); remaining < tokenExpiryWarning {
			c.logger.Info("Warning: %s token expires in %v", c.providerName, remaining.Round(time.Second))
		}

		withToken := *c.config
		withToken.Password = token

		pool, err = openPool(ctx, BuildConnectionString(&withToken), c.config, c.logger)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}
