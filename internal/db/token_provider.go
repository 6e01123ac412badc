package db

import (
	"context"
	"time"
)

// TokenProvider acquires a cloud token that is used as the database password.
type TokenProvider interface {
	// GetToken returns a token and its expiry.
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String describes the provider for logs. It must not include secrets.
	String() string
}

// AzurePostgreSQLScope is the OAuth scope of Azure Database for PostgreSQL.
const AzurePostgreSQLScope = "https://ossrdbms-aad.database.windows.net/.default"
