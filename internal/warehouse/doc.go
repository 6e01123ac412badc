// Package warehouse implements the PostgreSQL side of a load run: the key
// store and row inserter over one pgx transaction, and the opener that
// connects and begins that transaction.
package warehouse
