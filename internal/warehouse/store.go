package warehouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/dvload/pkg/dvload"
)

// DBTX is the subset of pgx.Tx the store needs. *pgxpool.Pool and *pgx.Conn
// satisfy it as well.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store reads persisted keys from and inserts rows into the vault tables of
// one schema.
type Store struct {
	db     DBTX
	schema string
}

// NewStore creates a Store over db. An empty schema means dvload.DefaultSchema.
func NewStore(db DBTX, schema string) *Store {
	if schema == "" {
		schema = dvload.DefaultSchema
	}
	return &Store{db: db, schema: schema}
}

// Schema returns the schema the store targets.
func (s *Store) Schema() string {
	return s.schema
}

func (s *Store) qualified(table string) string {
	return pgx.Identifier{s.schema, table}.Sanitize()
}

// MissingTables returns the tables that do not exist in the store's schema.
func (s *Store) MissingTables(ctx context.Context, tables []string) ([]string, error) {
	rows, err := s.db.Query(ctx, queryMissingTables, s.schema, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to query information_schema: %w", err)
	}
	missing, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read missing tables: %w", err)
	}
	return missing, nil
}

// FetchKeys returns every value of keyColumn in table.
func (s *Store) FetchKeys(ctx context.Context, table, keyColumn string) ([]string, error) {
	sql := fmt.Sprintf("SELECT %s FROM %s", pgx.Identifier{keyColumn}.Sanitize(), s.qualified(table))

	rows, err := s.db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// FetchVersions returns every (keyColumn, load_dts) pair in table, with
// load_dts in UTC.
func (s *Store) FetchVersions(ctx context.Context, table, keyColumn string) ([]dvload.Version, error) {
	sql := fmt.Sprintf("SELECT %s, load_dts FROM %s", pgx.Identifier{keyColumn}.Sanitize(), s.qualified(table))

	rows, err := s.db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (dvload.Version, error) {
		var v dvload.Version
		var loadDTS time.Time
		if err := row.Scan(&v.HashKey, &loadDTS); err != nil {
			return v, err
		}
		v.LoadDTS = loadDTS.UTC()
		return v, nil
	})
}

// InsertRows inserts rows into table. Rows are queued into pgx batches of at
// most dvload.InsertChunkSize statements; the first failing statement aborts
// the call.
func (s *Store) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	sql := insertStatement(s.qualified(table), columns)

	var inserted int64
	for _, chunk := range chunks(rows, dvload.InsertChunkSize) {
		batch := &pgx.Batch{}
		for _, row := range chunk {
			if len(row) != len(columns) {
				return inserted, fmt.Errorf("row has %d values for %d columns of %s", len(row), len(columns), table)
			}
			batch.Queue(sql, row...)
		}

		n, err := s.sendBatch(ctx, batch)
		inserted += n
		if err != nil {
			return inserted, err
		}
	}
	return inserted, nil
}

func (s *Store) sendBatch(ctx context.Context, batch *pgx.Batch) (int64, error) {
	results := s.db.SendBatch(ctx, batch)

	var inserted int64
	for i := 0; i < batch.Len(); i++ {
		tag, err := results.Exec()
		if err != nil {
			results.Close() //nolint:errcheck
			return inserted, err
		}
		inserted += tag.RowsAffected()
	}
	return inserted, results.Close()
}

func insertStatement(qualifiedTable string, columns []string) string {
	names := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, c := range columns {
		names[i] = pgx.Identifier{c}.Sanitize()
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		qualifiedTable, strings.Join(names, ", "), strings.Join(params, ", "))
}

func chunks[T any](items []T, size int) [][]T {
	var out [][]T
	for size < len(items) {
		items, out = items[size:], append(out, items[:size:size])
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}
