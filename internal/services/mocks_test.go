package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vvka-141/dvload/pkg/dvload"
)

type mockSource struct {
	batch *dvload.Batch
	err   error
	reads int
}

func (m *mockSource) ReadBatch(_ string) (*dvload.Batch, error) {
	m.reads++
	return m.batch, m.err
}

type mockOpener struct {
	session *mockSession
	err     error

	config *dvload.ConnectionConfig
	schema string
}

func (m *mockOpener) Open(_ context.Context, config *dvload.ConnectionConfig, schema string) (dvload.Session, error) {
	m.config = config
	m.schema = schema
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

// mockSession is an in-memory warehouse. Inserts are staged until Commit.
type mockSession struct {
	committed map[string][][]any
	staged    map[string][][]any
	columns   map[string][]string

	missing   []string
	failOn    string
	fetchErr  error
	commitErr error

	commits   int
	rollbacks int
	closes    int
}

func newMockSession() *mockSession {
	return &mockSession{
		committed: make(map[string][][]any),
		staged:    make(map[string][][]any),
		columns:   make(map[string][]string),
	}
}

func (m *mockSession) MissingTables(_ context.Context, _ []string) ([]string, error) {
	return m.missing, nil
}

func (m *mockSession) column(table, name string) int {
	for i, c := range m.columns[table] {
		if c == name {
			return i
		}
	}
	return -1
}

func (m *mockSession) FetchKeys(_ context.Context, table, keyColumn string) ([]string, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	i := m.column(table, keyColumn)
	var keys []string
	for _, row := range m.committed[table] {
		keys = append(keys, row[i].(string))
	}
	return keys, nil
}

func (m *mockSession) FetchVersions(_ context.Context, table, keyColumn string) ([]dvload.Version, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	k, t := m.column(table, keyColumn), m.column(table, "load_dts")
	var versions []dvload.Version
	for _, row := range m.committed[table] {
		versions = append(versions, dvload.Version{HashKey: row[k].(string), LoadDTS: row[t].(time.Time)})
	}
	return versions, nil
}

func (m *mockSession) InsertRows(_ context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if table == m.failOn {
		return 0, errors.New("insert failed")
	}
	m.columns[table] = columns
	m.staged[table] = append(m.staged[table], rows...)
	return int64(len(rows)), nil
}

func (m *mockSession) Commit(_ context.Context) error {
	m.commits++
	if m.commitErr != nil {
		return m.commitErr
	}
	for table, rows := range m.staged {
		m.committed[table] = append(m.committed[table], rows...)
	}
	m.staged = make(map[string][][]any)
	return nil
}

func (m *mockSession) Rollback(_ context.Context) error {
	m.rollbacks++
	m.staged = make(map[string][][]any)
	return nil
}

func (m *mockSession) Close() {
	m.closes++
}

// reset prepares the session for another run against the same data.
func (m *mockSession) reset() {
	m.commits, m.rollbacks, m.closes = 0, 0, 0
}

func fixedRunID() uuid.UUID {
	return uuid.MustParse("6f1c2b7e-3d4a-4f5b-9c8d-0e1f2a3b4c5d")
}
