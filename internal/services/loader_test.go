package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/dvload/internal/logging"
	"github.com/vvka-141/dvload/internal/source"
	"github.com/vvka-141/dvload/internal/testing/fixtures"
	"github.com/vvka-141/dvload/pkg/dvload"
)

var runStart = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func referenceBatch(t *testing.T) *dvload.Batch {
	t.Helper()
	b, err := source.Parse("superstore.csv", strings.NewReader(fixtures.ReferenceBatch().CSV()))
	require.NoError(t, err)
	return b
}

func newTestService(src dvload.BatchSource, opener dvload.SessionOpener, now time.Time) *LoadService {
	svc := NewLoadService(src, opener, logging.NewNullLogger())
	svc.now = func() time.Time { return now }
	svc.newRunID = fixedRunID
	return svc
}

func testConfig() dvload.LoadConfig {
	return dvload.LoadConfig{
		SourcePath:       "/data/superstore.csv",
		ConnectionString: "postgresql://loader@gp.internal:5432/dwh",
	}
}

func inserted(t *testing.T, report *dvload.LoadReport) map[string]int {
	t.Helper()
	got := make(map[string]int, len(report.Tables))
	for _, ts := range report.Tables {
		got[ts.Table] = ts.Inserted
	}
	return got
}

func TestLoad_ReferenceBatch(t *testing.T) {
	session := newMockSession()
	opener := &mockOpener{session: session}
	svc := newTestService(&mockSource{batch: referenceBatch(t)}, opener, runStart)

	report, err := svc.Load(context.Background(), testConfig())
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		"hub_customer": 1, "hub_product": 2, "hub_location": 1, "hub_order": 2,
		"link_order":   2,
		"sat_customer": 1, "sat_product": 2, "sat_location": 1, "sat_order": 2,
	}, inserted(t, report))

	assert.Equal(t, fixedRunID(), report.RunID)
	assert.Equal(t, "superstore.csv", report.RecordSource)
	assert.Equal(t, runStart, report.LoadDTS)
	assert.Equal(t, 2, report.SourceRows)
	assert.Equal(t, 1, report.DistinctCustomers)
	assert.Equal(t, 2, report.DistinctProducts)
	assert.Equal(t, 1, report.DistinctLocations)
	assert.Equal(t, 2, report.DistinctOrders)
	assert.Equal(t, 14, report.TotalInserted())

	assert.Equal(t, 1, session.commits)
	assert.Zero(t, session.rollbacks)
	assert.Equal(t, 1, session.closes)

	assert.Equal(t, "public", opener.schema)
	assert.Equal(t, "dwh", opener.config.Database)
	assert.Equal(t, "dvload-6f1c2b7e", opener.config.AppName)
	assert.Equal(t, dvload.DefaultConnectTimeout, opener.config.ConnectTimeout)

	orders := session.committed["sat_order"]
	require.Len(t, orders, 2)
	assert.NotEqual(t, orders[0][1], orders[1][1], "order versions carry distinct load_dts")
}

func TestLoad_RerunInsertsOnlySatelliteVersions(t *testing.T) {
	session := newMockSession()
	batch := referenceBatch(t)

	_, err := newTestService(&mockSource{batch: batch}, &mockOpener{session: session}, runStart).
		Load(context.Background(), testConfig())
	require.NoError(t, err)
	session.reset()

	report, err := newTestService(&mockSource{batch: batch}, &mockOpener{session: session}, runStart.Add(time.Hour)).
		Load(context.Background(), testConfig())
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		"hub_customer": 0, "hub_product": 0, "hub_location": 0, "hub_order": 0,
		"link_order":   0,
		"sat_customer": 1, "sat_product": 2, "sat_location": 1, "sat_order": 2,
	}, inserted(t, report))

	hub, ok := report.Table("hub_product")
	require.True(t, ok)
	assert.Equal(t, 2, hub.Skipped)
	assert.Len(t, session.committed["hub_product"], 2)
	assert.Len(t, session.committed["sat_order"], 4)
}

func TestLoad_SameTimestampRerunSkipsOrderVersions(t *testing.T) {
	session := newMockSession()
	batch := referenceBatch(t)

	for range 2 {
		_, err := newTestService(&mockSource{batch: batch}, &mockOpener{session: session}, runStart).
			Load(context.Background(), testConfig())
		require.NoError(t, err)
	}

	assert.Len(t, session.committed["sat_order"], 2)
}

func TestLoad_RecordSourceOverride(t *testing.T) {
	session := newMockSession()
	config := testConfig()
	config.RecordSource = "erp-export"

	report, err := newTestService(&mockSource{batch: referenceBatch(t)}, &mockOpener{session: session}, runStart).
		Load(context.Background(), config)
	require.NoError(t, err)
	assert.Equal(t, "erp-export", report.RecordSource)
	for _, row := range session.committed["hub_customer"] {
		assert.Equal(t, "erp-export", row[2])
	}
}

func TestLoad_AppliesAuthAndSchema(t *testing.T) {
	opener := &mockOpener{session: newMockSession()}
	config := testConfig()
	config.ConnectionString = "postgresql://loader@db.rds.amazonaws.com:5432/dwh?application_name=nightly"
	config.Schema = "vault"
	config.AuthMethod = dvload.AuthMethodAWSIAM
	config.AWSRegion = "eu-west-1"

	_, err := newTestService(&mockSource{batch: referenceBatch(t)}, opener, runStart).
		Load(context.Background(), config)
	require.NoError(t, err)

	assert.Equal(t, "vault", opener.schema)
	assert.Equal(t, dvload.AuthMethodAWSIAM, opener.config.AuthMethod)
	assert.Equal(t, "eu-west-1", opener.config.AWSRegion)
	assert.Equal(t, "nightly", opener.config.AppName)
}

func TestLoad_FailsBeforeConnecting(t *testing.T) {
	tests := []struct {
		name    string
		config  func(*dvload.LoadConfig)
		source  *mockSource
		wantErr error
	}{
		{
			name:    "missing source path",
			config:  func(c *dvload.LoadConfig) { c.SourcePath = "" },
			source:  &mockSource{},
			wantErr: dvload.ErrInvalidConfig,
		},
		{
			name:    "unknown hash mode",
			config:  func(c *dvload.LoadConfig) { c.HashMode = "sha1" },
			source:  &mockSource{},
			wantErr: dvload.ErrInvalidConfig,
		},
		{
			name:    "bad connection string",
			config:  func(c *dvload.LoadConfig) { c.ConnectionString = "gp.internal:5432" },
			source:  &mockSource{},
			wantErr: dvload.ErrInvalidConfig,
		},
		{
			name:    "source not found",
			config:  func(*dvload.LoadConfig) {},
			source:  &mockSource{err: dvload.ErrSourceNotFound},
			wantErr: dvload.ErrSourceNotFound,
		},
		{
			name:    "empty batch",
			config:  func(*dvload.LoadConfig) {},
			source:  &mockSource{err: dvload.ErrEmptyBatch},
			wantErr: dvload.ErrEmptyBatch,
		},
		{
			name:    "source returns no rows",
			config:  func(*dvload.LoadConfig) {},
			source:  &mockSource{batch: &dvload.Batch{Columns: dvload.RequiredColumns}},
			wantErr: dvload.ErrEmptyBatch,
		},
		{
			name:    "source returns nil batch",
			config:  func(*dvload.LoadConfig) {},
			source:  &mockSource{},
			wantErr: dvload.ErrEmptyBatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opener := &mockOpener{session: newMockSession()}
			config := testConfig()
			tt.config(&config)

			_, err := newTestService(tt.source, opener, runStart).Load(context.Background(), config)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, opener.config, "no connection attempted")
		})
	}
}

func TestLoad_ConnectionFailure(t *testing.T) {
	cause := errors.New("connection refused")
	opener := &mockOpener{err: errors.Join(dvload.ErrConnectionFailed, cause)}

	_, err := newTestService(&mockSource{batch: referenceBatch(t)}, opener, runStart).
		Load(context.Background(), testConfig())
	require.ErrorIs(t, err, dvload.ErrConnectionFailed)
	assert.Equal(t, dvload.ExitConnectionError, dvload.ExitCodeForError(err))
}

func TestLoad_MissingTables(t *testing.T) {
	session := newMockSession()
	session.missing = []string{"sat_location", "sat_order"}

	_, err := newTestService(&mockSource{batch: referenceBatch(t)}, &mockOpener{session: session}, runStart).
		Load(context.Background(), testConfig())
	require.ErrorIs(t, err, dvload.ErrMissingTables)
	assert.Contains(t, err.Error(), "sat_location, sat_order")
	assert.Equal(t, dvload.ExitMissingTables, dvload.ExitCodeForError(err))

	assert.Zero(t, session.commits)
	assert.Equal(t, 1, session.rollbacks)
	assert.Equal(t, 1, session.closes)
	assert.Empty(t, session.committed)
}

func TestLoad_FailureRollsBack(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*mockSession)
	}{
		{"fetch fails", func(s *mockSession) { s.fetchErr = errors.New("relation is locked") }},
		{"hub insert fails", func(s *mockSession) { s.failOn = "hub_location" }},
		{"link insert fails", func(s *mockSession) { s.failOn = "link_order" }},
		{"last satellite fails", func(s *mockSession) { s.failOn = "sat_order" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := newMockSession()
			tt.setup(session)

			report, err := newTestService(&mockSource{batch: referenceBatch(t)}, &mockOpener{session: session}, runStart).
				Load(context.Background(), testConfig())
			require.ErrorIs(t, err, dvload.ErrLoadFailed)
			assert.Nil(t, report)
			assert.Equal(t, dvload.ExitLoadFailed, dvload.ExitCodeForError(err))

			assert.Zero(t, session.commits)
			assert.Equal(t, 1, session.rollbacks)
			assert.Equal(t, 1, session.closes)
			assert.Empty(t, session.committed, "nothing of the run persists")
		})
	}
}

func TestLoad_CommitFailure(t *testing.T) {
	session := newMockSession()
	session.commitErr = errors.New("could not serialize access")

	_, err := newTestService(&mockSource{batch: referenceBatch(t)}, &mockOpener{session: session}, runStart).
		Load(context.Background(), testConfig())
	require.ErrorIs(t, err, dvload.ErrLoadFailed)
	assert.ErrorIs(t, err, session.commitErr)
	assert.Equal(t, 1, session.closes)
}

func TestCheck(t *testing.T) {
	t.Run("all tables present", func(t *testing.T) {
		session := newMockSession()
		src := &mockSource{batch: referenceBatch(t)}
		config := testConfig()
		config.SourcePath = ""

		report, err := newTestService(src, &mockOpener{session: session}, runStart).Check(context.Background(), config)
		require.NoError(t, err)
		assert.Equal(t, "public", report.Schema)
		assert.Empty(t, report.MissingTables)
		assert.Zero(t, report.SourceRows)
		assert.Zero(t, src.reads)
		assert.Zero(t, session.commits)
		assert.Equal(t, 1, session.rollbacks)
	})

	t.Run("missing tables with source summary", func(t *testing.T) {
		session := newMockSession()
		session.missing = []string{"link_order"}

		report, err := newTestService(&mockSource{batch: referenceBatch(t)}, &mockOpener{session: session}, runStart).
			Check(context.Background(), testConfig())
		require.ErrorIs(t, err, dvload.ErrMissingTables)
		require.NotNil(t, report)
		assert.Equal(t, []string{"link_order"}, report.MissingTables)
		assert.Equal(t, 2, report.SourceRows)
		assert.Equal(t, 2, report.DistinctProducts)
		assert.Equal(t, 1, session.closes)
	})

	t.Run("source without rows", func(t *testing.T) {
		opener := &mockOpener{session: newMockSession()}
		src := &mockSource{batch: &dvload.Batch{Columns: dvload.RequiredColumns}}

		_, err := newTestService(src, opener, runStart).Check(context.Background(), testConfig())
		require.ErrorIs(t, err, dvload.ErrEmptyBatch)
		assert.Equal(t, dvload.ExitSourceError, dvload.ExitCodeForError(err))
		assert.Nil(t, opener.config)
	})

	t.Run("requires connection only", func(t *testing.T) {
		_, err := newTestService(&mockSource{}, &mockOpener{}, runStart).Check(context.Background(), dvload.LoadConfig{})
		require.ErrorIs(t, err, dvload.ErrInvalidConfig)
	})
}

func TestNewLoadService_PanicsOnNil(t *testing.T) {
	logger := logging.NewNullLogger()
	assert.Panics(t, func() { NewLoadService(nil, &mockOpener{}, logger) })
	assert.Panics(t, func() { NewLoadService(&mockSource{}, nil, logger) })
	assert.Panics(t, func() { NewLoadService(&mockSource{}, &mockOpener{}, nil) })
}
