package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vvka-141/dvload/internal/db"
	"github.com/vvka-141/dvload/internal/hashkey"
	"github.com/vvka-141/dvload/internal/vault"
	"github.com/vvka-141/dvload/pkg/dvload"
)

// LoadService implements the Loader interface.
// Thread-Safety: NOT safe for concurrent Load() calls on the same instance.
// Create separate instances for concurrent runs.
type LoadService struct {
	source dvload.BatchSource
	opener dvload.SessionOpener
	logger dvload.Logger

	now      func() time.Time
	newRunID func() uuid.UUID
}

var _ dvload.Loader = (*LoadService)(nil)

// NewLoadService creates a new LoadService with all dependencies injected.
//
// Panics on nil dependencies: these are programmer errors that should fail
// loudly at startup. Runtime conditions (configuration, connectivity, data)
// are returned as errors.
func NewLoadService(source dvload.BatchSource, opener dvload.SessionOpener, logger dvload.Logger) *LoadService {
	if source == nil {
		panic("source cannot be nil")
	}
	if opener == nil {
		panic("opener cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &LoadService{
		source:   source,
		opener:   opener,
		logger:   logger,
		now:      time.Now,
		newRunID: uuid.New,
	}
}

// Load executes one run: read the batch, open the transaction, verify the
// vault tables, fetch the persisted keys, insert hubs, link and satellites,
// then commit. Any failure after the transaction is open rolls it back.
func (s *LoadService) Load(ctx context.Context, config dvload.LoadConfig) (*dvload.LoadReport, error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	runID := s.newRunID()
	connConfig, err := connectionConfig(config, runID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	start := s.now()

	batch, err := s.source.ReadBatch(config.SourcePath)
	if err != nil {
		return nil, err
	}
	if batch.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", config.SourcePath, dvload.ErrEmptyBatch)
	}
	s.logger.Info("✓ Read %d rows from %s", batch.Len(), config.SourcePath)

	deriver := hashkey.New(config.HashMode)
	grouping := vault.Group(batch, deriver)
	s.logger.Verbose("Derived keys (%s): %d customers, %d products, %d locations, %d orders",
		deriver.Mode(),
		grouping.Distinct(vault.KindCustomer), grouping.Distinct(vault.KindProduct),
		grouping.Distinct(vault.KindLocation), grouping.Distinct(vault.KindOrder))

	provenance := vault.NewProvenance(recordSource(config), start)

	session, err := s.opener.Open(ctx, connConfig, config.Schema)
	if err != nil {
		return nil, err
	}
	defer session.Close()
	s.logger.Info("✓ Connected to %s (run %s)", connConfig.Database, runID)

	if err := requireTables(ctx, session, config.Schema); err != nil {
		return nil, s.abort(ctx, session, err)
	}

	state, err := vault.FetchState(ctx, session)
	if err != nil {
		return nil, s.abort(ctx, session, fmt.Errorf("%w: %w", dvload.ErrLoadFailed, err))
	}
	s.logger.Verbose("Fetched persisted keys")

	tables, err := vault.Load(ctx, session, grouping, state, provenance)
	for _, t := range tables {
		s.logger.Verbose("%s: %d inserted, %d already present", t.Table, t.Inserted, t.Skipped)
	}
	if err != nil {
		return nil, s.abort(ctx, session, fmt.Errorf("%w: %w", dvload.ErrLoadFailed, err))
	}

	if err := session.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", dvload.ErrLoadFailed, err)
	}

	report := &dvload.LoadReport{
		RunID:             runID,
		RecordSource:      provenance.RecordSource,
		LoadDTS:           provenance.LoadDTS,
		SourceRows:        grouping.Rows,
		DistinctCustomers: grouping.Distinct(vault.KindCustomer),
		DistinctProducts:  grouping.Distinct(vault.KindProduct),
		DistinctLocations: grouping.Distinct(vault.KindLocation),
		DistinctOrders:    grouping.Distinct(vault.KindOrder),
		Tables:            tables,
		Duration:          s.now().Sub(start),
	}
	s.logger.Info("✓ Committed %d rows in %v", report.TotalInserted(), report.Duration.Round(time.Millisecond))
	return report, nil
}

// Check is the preflight for Load. It reads the batch when a source is
// configured, then connects and lists the missing vault tables inside a
// transaction that is always rolled back.
func (s *LoadService) Check(ctx context.Context, config dvload.LoadConfig) (*dvload.CheckReport, error) {
	config = config.WithDefaults()
	if err := config.ValidateConnection(); err != nil {
		return nil, err
	}

	connConfig, err := connectionConfig(config, s.newRunID())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	report := &dvload.CheckReport{Schema: config.Schema}

	if config.SourcePath != "" {
		batch, err := s.source.ReadBatch(config.SourcePath)
		if err != nil {
			return nil, err
		}
		if batch.Len() == 0 {
			return nil, fmt.Errorf("%s: %w", config.SourcePath, dvload.ErrEmptyBatch)
		}
		grouping := vault.Group(batch, hashkey.New(config.HashMode))
		report.SourceRows = grouping.Rows
		report.DistinctCustomers = grouping.Distinct(vault.KindCustomer)
		report.DistinctProducts = grouping.Distinct(vault.KindProduct)
		report.DistinctLocations = grouping.Distinct(vault.KindLocation)
		report.DistinctOrders = grouping.Distinct(vault.KindOrder)
		s.logger.Info("✓ Read %d rows from %s", batch.Len(), config.SourcePath)
	}

	session, err := s.opener.Open(ctx, connConfig, config.Schema)
	if err != nil {
		return nil, err
	}
	defer session.Close()
	s.logger.Info("✓ Connected to %s", connConfig.Database)

	missing, err := session.MissingTables(ctx, vault.RequiredTables())
	if err != nil {
		return nil, fmt.Errorf("failed to check tables: %w", err)
	}
	report.MissingTables = missing

	if err := session.Rollback(ctx); err != nil {
		s.logger.Error("%v", err)
	}

	if len(missing) > 0 {
		return report, missingTablesError(config.Schema, missing)
	}
	s.logger.Info("✓ All %d vault tables present in schema %s", len(vault.RequiredTables()), config.Schema)
	return report, nil
}

// abort rolls the run back and returns cause.
func (s *LoadService) abort(ctx context.Context, session dvload.Session, cause error) error {
	// The run's context may be the reason for the failure.
	rollbackCtx := context.WithoutCancel(ctx)
	if err := session.Rollback(rollbackCtx); err != nil {
		s.logger.Error("%v", err)
		return cause
	}
	s.logger.Info("Rolled back: no rows were written")
	return cause
}

func requireTables(ctx context.Context, store dvload.KeyStore, schema string) error {
	missing, err := store.MissingTables(ctx, vault.RequiredTables())
	if err != nil {
		return fmt.Errorf("%w: failed to check tables: %w", dvload.ErrLoadFailed, err)
	}
	if len(missing) > 0 {
		return missingTablesError(schema, missing)
	}
	return nil
}

func missingTablesError(schema string, missing []string) error {
	return fmt.Errorf("%w in schema %q: %s (create the vault tables before loading)",
		dvload.ErrMissingTables, schema, strings.Join(missing, ", "))
}

// connectionConfig parses the connection string and applies the
// authentication and session settings carried by config.
func connectionConfig(config dvload.LoadConfig, runID uuid.UUID) (*dvload.ConnectionConfig, error) {
	connConfig, err := db.ParseConnectionString(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}

	connConfig.AuthMethod = config.AuthMethod
	connConfig.AzureTenantID = config.AzureTenantID
	connConfig.AzureClientID = config.AzureClientID
	connConfig.AzureClientSecret = config.AzureClientSecret
	connConfig.AWSRegion = config.AWSRegion
	connConfig.GoogleInstance = config.GoogleInstance

	if connConfig.AppName == "" {
		connConfig.AppName = fmt.Sprintf("%s-%s", dvload.DefaultAppName, runID.String()[:8])
	}
	if connConfig.ConnectTimeout == 0 {
		connConfig.ConnectTimeout = dvload.DefaultConnectTimeout
	}
	return connConfig, nil
}

// recordSource returns the provenance tag of a run: the configured value, or
// the base name of the source file.
func recordSource(config dvload.LoadConfig) string {
	if config.RecordSource != "" {
		return config.RecordSource
	}
	return filepath.Base(config.SourcePath)
}
