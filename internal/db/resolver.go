package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/dvload/internal/config"
	"github.com/vvka-141/dvload/pkg/dvload"
)

// GranularConnFlags are the psql-style connection flags (-h, -p, -U, -d).
// There is no password flag; use -W, $PGPASSWORD, $DB_PASSWORD or ~/.pgpass.
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty reports whether no server flag was given. Database is excluded: -d
// may accompany --connection to pick a different database.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// AuthFlags select and parameterize cloud authentication.
// The Azure client secret is only read from $AZURE_CLIENT_SECRET.
type AuthFlags struct {
	Method         string
	AzureTenantID  string
	AzureClientID  string
	AWSRegion      string
	GoogleInstance string
}

// EnvVars holds the connection environment: libpq variables, the DB_* names
// of the legacy batch job, and cloud SDK variables.
type EnvVars struct {
	PGHOST       string
	PGPORT       string
	PGUSER       string
	PGPASSWORD   string
	PGDATABASE   string
	PGSSLMODE    string
	DATABASE_URL string

	DB_HOST     string
	DB_PORT     string
	DB_NAME     string
	DB_USER     string
	DB_PASSWORD string

	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
	AWS_REGION          string
}

// LoadFromEnvironment reads EnvVars from the process environment.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:              os.Getenv("PGHOST"),
		PGPORT:              os.Getenv("PGPORT"),
		PGUSER:              os.Getenv("PGUSER"),
		PGPASSWORD:          os.Getenv("PGPASSWORD"),
		PGDATABASE:          os.Getenv("PGDATABASE"),
		PGSSLMODE:           os.Getenv("PGSSLMODE"),
		DATABASE_URL:        os.Getenv("DATABASE_URL"),
		DB_HOST:             os.Getenv("DB_HOST"),
		DB_PORT:             os.Getenv("DB_PORT"),
		DB_NAME:             os.Getenv("DB_NAME"),
		DB_USER:             os.Getenv("DB_USER"),
		DB_PASSWORD:         os.Getenv("DB_PASSWORD"),
		AZURE_TENANT_ID:     os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:     os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET: os.Getenv("AZURE_CLIENT_SECRET"),
		AWS_REGION:          os.Getenv("AWS_REGION"),
	}
}

// ResolveConnectionParams resolves the warehouse connection.
//
// Sources, first match wins:
//  1. --connection
//  2. $DATABASE_URL, when no granular flag is set
//  3. per parameter: flag > PG* variable > DB_* variable > dvload.yaml > default
//
// -d overrides the database of a connection string. Authentication is
// standard unless selected by flag, dvload.yaml, or the presence of Azure
// environment credentials.
func ResolveConnectionParams(
	connStringFlag string,
	granularFlags *GranularConnFlags,
	authFlags *AuthFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*dvload.ConnectionConfig, error) {
	if granularFlags == nil {
		granularFlags = &GranularConnFlags{}
	}
	if authFlags == nil {
		authFlags = &AuthFlags{}
	}
	if envVars == nil {
		envVars = &EnvVars{}
	}
	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	if connStringFlag != "" && !granularFlags.IsEmpty() {
		return nil, fmt.Errorf("cannot specify both --connection and granular flags (-h, -p, -U, --sslmode)\n"+
			"Choose one approach:\n"+
			"  1. Connection string: --connection \"postgresql://loader@localhost:5432/dwh\"\n"+
			"  2. Granular flags: -h localhost -p 5432 -U loader -d dwh\n"+
			"  3. Environment variables: PGHOST/PGPORT/PGUSER/PGDATABASE or DB_HOST/DB_PORT/DB_USER/DB_NAME: %w",
			dvload.ErrInvalidConfig)
	}

	var cfg *dvload.ConnectionConfig
	var err error
	switch {
	case connStringFlag != "":
		cfg, err = resolveFromConnectionString(connStringFlag, envVars)
	case granularFlags.IsEmpty() && envVars.DATABASE_URL != "":
		cfg, err = resolveFromConnectionString(envVars.DATABASE_URL, envVars)
	default:
		cfg, err = resolveFromGranularParams(granularFlags, envVars, pc)
	}
	if err != nil {
		return nil, err
	}
	if granularFlags.Database != "" {
		cfg.Database = granularFlags.Database
	}

	if err := applyAuth(cfg, authFlags, envVars, pc); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveFromConnectionString(connStr string, envVars *EnvVars) (*dvload.ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}
	if cfg.Password == "" {
		cfg.Password = firstNonEmpty(envVars.PGPASSWORD, envVars.DB_PASSWORD)
	}
	return cfg, nil
}

func resolveFromGranularParams(flags *GranularConnFlags, env *EnvVars, pc config.ConnectionConfig) (*dvload.ConnectionConfig, error) {
	cfg := &dvload.ConnectionConfig{
		AuthMethod:       dvload.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
		SSLCert:          pc.SSLCert,
		SSLKey:           pc.SSLKey,
		SSLRootCert:      pc.SSLRootCert,
	}

	cfg.Host = firstNonEmpty(flags.Host, env.PGHOST, env.DB_HOST, pc.Host, "localhost")

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case env.PGPORT != "" || env.DB_PORT != "":
		name, value := "PGPORT", env.PGPORT
		if value == "" {
			name, value = "DB_PORT", env.DB_PORT
		}
		port, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid $%s value '%s': must be an integer: %w", name, value, dvload.ErrInvalidConfig)
		}
		cfg.Port = port
	case pc.Port != 0:
		cfg.Port = pc.Port
	default:
		cfg.Port = 5432
	}

	cfg.Username = firstNonEmpty(flags.Username, env.PGUSER, env.DB_USER, pc.Username, os.Getenv("USER"), os.Getenv("USERNAME"))
	cfg.Password = firstNonEmpty(env.PGPASSWORD, env.DB_PASSWORD)
	cfg.Database = firstNonEmpty(flags.Database, env.PGDATABASE, env.DB_NAME, pc.Database)
	cfg.SSLMode = firstNonEmpty(flags.SSLMode, env.PGSSLMODE, pc.SSLMode, "prefer")

	if cfg.Database == "" {
		return nil, fmt.Errorf("no warehouse database configured; set one of --connection, $DATABASE_URL, -d, "+
			"$PGDATABASE, $DB_NAME or connection.database in %s: %w", config.ConfigFileName, dvload.ErrInvalidConfig)
	}
	return cfg, nil
}

// applyAuth selects the authentication method and attaches its parameters.
// Flags take precedence over dvload.yaml, which takes precedence over the
// environment.
func applyAuth(cfg *dvload.ConnectionConfig, flags *AuthFlags, env *EnvVars, pc config.ConnectionConfig) error {
	method, err := dvload.ParseAuthMethod(firstNonEmpty(flags.Method, pc.AuthMethod))
	if err != nil {
		return err
	}

	tenantID := firstNonEmpty(flags.AzureTenantID, pc.AzureTenantID, env.AZURE_TENANT_ID)
	clientID := firstNonEmpty(flags.AzureClientID, pc.AzureClientID, env.AZURE_CLIENT_ID)
	if method == dvload.AuthMethodStandard && flags.Method == "" && pc.AuthMethod == "" && (tenantID != "" || clientID != "") {
		method = dvload.AuthMethodAzureEntraID
	}

	cfg.AuthMethod = method
	switch method {
	case dvload.AuthMethodAzureEntraID:
		cfg.AzureTenantID = tenantID
		cfg.AzureClientID = clientID
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	case dvload.AuthMethodAWSIAM:
		cfg.AWSRegion = firstNonEmpty(flags.AWSRegion, pc.AWSRegion, env.AWS_REGION)
	case dvload.AuthMethodGoogleIAM:
		cfg.GoogleInstance = firstNonEmpty(flags.GoogleInstance, pc.GoogleInstance)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
