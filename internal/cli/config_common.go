package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/dvload/internal/config"
	"github.com/vvka-141/dvload/internal/db"
	"github.com/vvka-141/dvload/pkg/dvload"
)

// connectionFlags holds the connection-related flag values shared by load and
// check.
type connectionFlags struct {
	connection     string
	host           string
	port           int
	username       string
	database       string
	sslMode        string
	password       bool
	authMethod     string
	azureTenantID  string
	azureClientID  string
	awsRegion      string
	googleInstance string
}

// runFlags holds the flags that shape a run.
type runFlags struct {
	schema       string
	recordSource string
	hashMode     string
	timeout      time.Duration
}

func addConnectionFlags(cmd *cobra.Command, f *connectionFlags) {
	cmd.Flags().StringVar(&f.connection, "connection", "",
		"PostgreSQL connection string (URI or ADO.NET format).\n"+
			"Mutually exclusive with --host, --port, --username and --sslmode.\n"+
			"Alternative: DATABASE_URL environment variable.\n"+
			"Example: postgresql://loader@localhost:5432/dwh")

	// Precedence: flag > $PG* > legacy $DB_* > dvload.yaml > default
	cmd.Flags().StringVarP(&f.host, "host", "h", "",
		"Warehouse host\n"+
			"Precedence: --host > $PGHOST > $DB_HOST > dvload.yaml > localhost")
	cmd.Flags().IntVarP(&f.port, "port", "p", 0,
		"Warehouse port\n"+
			"Precedence: --port > $PGPORT > $DB_PORT > dvload.yaml > 5432")
	cmd.Flags().StringVarP(&f.username, "username", "U", "",
		"Database user (default: $PGUSER, $DB_USER or current OS user)")
	cmd.Flags().StringVarP(&f.database, "database", "d", "",
		"Warehouse database ($PGDATABASE, $DB_NAME)\n"+
			"Overrides the database of --connection")
	cmd.Flags().StringVar(&f.sslMode, "sslmode", "",
		"SSL mode: disable|allow|prefer|require|verify-ca|verify-full\n"+
			"(default: prefer, or $PGSSLMODE)")
	cmd.Flags().BoolVarP(&f.password, "password", "W", false,
		"Prompt for the password instead of reading $PGPASSWORD, $DB_PASSWORD or ~/.pgpass")

	cmd.Flags().StringVar(&f.authMethod, "auth", "",
		"Authentication method: standard|aws|google|azure\n"+
			"(default: standard, azure when $AZURE_TENANT_ID or $AZURE_CLIENT_ID is set)")
	cmd.Flags().StringVar(&f.azureTenantID, "azure-tenant-id", "",
		"Azure AD tenant/directory ID (overrides $AZURE_TENANT_ID)")
	cmd.Flags().StringVar(&f.azureClientID, "azure-client-id", "",
		"Azure AD application/client ID (overrides $AZURE_CLIENT_ID)")
	cmd.Flags().StringVar(&f.awsRegion, "aws-region", "",
		"AWS region of the RDS instance (overrides $AWS_REGION)")
	cmd.Flags().StringVar(&f.googleInstance, "google-instance", "",
		"Cloud SQL instance connection name (project:region:instance)")
}

func addRunFlags(cmd *cobra.Command, f *runFlags) {
	cmd.Flags().StringVar(&f.schema, "schema", "",
		"Schema holding the vault tables (default: dvload.yaml schema or public)")
	cmd.Flags().StringVar(&f.hashMode, "hash-mode", "",
		"Hash key encoding: delimited|concat\n"+
			"concat reproduces keys written by the legacy loader (default: delimited)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", dvload.DefaultTimeout,
		"Timeout for the whole run, connection included\n"+
			"Examples: 30s, 5m, 1h30m")
}

// loadProjectConfig loads .env and dvload.yaml from the working directory.
// A missing dvload.yaml is not an error.
func loadProjectConfig() (*config.ProjectConfig, error) {
	_ = godotenv.Load()

	projectCfg, err := config.Load(".")
	if errors.Is(err, config.ErrConfigNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}
	return projectCfg, nil
}

// resolveConnection resolves the warehouse connection from flags, the
// environment and dvload.yaml, prompting for the password with -W.
func resolveConnection(f connectionFlags, projectCfg *config.ProjectConfig, prompt passwordPrompter, verbose bool) (*dvload.ConnectionConfig, error) {
	granularFlags := &db.GranularConnFlags{
		Host:     f.host,
		Port:     f.port,
		Username: f.username,
		Database: f.database,
		SSLMode:  f.sslMode,
	}
	authFlags := &db.AuthFlags{
		Method:         f.authMethod,
		AzureTenantID:  f.azureTenantID,
		AzureClientID:  f.azureClientID,
		AWSRegion:      f.awsRegion,
		GoogleInstance: f.googleInstance,
	}

	connConfig, err := db.ResolveConnectionParams(f.connection, granularFlags, authFlags, db.LoadFromEnvironment(), projectCfg)
	if err != nil {
		return nil, err
	}

	if f.password {
		password, err := prompt(fmt.Sprintf("Password for user %s: ", connConfig.Username))
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
		connConfig.Password = password
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] Connection resolved:\n")
		fmt.Fprintf(os.Stderr, "  Host: %s\n", connConfig.Host)
		fmt.Fprintf(os.Stderr, "  Port: %d\n", connConfig.Port)
		fmt.Fprintf(os.Stderr, "  User: %s\n", connConfig.Username)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", connConfig.Database)
		fmt.Fprintf(os.Stderr, "  SSL Mode: %s\n", connConfig.SSLMode)
		fmt.Fprintf(os.Stderr, "  Auth Method: %s\n", connConfig.AuthMethod)
	}
	return connConfig, nil
}

// buildLoadConfig assembles the LoadConfig of a run.
//
// Precedence per setting: flag > environment > dvload.yaml > default. The
// source path falls back to $FILE_PATH, the variable of the legacy batch job.
func buildLoadConfig(
	cmd *cobra.Command,
	sourcePath string,
	cf connectionFlags,
	rf runFlags,
	prompt passwordPrompter,
	verbose bool,
) (dvload.LoadConfig, error) {
	projectCfg, err := loadProjectConfig()
	if err != nil {
		return dvload.LoadConfig{}, err
	}
	var pc config.ProjectConfig
	if projectCfg != nil {
		pc = *projectCfg
	}

	connConfig, err := resolveConnection(cf, projectCfg, prompt, verbose)
	if err != nil {
		return dvload.LoadConfig{}, err
	}

	hashMode, err := dvload.ParseHashMode(firstNonEmpty(rf.hashMode, pc.HashMode))
	if err != nil {
		return dvload.LoadConfig{}, err
	}

	timeout := rf.timeout
	if !cmd.Flags().Changed("timeout") {
		yamlTimeout, err := pc.TimeoutDuration()
		if err != nil {
			return dvload.LoadConfig{}, err
		}
		if yamlTimeout > 0 {
			timeout = yamlTimeout
		}
	}

	return dvload.LoadConfig{
		SourcePath:        firstNonEmpty(sourcePath, os.Getenv("FILE_PATH"), pc.Source),
		ConnectionString:  db.BuildConnectionString(connConfig),
		Schema:            firstNonEmpty(rf.schema, pc.Schema),
		RecordSource:      firstNonEmpty(rf.recordSource, pc.RecordSource),
		HashMode:          hashMode,
		Timeout:           timeout,
		Verbose:           verbose,
		AuthMethod:        connConfig.AuthMethod,
		AzureTenantID:     connConfig.AzureTenantID,
		AzureClientID:     connConfig.AzureClientID,
		AzureClientSecret: connConfig.AzureClientSecret,
		AWSRegion:         connConfig.AWSRegion,
		GoogleInstance:    connConfig.GoogleInstance,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
