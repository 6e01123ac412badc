package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/dvload/internal/db"
	"github.com/vvka-141/dvload/pkg/dvload"
)

var connectionEnv = []string{
	"PGHOST", "PGPORT", "PGUSER", "PGPASSWORD", "PGDATABASE", "PGSSLMODE", "DATABASE_URL",
	"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
	"AZURE_TENANT_ID", "AZURE_CLIENT_ID", "AZURE_CLIENT_SECRET", "AWS_REGION",
	"FILE_PATH",
}

// isolate runs the test in an empty directory with no connection variables
// set. Variables are unset rather than emptied so a .env file can fill them.
func isolate(t *testing.T) string {
	t.Helper()
	for _, name := range connectionEnv {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// newRunCommand returns a command carrying the run flags, parsed from args.
func newRunCommand(t *testing.T, args ...string) (*cobra.Command, runFlags) {
	t.Helper()
	var rf runFlags
	cmd := &cobra.Command{Use: "load"}
	addRunFlags(cmd, &rf)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, rf
}

func noPrompt(string) (string, error) {
	panic("password prompt not expected")
}

func TestBuildLoadConfig_Defaults(t *testing.T) {
	isolate(t)
	cmd, rf := newRunCommand(t)

	cfg, err := buildLoadConfig(cmd, "orders.csv", connectionFlags{host: "gp.internal", username: "loader", database: "dwh"}, rf, noPrompt, false)
	require.NoError(t, err)

	assert.Equal(t, "orders.csv", cfg.SourcePath)
	assert.Equal(t, dvload.HashModeDelimited, cfg.HashMode)
	assert.Equal(t, dvload.DefaultTimeout, cfg.Timeout)
	assert.Empty(t, cfg.Schema)
	assert.Equal(t, dvload.AuthMethodStandard, cfg.AuthMethod)

	parsed, err := db.ParseConnectionString(cfg.ConnectionString)
	require.NoError(t, err)
	assert.Equal(t, "gp.internal", parsed.Host)
	assert.Equal(t, 5432, parsed.Port)
	assert.Equal(t, "loader", parsed.Username)
	assert.Equal(t, "dwh", parsed.Database)
}

func TestBuildLoadConfig_ProjectFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, "dvload.yaml", `
connection:
  host: yaml-host
  port: 6432
  username: yaml-user
  database: yaml-db
source: from-yaml.csv
record_source: superstore
schema: vault
hash_mode: concat
timeout: 90s
`)

	t.Run("fills unset values", func(t *testing.T) {
		cmd, rf := newRunCommand(t)
		cfg, err := buildLoadConfig(cmd, "", connectionFlags{}, rf, noPrompt, false)
		require.NoError(t, err)

		assert.Equal(t, "from-yaml.csv", cfg.SourcePath)
		assert.Equal(t, "superstore", cfg.RecordSource)
		assert.Equal(t, "vault", cfg.Schema)
		assert.Equal(t, dvload.HashModeConcat, cfg.HashMode)
		assert.Equal(t, 90*time.Second, cfg.Timeout)

		parsed, err := db.ParseConnectionString(cfg.ConnectionString)
		require.NoError(t, err)
		assert.Equal(t, "yaml-host", parsed.Host)
		assert.Equal(t, 6432, parsed.Port)
		assert.Equal(t, "yaml-db", parsed.Database)
	})

	t.Run("flags win", func(t *testing.T) {
		cmd, rf := newRunCommand(t, "--schema", "public", "--hash-mode", "delimited", "--timeout", "5m")
		rf.recordSource = "manual"
		cfg, err := buildLoadConfig(cmd, "arg.csv", connectionFlags{host: "flag-host"}, rf, noPrompt, false)
		require.NoError(t, err)

		assert.Equal(t, "arg.csv", cfg.SourcePath)
		assert.Equal(t, "manual", cfg.RecordSource)
		assert.Equal(t, "public", cfg.Schema)
		assert.Equal(t, dvload.HashModeDelimited, cfg.HashMode)
		assert.Equal(t, 5*time.Minute, cfg.Timeout)

		parsed, err := db.ParseConnectionString(cfg.ConnectionString)
		require.NoError(t, err)
		assert.Equal(t, "flag-host", parsed.Host)
	})

	t.Run("environment beats project file", func(t *testing.T) {
		t.Setenv("FILE_PATH", "from-env.csv")
		t.Setenv("DB_HOST", "env-host")

		cmd, rf := newRunCommand(t)
		cfg, err := buildLoadConfig(cmd, "", connectionFlags{}, rf, noPrompt, false)
		require.NoError(t, err)

		assert.Equal(t, "from-env.csv", cfg.SourcePath)
		parsed, err := db.ParseConnectionString(cfg.ConnectionString)
		require.NoError(t, err)
		assert.Equal(t, "env-host", parsed.Host)
	})
}

func TestBuildLoadConfig_DotEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, ".env", "DB_HOST=dotenv-host\nDB_NAME=dotenv-db\nDB_USER=etl\nFILE_PATH=dotenv.csv\n")

	cmd, rf := newRunCommand(t)
	cfg, err := buildLoadConfig(cmd, "", connectionFlags{}, rf, noPrompt, false)
	require.NoError(t, err)

	assert.Equal(t, "dotenv.csv", cfg.SourcePath)
	parsed, err := db.ParseConnectionString(cfg.ConnectionString)
	require.NoError(t, err)
	assert.Equal(t, "dotenv-host", parsed.Host)
	assert.Equal(t, "dotenv-db", parsed.Database)
	assert.Equal(t, "etl", parsed.Username)
}

func TestBuildLoadConfig_PasswordPrompt(t *testing.T) {
	isolate(t)
	t.Setenv("PGPASSWORD", "from-env")

	var asked string
	prompt := func(p string) (string, error) {
		asked = p
		return "typed", nil
	}

	cmd, rf := newRunCommand(t)
	cfg, err := buildLoadConfig(cmd, "x.csv", connectionFlags{username: "loader", database: "dwh", password: true}, rf, prompt, false)
	require.NoError(t, err)

	assert.Contains(t, asked, "loader")
	parsed, err := db.ParseConnectionString(cfg.ConnectionString)
	require.NoError(t, err)
	assert.Equal(t, "typed", parsed.Password)
}

func TestBuildLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		flags   connectionFlags
		args    []string
		wantErr error
	}{
		{
			name:    "no database anywhere",
			flags:   connectionFlags{host: "h"},
			wantErr: dvload.ErrInvalidConfig,
		},
		{
			name:    "connection string with granular flags",
			flags:   connectionFlags{connection: "postgresql://u@h/db", host: "other"},
			wantErr: dvload.ErrInvalidConfig,
		},
		{
			name:    "unknown hash mode flag",
			flags:   connectionFlags{database: "dwh"},
			args:    []string{"--hash-mode", "sha1"},
			wantErr: dvload.ErrInvalidConfig,
		},
		{
			name:    "unknown auth method",
			flags:   connectionFlags{database: "dwh", authMethod: "kerberos"},
			wantErr: dvload.ErrUnsupportedAuthMethod,
		},
		{
			name:    "invalid project file",
			yaml:    "hash_mode: sha1\n",
			flags:   connectionFlags{database: "dwh"},
			wantErr: dvload.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			if tt.yaml != "" {
				writeFile(t, dir, "dvload.yaml", tt.yaml)
			}
			cmd, rf := newRunCommand(t, tt.args...)

			_, err := buildLoadConfig(cmd, "x.csv", tt.flags, rf, noPrompt, false)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
	assert.Equal(t, "", firstNonEmpty())
}
