package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/dvload/pkg/dvload"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644))
	return dir
}

func TestLoad_AllFields(t *testing.T) {
	dir := writeConfig(t, `connection:
  host: warehouse.internal
  port: 5433
  username: loader
  database: dwh
  sslmode: require
  sslrootcert: /etc/ssl/ca.crt
  auth_method: aws
  aws_region: eu-central-1

source: data/SampleSuperstore.csv
record_source: superstore
schema: vault
hash_mode: concat
timeout: 15m
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "warehouse.internal", cfg.Connection.Host)
	assert.Equal(t, 5433, cfg.Connection.Port)
	assert.Equal(t, "loader", cfg.Connection.Username)
	assert.Equal(t, "dwh", cfg.Connection.Database)
	assert.Equal(t, "require", cfg.Connection.SSLMode)
	assert.Equal(t, "/etc/ssl/ca.crt", cfg.Connection.SSLRootCert)
	assert.Equal(t, "aws", cfg.Connection.AuthMethod)
	assert.Equal(t, "eu-central-1", cfg.Connection.AWSRegion)
	assert.Equal(t, "data/SampleSuperstore.csv", cfg.Source)
	assert.Equal(t, "superstore", cfg.RecordSource)
	assert.Equal(t, "vault", cfg.Schema)
	assert.Equal(t, "concat", cfg.HashMode)

	timeout, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, timeout)
}

func TestLoad_Minimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, "schema: public\n"))
	require.NoError(t, err)
	assert.Equal(t, "public", cfg.Schema)
	assert.Empty(t, cfg.Connection.Host)

	timeout, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Zero(t, timeout)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"bad yaml", "connection: [", nil},
		{"bad hash mode", "hash_mode: sha1\n", dvload.ErrInvalidConfig},
		{"bad timeout", "timeout: soon\n", dvload.ErrInvalidConfig},
		{"bad auth method", "connection:\n  auth_method: kerberos\n", dvload.ErrUnsupportedAuthMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
