// Package config reads the optional dvload.yaml project file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/dvload/pkg/dvload"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConnectionConfig is the connection block of dvload.yaml. Passwords are never
// read from the file; use PGPASSWORD, DB_PASSWORD, ~/.pgpass or -W.
type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	SSLCert        string `yaml:"sslcert,omitempty"`
	SSLKey         string `yaml:"sslkey,omitempty"`
	SSLRootCert    string `yaml:"sslrootcert,omitempty"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

// ProjectConfig is the content of dvload.yaml.
type ProjectConfig struct {
	Connection   ConnectionConfig `yaml:"connection"`
	Source       string           `yaml:"source"`
	RecordSource string           `yaml:"record_source"`
	Schema       string           `yaml:"schema"`
	HashMode     string           `yaml:"hash_mode"`
	Timeout      string           `yaml:"timeout"`
}

const ConfigFileName = "dvload.yaml"

// Load reads dir/dvload.yaml. A missing file yields ErrConfigNotFound; callers
// usually treat that as an empty configuration.
func Load(dir string) (*ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFileName, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *ProjectConfig) validate() error {
	var errs []error
	if _, err := dvload.ParseHashMode(c.HashMode); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", ConfigFileName, err))
	}
	if _, err := c.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	if _, err := dvload.ParseAuthMethod(c.Connection.AuthMethod); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", ConfigFileName, err))
	}
	return errors.Join(errs...)
}

// TimeoutDuration parses Timeout. An empty value yields zero.
func (c *ProjectConfig) TimeoutDuration() (time.Duration, error) {
	if c == nil || c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s: invalid timeout %q: %w", ConfigFileName, c.Timeout, dvload.ErrInvalidConfig)
	}
	return d, nil
}
