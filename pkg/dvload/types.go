package dvload

import (
	"errors"
	"fmt"
	"time"
)

// HashMode selects how attribute tokens are combined before hashing.
type HashMode string

const (
	// HashModeDelimited escapes each token and joins them with ';'.
	// Attribute boundaries are unambiguous, so ("ab","c") and ("a","bc") differ.
	HashModeDelimited HashMode = "delimited"

	// HashModeConcat concatenates tokens with no separator. Batch cells are
	// rendered as the legacy loader typed them (one type per column inferred
	// over the batch, integers without leading zeros, floats with a decimal
	// point, missing cells as "nan"), so it reproduces the keys of warehouses
	// that loader populated.
	HashModeConcat HashMode = "concat"
)

// IsValid reports whether m is a known mode.
func (m HashMode) IsValid() bool {
	return m == HashModeDelimited || m == HashModeConcat
}

// ParseHashMode converts a flag or YAML value into a HashMode.
// An empty string yields the default delimited mode.
func ParseHashMode(s string) (HashMode, error) {
	if s == "" {
		return HashModeDelimited, nil
	}
	m := HashMode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("unknown hash mode %q (expected %q or %q): %w",
			s, HashModeDelimited, HashModeConcat, ErrInvalidConfig)
	}
	return m, nil
}

// LoadConfig contains all parameters needed for one load run.
// It replaces the process-wide environment lookups of a script: everything the
// orchestrator needs is passed in and validated before any resource is opened.
type LoadConfig struct {
	// SourcePath is the CSV file holding the batch
	SourcePath string

	// ConnectionString is the PostgreSQL connection string (URI or ADO.NET format)
	ConnectionString string

	// Schema holds the hub, link and satellite tables (default "public")
	Schema string

	// RecordSource overrides the provenance tag; defaults to the base name of SourcePath
	RecordSource string

	// HashMode selects the hash key encoding (default delimited)
	HashMode HashMode

	// Timeout is the global timeout for the entire load
	Timeout time.Duration

	// Verbose enables detailed logging
	Verbose bool

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Cloud authentication parameters, applied to the parsed connection
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
	AWSRegion         string
	GoogleInstance    string
}

// WithDefaults returns a copy of c with empty optional fields filled in.
func (c LoadConfig) WithDefaults() LoadConfig {
	if c.Schema == "" {
		c.Schema = DefaultSchema
	}
	if c.HashMode == "" {
		c.HashMode = HashModeDelimited
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Validate checks if the LoadConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *LoadConfig) Validate() error {
	var errs []error

	if c.SourcePath == "" {
		errs = append(errs, fmt.Errorf("SourcePath is required: %w", ErrInvalidConfig))
	}
	if err := c.ValidateConnection(); err != nil {
		errs = append(errs, err)
	}
	if c.HashMode != "" && !c.HashMode.IsValid() {
		errs = append(errs, fmt.Errorf("unknown hash mode %q: %w", c.HashMode, ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ValidateConnection checks the fields needed to reach the warehouse. It is
// all a preflight check requires.
func (c *LoadConfig) ValidateConnection() error {
	var errs []error

	if c.ConnectionString == "" {
		errs = append(errs, fmt.Errorf("ConnectionString is required: %w", ErrInvalidConfig))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	if !c.AuthMethod.IsValid() {
		errs = append(errs, fmt.Errorf("auth method %v: %w", c.AuthMethod, ErrUnsupportedAuthMethod))
	}

	return errors.Join(errs...)
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host        string
	Port        int
	Database    string
	Username    string
	Password    string
	SSLMode     string
	SSLCert     string
	SSLKey      string
	SSLRootCert string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	// If all three are provided, Service Principal authentication is used.
	// If none are provided, DefaultAzureCredential chain is used (env vars, managed identity, CLI, etc.)
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion is required for AuthMethodAWSIAM
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name (project:region:instance)
	GoogleInstance string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod converts a dvload.yaml auth_method value into an AuthMethod.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch s {
	case "", "standard":
		return AuthMethodStandard, nil
	case "aws", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "google-iam":
		return AuthMethodGoogleIAM, nil
	case "azure", "azure-entra-id":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("auth method %q: %w", s, ErrUnsupportedAuthMethod)
	}
}
