package dvload_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vvka-141/dvload/pkg/dvload"
)

func TestLoadConfig_Validate(t *testing.T) {
	valid := dvload.LoadConfig{
		SourcePath:       "superstore.csv",
		ConnectionString: "postgresql://loader@localhost:5432/dwh",
	}

	tests := []struct {
		name      string
		mutate    func(c *dvload.LoadConfig)
		errorType error
	}{
		{name: "valid config", mutate: func(*dvload.LoadConfig) {}},
		{
			name:      "missing source path",
			mutate:    func(c *dvload.LoadConfig) { c.SourcePath = "" },
			errorType: dvload.ErrInvalidConfig,
		},
		{
			name:      "missing connection string",
			mutate:    func(c *dvload.LoadConfig) { c.ConnectionString = "" },
			errorType: dvload.ErrInvalidConfig,
		},
		{
			name:      "negative timeout",
			mutate:    func(c *dvload.LoadConfig) { c.Timeout = -time.Second },
			errorType: dvload.ErrInvalidConfig,
		},
		{
			name:      "unknown hash mode",
			mutate:    func(c *dvload.LoadConfig) { c.HashMode = "sha1" },
			errorType: dvload.ErrInvalidConfig,
		},
		{
			name:      "unknown auth method",
			mutate:    func(c *dvload.LoadConfig) { c.AuthMethod = dvload.AuthMethod(99) },
			errorType: dvload.ErrUnsupportedAuthMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.errorType == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.errorType) {
				t.Errorf("Validate() error = %v, want %v", err, tt.errorType)
			}
		})
	}
}

func TestLoadConfig_ValidateReportsAllFailures(t *testing.T) {
	cfg := dvload.LoadConfig{Timeout: -1, HashMode: "md4"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		t.Fatalf("expected a joined error, got %T", err)
	}
	if n := len(joined.Unwrap()); n != 3 {
		t.Errorf("expected 3 failures (source, connection, hash mode), got %d: %v", n, err)
	}
}

func TestLoadConfig_ValidateConnectionIgnoresSource(t *testing.T) {
	cfg := dvload.LoadConfig{ConnectionString: "postgresql://localhost/dwh"}
	if err := cfg.ValidateConnection(); err != nil {
		t.Errorf("ValidateConnection() unexpected error = %v", err)
	}
	if err := cfg.Validate(); !errors.Is(err, dvload.ErrInvalidConfig) {
		t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadConfig_WithDefaults(t *testing.T) {
	cfg := dvload.LoadConfig{}.WithDefaults()
	if cfg.Schema != dvload.DefaultSchema {
		t.Errorf("Schema = %q, want %q", cfg.Schema, dvload.DefaultSchema)
	}
	if cfg.HashMode != dvload.HashModeDelimited {
		t.Errorf("HashMode = %q, want %q", cfg.HashMode, dvload.HashModeDelimited)
	}
	if cfg.Timeout != dvload.DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, dvload.DefaultTimeout)
	}

	kept := dvload.LoadConfig{Schema: "vault", HashMode: dvload.HashModeConcat, Timeout: time.Minute}.WithDefaults()
	if kept.Schema != "vault" || kept.HashMode != dvload.HashModeConcat || kept.Timeout != time.Minute {
		t.Errorf("WithDefaults() overwrote set fields: %+v", kept)
	}
}

func TestParseHashMode(t *testing.T) {
	tests := []struct {
		in      string
		want    dvload.HashMode
		wantErr bool
	}{
		{"", dvload.HashModeDelimited, false},
		{"delimited", dvload.HashModeDelimited, false},
		{"concat", dvload.HashModeConcat, false},
		{"Concat", "", true},
		{"md5", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := dvload.ParseHashMode(tt.in)
			if tt.wantErr {
				if !errors.Is(err, dvload.ErrInvalidConfig) {
					t.Errorf("ParseHashMode(%q) error = %v, want ErrInvalidConfig", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHashMode(%q) unexpected error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseHashMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseAuthMethod(t *testing.T) {
	tests := []struct {
		in   string
		want dvload.AuthMethod
	}{
		{"", dvload.AuthMethodStandard},
		{"standard", dvload.AuthMethodStandard},
		{"aws", dvload.AuthMethodAWSIAM},
		{"aws-iam", dvload.AuthMethodAWSIAM},
		{"google", dvload.AuthMethodGoogleIAM},
		{"google-iam", dvload.AuthMethodGoogleIAM},
		{"azure", dvload.AuthMethodAzureEntraID},
		{"azure-entra-id", dvload.AuthMethodAzureEntraID},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := dvload.ParseAuthMethod(tt.in)
			if err != nil {
				t.Fatalf("ParseAuthMethod(%q) unexpected error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseAuthMethod(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if _, err := dvload.ParseAuthMethod("kerberos"); !errors.Is(err, dvload.ErrUnsupportedAuthMethod) {
		t.Errorf("ParseAuthMethod(kerberos) error = %v, want ErrUnsupportedAuthMethod", err)
	}
}

func TestAuthMethod_String(t *testing.T) {
	if got := dvload.AuthMethodAzureEntraID.String(); got != "Azure Entra ID" {
		t.Errorf("String() = %q", got)
	}
	if got := dvload.AuthMethod(42).String(); got != "Unknown(42)" {
		t.Errorf("String() = %q", got)
	}
	if dvload.AuthMethod(42).IsValid() {
		t.Error("AuthMethod(42) should not be valid")
	}
}

func TestBatch_Len(t *testing.T) {
	var nilBatch *dvload.Batch
	if nilBatch.Len() != 0 {
		t.Error("nil batch should have length 0")
	}
	b := &dvload.Batch{Rows: make([]dvload.Row, 3)}
	if b.Len() != 3 {
		t.Errorf("Len() = %d, want 3", b.Len())
	}
}

func TestLoadReport_TotalsAndLookup(t *testing.T) {
	r := &dvload.LoadReport{Tables: []dvload.TableStats{
		{Table: "hub_customer", Candidates: 2, Inserted: 1, Skipped: 1},
		{Table: "sat_order", Candidates: 2, Inserted: 2},
	}}
	if got := r.TotalInserted(); got != 3 {
		t.Errorf("TotalInserted() = %d, want 3", got)
	}
	if s, ok := r.Table("sat_order"); !ok || s.Inserted != 2 {
		t.Errorf("Table(sat_order) = %+v, %v", s, ok)
	}
	if _, ok := r.Table("hub_product"); ok {
		t.Error("Table(hub_product) should not be found")
	}
}
