package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty primary file",
			mutate: func(cfg *Config) {
				cfg.PrimaryFile = ""
			},
			wantErr: "primary file",
		},
		{
			name: "empty output file",
			mutate: func(cfg *Config) {
				cfg.OutputFile = ""
			},
			wantErr: "output file",
		},
		{
			name: "bad output format",
			mutate: func(cfg *Config) {
				cfg.OutputFormat = "xml"
			},
			wantErr: "output format",
		},
		{
			name: "zero workers",
			mutate: func(cfg *Config) {
				cfg.Workers = 0
			},
			wantErr: "workers",
		},
		{
			name: "zero sample size",
			mutate: func(cfg *Config) {
				cfg.SampleSize = 0
			},
			wantErr: "sample size",
		},
		{
			name: "zero max attempts",
			mutate: func(cfg *Config) {
				cfg.MaxAttempts = 0
			},
			wantErr: "max attempts",
		},
		{
			name: "backoff exceeds cap",
			mutate: func(cfg *Config) {
				cfg.RetryBackoff = 10 * time.Second
				cfg.RetryBackoffMax = time.Second
			},
			wantErr: "retry backoff",
		},
		{
			name: "live mode without key",
			mutate: func(cfg *Config) {
				cfg.UseMockAPI = false
				cfg.APIKey = ""
			},
			wantErr: "API key",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("APPSMERGE_TEST_INT", "42")
	value, ok, err := EnvInt("APPSMERGE_TEST_INT")
	if err != nil || !ok || value != 42 {
		t.Fatalf("EnvInt = (%d, %v, %v), want (42, true, nil)", value, ok, err)
	}

	t.Setenv("APPSMERGE_TEST_INT", "not-a-number")
	if _, _, err := EnvInt("APPSMERGE_TEST_INT"); err == nil {
		t.Fatalf("expected parse error for non-numeric value")
	}

	if _, ok, _ := EnvInt("APPSMERGE_TEST_INT_MISSING"); ok {
		t.Fatalf("missing variable should not report ok")
	}
}
