package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultConfig tests that the defaults validate cleanly
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected defaults to be valid: %v", err)
	}
	if cfg.Epsilon != 0.5 {
		t.Errorf("Expected default epsilon 0.5, got %f", cfg.Epsilon)
	}
	if cfg.TraversalCap != 250000 {
		t.Errorf("Expected default traversal cap 250000, got %d", cfg.TraversalCap)
	}
}

// TestLoad_MissingFile tests that a missing file yields defaults
func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Expected no error for missing file, got: %v", err)
	}
	if cfg.StatePath != "takeoff.state" {
		t.Errorf("Expected default state path, got %q", cfg.StatePath)
	}
}

// TestLoad_PartialFile tests that unset fields fall back to defaults
func TestLoad_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "state_path: /var/lib/takeoff/ids.state\nepsilon: 1.5\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.StatePath != "/var/lib/takeoff/ids.state" {
		t.Errorf("Expected configured state path, got %q", cfg.StatePath)
	}
	if cfg.Epsilon != 1.5 {
		t.Errorf("Expected epsilon 1.5, got %f", cfg.Epsilon)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %q", cfg.LogLevel)
	}
	if cfg.TraversalCap != 250000 {
		t.Errorf("Expected default traversal cap, got %d", cfg.TraversalCap)
	}
}

// TestLoad_Malformed tests that bad YAML is reported
func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("epsilon: [not a number"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

// TestValidate_Invalid tests rejection of out-of-range values
func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty state path", func(c *Config) { c.StatePath = "" }},
		{"zero epsilon", func(c *Config) { c.Epsilon = 0 }},
		{"negative cap", func(c *Config) { c.TraversalCap = -1 }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

// TestPassphrase tests passphrase resolution from the environment
func TestPassphrase(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.Passphrase(); got != "" {
		t.Errorf("Expected empty passphrase when disabled, got %q", got)
	}

	cfg.PassphraseEnv = "TAKEOFF_TEST_PASSPHRASE"
	t.Setenv("TAKEOFF_TEST_PASSPHRASE", "hunter2")
	if got := cfg.Passphrase(); got != "hunter2" {
		t.Errorf("Expected passphrase from env, got %q", got)
	}
}
