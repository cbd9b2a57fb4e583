package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-takeoff/pkg/validation"
)

// Config holds runtime configuration for takeoff runs
type Config struct {
	// StatePath is where the identifier state blob is persisted
	StatePath string `yaml:"state_path"`

	// Epsilon is the position tolerance for matching connection ends to ports
	Epsilon float64 `yaml:"epsilon"`

	// TraversalCap bounds connectivity expansion per run
	TraversalCap int `yaml:"traversal_cap"`

	// PassphraseEnv names the environment variable holding the state
	// encryption passphrase. Empty disables encryption.
	PassphraseEnv string `yaml:"passphrase_env"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level"`

	// AuditBufferSize is the capacity of the in-memory audit trail
	AuditBufferSize int `yaml:"audit_buffer_size"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		StatePath:       "takeoff.state",
		Epsilon:         0.5,
		TraversalCap:    250000,
		LogLevel:        "info",
		AuditBufferSize: 10000,
	}
}

// Load reads a YAML configuration file, applying defaults for unset fields.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	c.StatePath = validation.DefaultOr(c.StatePath, def.StatePath)
	c.Epsilon = validation.DefaultOrFloat(c.Epsilon, def.Epsilon)
	c.TraversalCap = validation.DefaultOrInt(c.TraversalCap, def.TraversalCap)
	c.LogLevel = validation.DefaultOr(c.LogLevel, def.LogLevel)
	c.AuditBufferSize = validation.DefaultOrInt(c.AuditBufferSize, def.AuditBufferSize)
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	return validation.NewConfigValidator("Config").
		Required("StatePath", c.StatePath).
		PositiveFloat("Epsilon", c.Epsilon).
		Positive("TraversalCap", c.TraversalCap).
		Positive("AuditBufferSize", c.AuditBufferSize).
		OneOf("LogLevel", c.LogLevel, []string{"debug", "info", "warn", "error"}).
		Validate()
}

// Passphrase resolves the state encryption passphrase from the environment.
// Returns empty when encryption is disabled.
func (c *Config) Passphrase() string {
	if c.PassphraseEnv == "" {
		return ""
	}
	return os.Getenv(c.PassphraseEnv)
}
