// Package config loads the application configuration from a YAML file
// with MATHPILOT_* environment overrides layered on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/mathpilot/internal/session"
)

// Duration wraps time.Duration so YAML values can be written as "3s".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"3s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the application configuration surface.
type Config struct {
	// Username and Password are handed to the session's Authenticator.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// MinDelay and MaxDelay bound the randomized pause between problems.
	MinDelay Duration `yaml:"min_delay"`
	MaxDelay Duration `yaml:"max_delay"`

	// EthicalMode materializes step-by-step derivations in solutions.
	EthicalMode bool `yaml:"ethical_mode"`

	// FetchAttempts bounds retries of a failing problem fetch.
	FetchAttempts int `yaml:"fetch_attempts"`

	// FailureThreshold halts the session after this many consecutive
	// unsolved problems.
	FailureThreshold int `yaml:"failure_threshold"`

	// CallTimeout bounds each collaborator call.
	CallTimeout Duration `yaml:"call_timeout"`

	// Script points at a playback script for offline runs.
	Script string `yaml:"script"`

	// Database overrides the SQLite path. Empty means the default
	// location under XDG_DATA_HOME.
	Database string `yaml:"database"`
}

// Default returns the built-in configuration.
func Default() Config {
	sc := session.DefaultConfig()
	return Config{
		MinDelay:         Duration(sc.MinDelay),
		MaxDelay:         Duration(sc.MaxDelay),
		FetchAttempts:    sc.FetchAttempts,
		FailureThreshold: sc.FailureThreshold,
		CallTimeout:      Duration(sc.CallTimeout),
	}
}

// Load reads the configuration: defaults, then the YAML file at path
// (skipped when path is empty), then environment overrides. The result
// is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.SessionConfig().Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv layers MATHPILOT_* variables over the file values.
func (c *Config) applyEnv() error {
	if v := os.Getenv("MATHPILOT_USERNAME"); v != "" {
		c.Username = v
	}
	if v := os.Getenv("MATHPILOT_PASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv("MATHPILOT_SCRIPT"); v != "" {
		c.Script = v
	}
	if v := os.Getenv("MATHPILOT_DB"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("MATHPILOT_ETHICAL_MODE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MATHPILOT_ETHICAL_MODE: %w", err)
		}
		c.EthicalMode = b
	}

	durations := []struct {
		env string
		dst *Duration
	}{
		{"MATHPILOT_MIN_DELAY", &c.MinDelay},
		{"MATHPILOT_MAX_DELAY", &c.MaxDelay},
		{"MATHPILOT_CALL_TIMEOUT", &c.CallTimeout},
	}
	for _, d := range durations {
		v := os.Getenv(d.env)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.env, err)
		}
		*d.dst = Duration(parsed)
	}
	return nil
}

// SessionConfig converts to the session package's configuration.
func (c Config) SessionConfig() session.Config {
	return session.Config{
		MinDelay:         time.Duration(c.MinDelay),
		MaxDelay:         time.Duration(c.MaxDelay),
		EthicalMode:      c.EthicalMode,
		FetchAttempts:    c.FetchAttempts,
		FailureThreshold: c.FailureThreshold,
		CallTimeout:      time.Duration(c.CallTimeout),
		Credentials: session.Credentials{
			Username: c.Username,
			Password: c.Password,
		},
	}
}
