package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/mathpilot/internal/session"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sc := cfg.SessionConfig()
	if sc.MinDelay != 3*time.Second || sc.MaxDelay != 8*time.Second {
		t.Errorf("delay bounds = %v/%v", sc.MinDelay, sc.MaxDelay)
	}
	if sc.FetchAttempts != 3 || sc.FailureThreshold != 10 {
		t.Errorf("retry settings = %d/%d", sc.FetchAttempts, sc.FailureThreshold)
	}
	if sc.EthicalMode {
		t.Error("ethical mode should default off")
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
username: student
password: secret
min_delay: 1s
max_delay: 2s
ethical_mode: true
fetch_attempts: 5
script: play/hw.yaml
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sc := cfg.SessionConfig()
	if sc.Credentials.Username != "student" || sc.Credentials.Password != "secret" {
		t.Errorf("credentials = %+v", sc.Credentials)
	}
	if sc.MinDelay != time.Second || sc.MaxDelay != 2*time.Second {
		t.Errorf("delay bounds = %v/%v", sc.MinDelay, sc.MaxDelay)
	}
	if !sc.EthicalMode || sc.FetchAttempts != 5 {
		t.Errorf("ethical=%v fetch_attempts=%d", sc.EthicalMode, sc.FetchAttempts)
	}
	if cfg.Script != "play/hw.yaml" {
		t.Errorf("script = %q", cfg.Script)
	}
	// Unset fields keep their defaults.
	if sc.FailureThreshold != 10 {
		t.Errorf("failure threshold = %d, want default 10", sc.FailureThreshold)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "username: from-file\nmin_delay: 1s\nmax_delay: 2s\n")
	t.Setenv("MATHPILOT_USERNAME", "from-env")
	t.Setenv("MATHPILOT_MIN_DELAY", "500ms")
	t.Setenv("MATHPILOT_ETHICAL_MODE", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Username != "from-env" {
		t.Errorf("username = %q, want env override", cfg.Username)
	}
	if time.Duration(cfg.MinDelay) != 500*time.Millisecond {
		t.Errorf("min delay = %v, want env override", time.Duration(cfg.MinDelay))
	}
	if !cfg.EthicalMode {
		t.Error("ethical mode env override not applied")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"inverted delays", "min_delay: 5s\nmax_delay: 2s\n"},
		{"bad duration", "min_delay: fast\n"},
		{"zero fetch attempts", "fetch_attempts: 0\n"},
		{"not yaml", "{{{{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadConfigurationErrorType(t *testing.T) {
	_, err := Load(writeConfig(t, "min_delay: 5s\nmax_delay: 2s\n"))
	var ce *session.ConfigurationError
	if !errors.As(err, &ce) {
		t.Errorf("error = %v, want ConfigurationError", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestBadEnvDuration(t *testing.T) {
	t.Setenv("MATHPILOT_MAX_DELAY", "soon")
	if _, err := Load(""); err == nil {
		t.Error("expected an error for an unparseable env duration")
	}
}
