package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coach.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("TEST_COACH_KEY", "from-env")

	path := writeConfig(t, `
gemini:
  api_key: ${TEST_COACH_KEY}
  model: gemini-2.0-flash
store:
  path: ":memory:"
log:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Gemini.APIKey != "from-env" {
		t.Errorf("api key = %q", cfg.Gemini.APIKey)
	}
	if cfg.Store.Path != ":memory:" || cfg.Log.Level != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Gemini.APIKey != "env-key" {
		t.Errorf("api key = %q", cfg.Gemini.APIKey)
	}
	if cfg.Gemini.Model != "gemini-2.0-flash" || cfg.Gemini.MaxRetries != 3 || cfg.Gemini.RetryDelay != time.Second {
		t.Errorf("gemini defaults = %+v", cfg.Gemini)
	}
	if cfg.Store.Path != "coach.db" || cfg.Log.Level != "info" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadRejectsMissingKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	if _, err := Load(""); err == nil {
		t.Error("expected error without an API key")
	}
}

func TestLoadRejectsBadLevel(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "k")
	path := writeConfig(t, "log:\n  level: loud\n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid log level")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
