package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Executor.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.Executor.Timeout)
	}
	if cfg.Room.GracePeriod != time.Hour {
		t.Errorf("grace period = %v, want 1h", cfg.Room.GracePeriod)
	}
	if cfg.Storage.DBPath != "" {
		t.Errorf("db_path = %q, want empty (in-memory mode)", cfg.Storage.DBPath)
	}
	if cfg.CompletionEnabled() {
		t.Error("completion should be disabled by default")
	}
}

func TestLoad_FileAndEnvExpansion(t *testing.T) {
	dir := t.TempDir()
	data := `
server:
  port: 9090
executor:
  timeout: 3s
completion:
  base_url: https://example.test/v1
  api_key: ${SHAREPAD_TEST_KEY}
  model: test-model
`
	if err := os.WriteFile(filepath.Join(dir, "sharepad.yaml"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)
	t.Setenv("SHAREPAD_TEST_KEY", "sekrit")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Executor.Timeout != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", cfg.Executor.Timeout)
	}
	if cfg.Completion.APIKey != "sekrit" {
		t.Errorf("api_key = %q, want expanded env value", cfg.Completion.APIKey)
	}
	if !cfg.CompletionEnabled() {
		t.Error("completion should be enabled")
	}
}
