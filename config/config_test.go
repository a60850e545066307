package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyOverlay_MissingFileLeavesDefaultsUntouched(t *testing.T) {
	cfg := loadFromEnv()
	before := cfg.BatchSize

	applyOverlay(cfg, filepath.Join(t.TempDir(), "does-not-exist.toml"))

	if cfg.BatchSize != before {
		t.Errorf("expected BatchSize untouched, got %d want %d", cfg.BatchSize, before)
	}
}

func TestApplyOverlay_OverridesSetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worker.toml")
	content := "batch_size = 42\nlog_level = \"warn\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write overlay fixture: %v", err)
	}

	cfg := loadFromEnv()
	applyOverlay(cfg, path)

	if cfg.BatchSize != 42 {
		t.Errorf("got BatchSize %d, want 42", cfg.BatchSize)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("got LogLevel %q, want warn", cfg.LogLevel)
	}
}

func TestApplyOverlay_UnsetFieldsKeepDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worker.toml")
	if err := os.WriteFile(path, []byte("batch_size = 7\n"), 0o644); err != nil {
		t.Fatalf("write overlay fixture: %v", err)
	}

	cfg := loadFromEnv()
	originalUserAgent := cfg.UserAgent

	applyOverlay(cfg, path)

	if cfg.UserAgent != originalUserAgent {
		t.Errorf("expected UserAgent to keep its default, got %q", cfg.UserAgent)
	}
}
