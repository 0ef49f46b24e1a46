package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWritesDefaultOnMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path)

	cfg, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !cfg.Core.LegalBanner {
		t.Fatal("default config must enable the legal banner")
	}
	if cfg.Policy.RedTeamMode {
		t.Fatal("red team mode must be off by default")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config file not written: %v", err)
	}
}

func TestLoadHydratesPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := "backend:\n  provider: openai\n"
	if err := os.WriteFile(path, []byte(partial), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Backend.Provider != "openai" {
		t.Fatalf("provider = %q, want openai", cfg.Backend.Provider)
	}
	if cfg.Backend.TimeoutSeconds != 60 {
		t.Fatalf("backend timeout not hydrated: %d", cfg.Backend.TimeoutSeconds)
	}
	if cfg.Suggestions.KeepBatches != 5 {
		t.Fatalf("keep_batches not hydrated: %d", cfg.Suggestions.KeepBatches)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("core: [unclosed"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := NewFileLoader(path).Load(context.Background()); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}
