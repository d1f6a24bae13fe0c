package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Fatalf("unexpected log config %+v", cfg.Log)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN != ":memory:" || cfg.Database.Workers != 4 {
		t.Fatalf("unexpected database config %+v", cfg.Database)
	}
	if !cfg.Filter.CaseSensitive || cfg.Filter.Trimmed || cfg.Filter.CacheSize != 256 {
		t.Fatalf("unexpected filter config %+v", cfg.Filter)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rowset.yaml")
	data := []byte("log:\n  level: debug\ndatabase:\n  dsn: file.db\nfilter:\n  trimmed: true\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ROWSET_DATABASE_DSN", "env.db")
	t.Setenv("ROWSET_FILTER_CASESENSITIVE", "false")
	t.Setenv("ROWSET_FILTER_CACHESIZE", "16")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected level from file, got %q", cfg.Log.Level)
	}
	if cfg.Database.DSN != "env.db" {
		t.Fatalf("expected environment to win, got %q", cfg.Database.DSN)
	}
	if cfg.Filter.CaseSensitive || !cfg.Filter.Trimmed || cfg.Filter.CacheSize != 16 {
		t.Fatalf("unexpected filter config %+v", cfg.Filter)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing config file to fail")
	}
	t.Setenv("ROWSET_FILTER_CACHESIZE", "0")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected non-positive cache size to fail")
	}
}
