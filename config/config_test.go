package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Query.ResultLimit != 5000 {
		t.Errorf("expected result limit 5000, got %d", cfg.Query.ResultLimit)
	}
	if cfg.Store.Backend != BackendSQLite || cfg.Store.Path != "data/insight.db" {
		t.Errorf("expected sqlite backend at data/insight.db, got %q %q", cfg.Store.Backend, cfg.Store.Path)
	}
	if cfg.Ingest.Workers != 4 || cfg.Log.Level != "info" || cfg.Server.Addr != ":4321" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if *Default() != *cfg {
		t.Errorf("Default() differs from Load(\"\")")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insight.yaml")
	body := "query:\n  resultlimit: 10\nstore:\n  backend: sqlite\n  path: /tmp/x.db\nlog:\n  format: json\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Query.ResultLimit != 10 || cfg.Store.Backend != BackendSQLite || cfg.Store.Path != "/tmp/x.db" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Log.Format != "json" || cfg.Log.Level != "info" {
		t.Errorf("unexpected log config %+v", cfg.Log)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insight.json")
	if err := os.WriteFile(path, []byte(`{"query":{"resultlimit":10}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("INSIGHT_QUERY_RESULTLIMIT", "25")
	t.Setenv("INSIGHT_SERVER_ADDR", ":9000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Query.ResultLimit != 25 {
		t.Errorf("expected env override 25, got %d", cfg.Query.ResultLimit)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("expected :9000, got %q", cfg.Server.Addr)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	t.Setenv("INSIGHT_STORE_BACKEND", "redis")
	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "unknown store.backend") {
		t.Errorf("expected unknown backend error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
		ok   bool
	}{
		{"default", func(*Config) {}, true},
		{"zero limit", func(c *Config) { c.Query.ResultLimit = 0 }, true},
		{"negative limit", func(c *Config) { c.Query.ResultLimit = -1 }, false},
		{"negative workers", func(c *Config) { c.Ingest.Workers = -2 }, false},
		{"sqlite without path", func(c *Config) { c.Store.Backend = BackendSQLite; c.Store.Path = "" }, false},
		{"postgres without dsn", func(c *Config) { c.Store.Backend = BackendPostgres }, false},
		{"postgres with dsn", func(c *Config) { c.Store.Backend = BackendPostgres; c.Store.DSN = "postgres://x" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.edit(cfg)
			if err := cfg.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}
