package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Source.Kind != "api" {
		t.Errorf("Source.Kind = %q, want api", cfg.Source.Kind)
	}
	if cfg.Search.DefaultLimit != 10 || cfg.Search.MaxLimit != 100 {
		t.Errorf("Search limits = %d/%d, want 10/100", cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	}
	if cfg.Redis.Enabled || cfg.Kafka.Enabled {
		t.Error("optional backends enabled by default")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9999
source:
  kind: postgres
search:
  minTokenLength: 2
  maxQueryLength: 50
  defaultLimit: 5
  maxLimit: 20
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Source.Kind != "postgres" {
		t.Errorf("Source.Kind = %q, want postgres", cfg.Source.Kind)
	}
	if cfg.Search.MaxQueryLength != 50 {
		t.Errorf("Search.MaxQueryLength = %d, want 50", cfg.Search.MaxQueryLength)
	}
	// Unspecified sections keep their defaults.
	if cfg.Redis.CacheTTL != 5*time.Minute {
		t.Errorf("Redis.CacheTTL = %v, want default 5m", cfg.Redis.CacheTTL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load of missing file succeeded")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AURORA_SERVER_PORT", "7070")
	t.Setenv("AURORA_SOURCE_BASE_URL", "http://localhost:9000")
	t.Setenv("AURORA_REDIS_ADDR", "redis.internal:6379")
	t.Setenv("AURORA_MAX_RESULTS_PER_PAGE", "25")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Source.BaseURL != "http://localhost:9000" {
		t.Errorf("Source.BaseURL = %q", cfg.Source.BaseURL)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Addr != "redis.internal:6379" {
		t.Errorf("Redis = %+v, want enabled with overridden addr", cfg.Redis)
	}
	if cfg.Search.MaxLimit != 25 {
		t.Errorf("Search.MaxLimit = %d, want 25", cfg.Search.MaxLimit)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero min token length", "search:\n  minTokenLength: 0\n"},
		{"default limit above max", "search:\n  minTokenLength: 1\n  maxQueryLength: 100\n  defaultLimit: 200\n  maxLimit: 100\n"},
		{"unknown source kind", "source:\n  kind: carrier-pigeon\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatalf("writing config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{
		Host: "db", Port: 5432, Database: "aurora", User: "svc", Password: "secret", SSLMode: "require",
	}
	want := "host=db port=5432 user=svc password=secret dbname=aurora sslmode=require"
	if got := p.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
