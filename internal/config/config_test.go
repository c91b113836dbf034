// internal/config/config_test.go
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server addr should be ':8080', got %s", cfg.Server.Addr)
	}
	if cfg.Ratings.KFactor != 32 {
		t.Errorf("KFactor should be 32, got %d", cfg.Ratings.KFactor)
	}
	if cfg.Ratings.Default != 1500 {
		t.Errorf("Default rating should be 1500, got %d", cfg.Ratings.Default)
	}
	if cfg.Arena.HistorySize != 10 {
		t.Errorf("HistorySize should be 10, got %d", cfg.Arena.HistorySize)
	}
	if cfg.Ratings.Strict {
		t.Error("Strict ratings should be off by default")
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadFrom() returned nil config")
	}
	if cfg.Simulation.DelayScale != 1 {
		t.Errorf("DelayScale should default to 1, got %v", cfg.Simulation.DelayScale)
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("ARENA_ADDR", ":9999")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  addr: ${ARENA_ADDR}
simulation:
  delay_scale: 0
  timeout: 5s
ratings:
  strict: true
events:
  webhook_url: http://localhost:5965/event
defaults:
  models: [gemini-pro, command-r]
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Expected env-expanded addr ':9999', got %s", cfg.Server.Addr)
	}
	if cfg.Simulation.DelayScale != 0 {
		t.Errorf("Expected delay scale 0, got %v", cfg.Simulation.DelayScale)
	}
	if cfg.Simulation.Timeout != 5*time.Second {
		t.Errorf("Expected timeout 5s, got %v", cfg.Simulation.Timeout)
	}
	if !cfg.Ratings.Strict {
		t.Error("Expected strict ratings")
	}
	if cfg.Events.WebhookURL != "http://localhost:5965/event" {
		t.Errorf("Unexpected webhook url %q", cfg.Events.WebhookURL)
	}
	if cfg.Ratings.KFactor != 32 {
		t.Errorf("Expected KFactor default 32, got %d", cfg.Ratings.KFactor)
	}
	if len(cfg.Defaults.Models) != 2 || cfg.Defaults.Models[0] != "gemini-pro" {
		t.Errorf("Unexpected default models %v", cfg.Defaults.Models)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("Expected debug level, got %v", cfg.SlogLevel())
	}
}

func TestLoadFromInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("Expected parse error for invalid YAML")
	}
}
