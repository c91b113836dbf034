// internal/config/config.go
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Storage struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path,omitempty"`
	} `yaml:"storage"`
	Simulation struct {
		// DelayScale multiplies every simulated provider delay. 0 disables waiting.
		DelayScale float64 `yaml:"delay_scale"`
		// Timeout bounds each model's generation. 0 disables it.
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"simulation"`
	Ratings struct {
		KFactor     int  `yaml:"k_factor"`
		Default     int  `yaml:"default"`
		Strict      bool `yaml:"strict"`
		ReplayVotes bool `yaml:"replay_votes"`
	} `yaml:"ratings"`
	Arena struct {
		HistorySize int `yaml:"history_size"`
	} `yaml:"arena"`
	Events struct {
		// WebhookURL receives battle and vote events. Empty disables them.
		WebhookURL string `yaml:"webhook_url,omitempty"`
	} `yaml:"events"`
	Defaults struct {
		Models []string `yaml:"models"`
	} `yaml:"defaults"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads the config from the default location, falling back to defaults
// when no file exists.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config at path. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables in config
	expanded := os.ExpandEnv(string(data))

	cfg := defaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyDefaults(cfg)

	return cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Storage.Enabled = true
	cfg.Storage.Path = defaultStoragePath()
	cfg.Simulation.DelayScale = 1
	cfg.Simulation.Timeout = 60 * time.Second
	cfg.Ratings.KFactor = 32
	cfg.Ratings.Default = 1500
	cfg.Arena.HistorySize = 10
	cfg.Defaults.Models = []string{"gpt-4", "claude-3-opus"}
	cfg.Log.Level = "info"
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = defaultStoragePath()
	}
	if cfg.Simulation.DelayScale < 0 {
		cfg.Simulation.DelayScale = 0
	}
	if cfg.Simulation.Timeout < 0 {
		cfg.Simulation.Timeout = 0
	}
	if cfg.Ratings.KFactor == 0 {
		cfg.Ratings.KFactor = 32
	}
	if cfg.Ratings.Default == 0 {
		cfg.Ratings.Default = 1500
	}
	if cfg.Arena.HistorySize <= 0 {
		cfg.Arena.HistorySize = 10
	}
	if len(cfg.Defaults.Models) == 0 {
		cfg.Defaults.Models = []string{"gpt-4", "claude-3-opus"}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// SlogLevel maps the configured level name onto a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ConfigPath() string {
	configDir, _ := os.UserConfigDir()
	if configDir == "" {
		configDir = os.ExpandEnv("$HOME/.config")
	}
	return filepath.Join(configDir, "modelarena", "config.yaml")
}

func defaultStoragePath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "modelarena.db"
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "modelarena", "arena.db")
}
