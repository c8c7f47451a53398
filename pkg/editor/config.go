package editor

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xob0t/GoLayers/pkg/interact"
)

// Config holds all editor configuration.
type Config struct {
	// Origin is the editor's own origin; images elsewhere are cross-origin.
	Origin          string          `yaml:"origin"`
	HistoryLimit    int             `yaml:"history_limit"`
	DragBounds      interact.Bounds `yaml:"drag_bounds"`
	MinSize         float64         `yaml:"min_size"`          // percent
	HandleSize      float64         `yaml:"handle_size"`       // pixels, as drawn
	HandleHitRadius float64         `yaml:"handle_hit_radius"` // pixels, as hit-tested
	FontPath        string          `yaml:"font_path"`
	BackgroundColor string          `yaml:"background_color"`
	LogLevel        string          `yaml:"log_level"`
	Fetch           FetchConfig     `yaml:"fetch"`
	Export          ExportConfig    `yaml:"export"`
}

// FetchConfig controls image retrieval.
type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	MaxBytes  int64         `yaml:"max_bytes"`
	UserAgent string        `yaml:"user_agent"`
}

// ExportConfig controls the export pipeline.
type ExportConfig struct {
	WaitTimeout time.Duration `yaml:"wait_timeout"`
	Concurrency int           `yaml:"concurrency"`
}

func (c *Config) defaults() {
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 50
	}
	if c.DragBounds.Min == 0 && c.DragBounds.Max == 0 {
		c.DragBounds = interact.Bounds{Min: -50, Max: 150}
	}
	if c.MinSize <= 0 {
		c.MinSize = 5
	}
	if c.HandleSize <= 0 {
		c.HandleSize = 8
	}
	if c.HandleHitRadius <= 0 {
		c.HandleHitRadius = 10
	}
	if c.BackgroundColor == "" {
		c.BackgroundColor = "#ffffff"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = 15 * time.Second
	}
	if c.Fetch.MaxBytes <= 0 {
		c.Fetch.MaxBytes = 20 * 1024 * 1024
	}
	if c.Export.WaitTimeout <= 0 {
		c.Export.WaitTimeout = 10 * time.Second
	}
	if c.Export.Concurrency <= 0 {
		c.Export.Concurrency = 4
	}
}

// DefaultConfig returns a config with every default filled in.
func DefaultConfig() Config {
	var c Config
	c.defaults()
	return c
}

// Level maps log_level to a slog level. Unknown values mean info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
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

// LoadConfigFile reads a YAML config file. Missing keys keep their defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.defaults()
	return cfg, nil
}
