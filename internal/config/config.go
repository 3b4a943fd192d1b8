// Package config loads the driver configuration from YAML or JSON files
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jzx17/threadpool/pkg/worker"
	"gopkg.in/yaml.v3"
)

// Config is the resolved driver configuration
type Config struct {
	PoolSize         int
	Jobs             int
	Repeat           int
	Interval         time.Duration
	MetricsAddr      string
	MetricsNamespace string
	LogLevel         slog.Level
}

// DefaultConfig returns the driver defaults
func DefaultConfig() Config {
	return Config{
		PoolSize:         4,
		Jobs:             1,
		Repeat:           3,
		Interval:         time.Second,
		MetricsNamespace: "threadpool",
		LogLevel:         slog.LevelInfo,
	}
}

// Validate checks the resolved configuration
func (c Config) Validate() error {
	if c.PoolSize <= 0 || c.PoolSize > worker.MaxPoolSize {
		return fmt.Errorf("pool size must be between 1 and %d, got %d", worker.MaxPoolSize, c.PoolSize)
	}
	if c.Jobs <= 0 {
		return fmt.Errorf("max number of jobs must be positive, got %d", c.Jobs)
	}
	if c.Repeat <= 0 {
		return fmt.Errorf("repeat must be positive, got %d", c.Repeat)
	}
	if c.Interval < 0 {
		return fmt.Errorf("interval must be non-negative, got %s", c.Interval)
	}
	return nil
}

// FileConfig is the on-disk layout
type FileConfig struct {
	Pool    PoolSection    `yaml:"pool" json:"pool"`
	Metrics MetricsSection `yaml:"metrics" json:"metrics"`
	Log     LogSection     `yaml:"log" json:"log"`
}

// PoolSection configures the pool and the demo workload
type PoolSection struct {
	Size     int    `yaml:"size" json:"size"`
	Jobs     int    `yaml:"jobs" json:"jobs"`
	Repeat   int    `yaml:"repeat" json:"repeat"`
	Interval string `yaml:"interval" json:"interval"`
}

// MetricsSection configures the Prometheus endpoint
type MetricsSection struct {
	Addr      string `yaml:"addr" json:"addr"`
	Namespace string `yaml:"namespace" json:"namespace"`
}

// LogSection configures logging
type LogSection struct {
	Level string `yaml:"level" json:"level"`
}

// LoadFile reads a YAML or JSON config file, chosen by extension
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}

	return &fc, nil
}

// Apply overlays the non-zero file values on base
func (f *FileConfig) Apply(base Config) (Config, error) {
	cfg := base

	if f.Pool.Size != 0 {
		cfg.PoolSize = f.Pool.Size
	}
	if f.Pool.Jobs != 0 {
		cfg.Jobs = f.Pool.Jobs
	}
	if f.Pool.Repeat != 0 {
		cfg.Repeat = f.Pool.Repeat
	}
	if f.Pool.Interval != "" {
		d, err := time.ParseDuration(f.Pool.Interval)
		if err != nil {
			return cfg, fmt.Errorf("invalid interval: %w", err)
		}
		cfg.Interval = d
	}
	if f.Metrics.Addr != "" {
		cfg.MetricsAddr = f.Metrics.Addr
	}
	if f.Metrics.Namespace != "" {
		cfg.MetricsNamespace = f.Metrics.Namespace
	}
	if f.Log.Level != "" {
		level, err := ParseLevel(f.Log.Level)
		if err != nil {
			return cfg, err
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}

// ParseLevel parses debug, info, warn or error
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
	return level, nil
}
