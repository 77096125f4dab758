// Package config reads and writes recon.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/recon/internal/cache"
	"github.com/cleared-dev/recon/internal/logging"
	"github.com/cleared-dev/recon/internal/model"
	"github.com/cleared-dev/recon/internal/period"
	"github.com/cleared-dev/recon/internal/tabular"
)

// EnvDatabaseURL overrides cache.database_url when set.
const EnvDatabaseURL = "DATABASE_URL"

// Config represents the top-level recon.yaml configuration.
type Config struct {
	DataDir string        `yaml:"data_dir"`
	Window  WindowConfig  `yaml:"window"`
	Cache   CacheConfig   `yaml:"cache"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	Output  OutputConfig  `yaml:"output"`
}

// WindowConfig is the reconciliation window used when a run names no period.
type WindowConfig struct {
	Start string `yaml:"start"` // YYYY-MM-DD, inclusive
	End   string `yaml:"end"`   // YYYY-MM-DD, exclusive
}

// CacheConfig selects where classification maps are kept.
type CacheConfig struct {
	Backend     string `yaml:"backend"` // file, memory or postgres
	DatabaseURL string `yaml:"database_url,omitempty"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// OutputConfig controls report files.
type OutputConfig struct {
	Format string `yaml:"format"` // xlsx or csv
}

// Load reads a recon.yaml file from disk. Fields the file omits keep
// their defaults, and DATABASE_URL overrides the configured database.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, falling back to Default when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		cfg.applyEnv()
		return cfg, cfg.Validate()
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new workspace.
func Default() *Config {
	return &Config{
		DataDir: "data",
		Window: WindowConfig{
			Start: "2025-01-01",
			End:   "2025-12-01",
		},
		Cache: CacheConfig{
			Backend: cache.BackendFile,
		},
		Log: LogConfig{
			Level: "info",
		},
		Output: OutputConfig{
			Format: string(tabular.FormatXLSX),
		},
	}
}

func (c *Config) applyEnv() {
	if url := os.Getenv(EnvDatabaseURL); url != "" {
		c.Cache.DatabaseURL = url
	}
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir is required")
	}
	if _, err := c.DefaultWindow(); err != nil {
		return fmt.Errorf("window: %w", err)
	}
	switch c.Cache.Backend {
	case cache.BackendFile, cache.BackendMemory:
	case cache.BackendPostgres:
		if c.Cache.DatabaseURL == "" {
			return fmt.Errorf("cache.backend postgres needs cache.database_url or %s", EnvDatabaseURL)
		}
	default:
		return fmt.Errorf("unknown cache.backend %q (want file, memory or postgres)", c.Cache.Backend)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch tabular.Format(c.Output.Format) {
	case tabular.FormatCSV, tabular.FormatXLSX:
	default:
		return fmt.Errorf("unknown output.format %q (want xlsx or csv)", c.Output.Format)
	}
	return nil
}

// DefaultWindow returns the configured window.
func (c *Config) DefaultWindow() (model.Window, error) {
	return period.Range(c.Window.Start, c.Window.End)
}
