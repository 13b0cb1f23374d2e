package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ProjectRoot string   `toml:"project_root"`
	IgnoreFile  string   `toml:"ignore_file"`
	Analyzer    Analyzer `toml:"analyzer"`
	Exclude     Exclude  `toml:"exclude"`
	DB          Database `toml:"db"`
	Metrics     Metrics  `toml:"metrics"`
	Tracing     Tracing  `toml:"tracing"`
	Watch       Watch    `toml:"watch"`
}

type Analyzer struct {
	// BatchSize bounds the fan-out of the declaration phase.
	BatchSize int `toml:"batch_size"`
	// ParseRate caps declaration-phase parses per second; 0 disables pacing.
	ParseRate  float64 `toml:"parse_rate"`
	ParseBurst int     `toml:"parse_burst"`
	// IncludeDependents widens incremental runs to files that import the
	// changed ones.
	IncludeDependents *bool `toml:"include_dependents"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Database struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Metrics struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
}

type Tracing struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
}

type Watch struct {
	Enabled  bool          `toml:"enabled"`
	Debounce time.Duration `toml:"debounce"`
}

func Default() *Config {
	return &Config{
		ProjectRoot: ".",
		IgnoreFile:  "codegraph.toml",
		Analyzer: Analyzer{
			BatchSize:  10,
			ParseBurst: 1,
		},
		Exclude: Exclude{
			Dirs:  []string{".git", "__pycache__", ".venv", "venv", "node_modules"},
			Files: []string{},
		},
		DB: Database{
			Path: "codegraph.db",
		},
		Metrics: Metrics{
			Address: "127.0.0.1:9180",
		},
		Watch: Watch{
			Debounce: 500 * time.Millisecond,
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("load config %q: %w", path, err)
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.IgnoreFile == "" {
		cfg.IgnoreFile = "codegraph.toml"
	}
	if cfg.Analyzer.BatchSize <= 0 {
		cfg.Analyzer.BatchSize = 10
	}
	if cfg.Analyzer.ParseBurst <= 0 {
		cfg.Analyzer.ParseBurst = 1
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
}

func (c *Config) Validate() error {
	if c.ProjectRoot == "" {
		return fmt.Errorf("project_root must not be empty")
	}
	if info, err := os.Stat(c.ProjectRoot); err == nil && !info.IsDir() {
		return fmt.Errorf("project_root %q is not a directory", c.ProjectRoot)
	}
	if c.DB.Enabled && c.DB.Path == "" {
		return fmt.Errorf("db.path must be set when db.enabled is true")
	}
	if c.Metrics.Enabled && c.Metrics.Address == "" {
		return fmt.Errorf("metrics.address must be set when metrics.enabled is true")
	}
	return nil
}

// IncludeDependents defaults to true when unset.
func (c *Config) IncludeDependents() bool {
	if c.Analyzer.IncludeDependents == nil {
		return true
	}
	return *c.Analyzer.IncludeDependents
}

// AbsoluteRoot resolves the project root against the working directory.
func (c *Config) AbsoluteRoot() (string, error) {
	if filepath.IsAbs(c.ProjectRoot) {
		return filepath.Clean(c.ProjectRoot), nil
	}
	abs, err := filepath.Abs(c.ProjectRoot)
	if err != nil {
		return "", fmt.Errorf("resolve project root: %w", err)
	}
	return abs, nil
}
