package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "codegraph.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
project_root = "."

[analyzer]
batch_size = 4
parse_rate = 20.0
parse_burst = 2
include_dependents = false

[exclude]
dirs = [".git"]
files = ["*_generated.py"]

[db]
enabled = true
path = "graph.db"

[watch]
enabled = true
debounce = "1s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Analyzer.BatchSize != 4 {
		t.Errorf("batch_size = %d, want 4", cfg.Analyzer.BatchSize)
	}
	if cfg.Analyzer.ParseRate != 20.0 {
		t.Errorf("parse_rate = %v, want 20", cfg.Analyzer.ParseRate)
	}
	if cfg.IncludeDependents() {
		t.Error("include_dependents = true, want false")
	}
	if !cfg.DB.Enabled || cfg.DB.Path != "graph.db" {
		t.Errorf("db config = %+v", cfg.DB)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("debounce = %v, want 1s", cfg.Watch.Debounce)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Analyzer.BatchSize != 10 {
		t.Errorf("default batch_size = %d, want 10", cfg.Analyzer.BatchSize)
	}
	if cfg.IgnoreFile != "codegraph.toml" {
		t.Errorf("default ignore_file = %q", cfg.IgnoreFile)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("default debounce = %v, want 500ms", cfg.Watch.Debounce)
	}
	if !cfg.IncludeDependents() {
		t.Error("include_dependents should default to true")
	}
}

func TestLoadAppliesDefaultsForMissingSections(t *testing.T) {
	path := writeConfig(t, `project_root = "."`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Analyzer.BatchSize != 10 {
		t.Errorf("batch_size = %d, want default 10", cfg.Analyzer.BatchSize)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("debounce = %v, want default 500ms", cfg.Watch.Debounce)
	}
}

func TestValidate(t *testing.T) {
	t.Run("empty project root", func(t *testing.T) {
		cfg := Default()
		cfg.ProjectRoot = ""
		if err := cfg.Validate(); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("db enabled without path", func(t *testing.T) {
		cfg := Default()
		cfg.DB.Enabled = true
		cfg.DB.Path = ""
		if err := cfg.Validate(); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("metrics enabled without address", func(t *testing.T) {
		cfg := Default()
		cfg.Metrics.Enabled = true
		cfg.Metrics.Address = ""
		if err := cfg.Validate(); err == nil {
			t.Error("expected an error")
		}
	})
}
