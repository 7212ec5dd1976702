package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[partition]
seed = 7
balance_factor = 1.1
max_passes = 5

[cache]
dir = "/tmp/cleave-cache"

[render]
layout = "sfdp"
show_weights = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := loadConfigFile(path)
	if err != nil {
		t.Fatalf("loadConfigFile() error = %v", err)
	}

	if cfg.Partition.Seed != 7 {
		t.Errorf("Partition.Seed = %d, want 7", cfg.Partition.Seed)
	}
	if cfg.Partition.BalanceFactor != 1.1 {
		t.Errorf("Partition.BalanceFactor = %g, want 1.1", cfg.Partition.BalanceFactor)
	}
	if cfg.Partition.MaxPasses != 5 {
		t.Errorf("Partition.MaxPasses = %d, want 5", cfg.Partition.MaxPasses)
	}
	if cfg.Cache.Dir != "/tmp/cleave-cache" {
		t.Errorf("Cache.Dir = %q, want /tmp/cleave-cache", cfg.Cache.Dir)
	}
	if cfg.Render.Layout != "sfdp" {
		t.Errorf("Render.Layout = %q, want sfdp", cfg.Render.Layout)
	}
	if !cfg.Render.ShowWeights {
		t.Error("Render.ShowWeights = false, want true")
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	cfg, err := loadConfigFile(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("loadConfigFile() error = %v, want nil for missing file", err)
	}
	if cfg != (Config{}) {
		t.Errorf("loadConfigFile() = %+v, want zero config", cfg)
	}
}

func TestLoadConfigFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := loadConfigFile(path); err == nil {
		t.Fatal("loadConfigFile() error = nil, want parse error")
	}
}
