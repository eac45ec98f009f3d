package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != "check" {
		t.Errorf("expected mode check, got %s", cfg.Mode)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if _, err := cfg.Launch(); err != nil {
		t.Errorf("default launch invalid: %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gravkern.yaml")
	cfg := DefaultConfig()
	cfg.Particles = 512
	cfg.Strategy = "tiled"
	cfg.Sweep = []int{16, 32}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Particles != 512 || got.Strategy != "tiled" || len(got.Sweep) != 2 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	partial := &Config{Particles: 64, TileSize: 8}
	if err := Save(path, partial); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	// zero values written by Save override defaults, so only check the set fields
	if got.Particles != 64 || got.TileSize != 8 {
		t.Errorf("unexpected %+v", got)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"mode", func(c *Config) { c.Mode = "simulate" }},
		{"precision", func(c *Config) { c.Precision = "half" }},
		{"strategy", func(c *Config) { c.Strategy = "warp" }},
		{"softening", func(c *Config) { c.Softening = 0 }},
		{"repeats", func(c *Config) { c.Repeats = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Strategy = "reference"
	if err := cfg.Validate(); err != nil {
		t.Errorf("reference strategy rejected: %v", err)
	}
}

func TestPresetsAreValid(t *testing.T) {
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
		if _, err := cfg.Launch(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("small")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Particles != 256 {
		t.Errorf("expected 256 particles, got %d", cfg.Particles)
	}

	cfg.Particles = 1
	if Presets["small"].Particles != 256 {
		t.Error("GetPreset returned shared state")
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}
