package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/gravkern/internal/config"
)

func newTestCommand(t *testing.T) *cobra.Command {
	t.Helper()
	preset, configFile = "", ""
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	addRunFlags(cmd)
	return cmd
}

func TestResolveConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := config.DefaultConfig()
	cfg.Particles = 512
	cfg.TileSize = 64
	if err := config.Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	cmd := newTestCommand(t)
	if err := cmd.ParseFlags([]string{"--config", path, "--p", "32", "--precision", "double"}); err != nil {
		t.Fatal(err)
	}
	got, err := resolveConfig(cmd, "check")
	if err != nil {
		t.Fatal(err)
	}
	if got.Particles != 512 {
		t.Errorf("particles = %d, want 512 from file", got.Particles)
	}
	if got.TileSize != 32 || got.Precision != "double" {
		t.Errorf("flags not applied: p=%d precision=%s", got.TileSize, got.Precision)
	}
	if got.Mode != "check" {
		t.Errorf("mode = %s", got.Mode)
	}
}

func TestResolveConfigPreset(t *testing.T) {
	cmd := newTestCommand(t)
	if err := cmd.ParseFlags([]string{"--preset", "small"}); err != nil {
		t.Fatal(err)
	}
	got, err := resolveConfig(cmd, "bench")
	if err != nil {
		t.Fatal(err)
	}
	if got.Particles != 256 || got.Strategy != "tiled" {
		t.Errorf("preset not applied: %+v", got)
	}

	cmd = newTestCommand(t)
	if err := cmd.ParseFlags([]string{"--preset", "nope"}); err != nil {
		t.Fatal(err)
	}
	if _, err := resolveConfig(cmd, "bench"); err == nil {
		t.Error("expected unknown preset error")
	}
}

func TestBenchOptionsRejectsReference(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Strategy = "reference"
	if _, err := benchOptions(cfg); err == nil {
		t.Error("reference is not a kernel strategy")
	}
	cfg.Strategy = "global"
	opts, err := benchOptions(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Strategy.String() != "global" {
		t.Errorf("strategy = %s", opts.Strategy)
	}
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gravkern.yaml")
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := initConfig(cmd, []string{path}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(out.String(), path) {
		t.Errorf("output = %q", out.String())
	}
	if err := initConfig(cmd, []string{path}); err == nil {
		t.Error("expected refusal to overwrite")
	}

	loaded, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Particles != config.DefaultParticles {
		t.Errorf("particles = %d", loaded.Particles)
	}
}
