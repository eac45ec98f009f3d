package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravkern/internal/force"
	"github.com/san-kum/gravkern/internal/launch"
	"github.com/san-kum/gravkern/internal/validate"
)

const (
	DefaultMode      = "check"
	DefaultParticles = 1024
	DefaultTileSize  = 128
	DefaultColumns   = 4
	DefaultStrategy  = "column"
	DefaultPrecision = "single"
	DefaultSeed      = 42
	DefaultRepeats   = 5
)

type Config struct {
	Mode      string  `yaml:"mode"`
	Particles int     `yaml:"particles"`
	TileSize  int     `yaml:"tile_size"`
	Columns   int     `yaml:"columns"`
	Strategy  string  `yaml:"strategy"`
	Precision string  `yaml:"precision"`
	Seed      int64   `yaml:"seed"`
	Softening float64 `yaml:"softening"`
	Repeats   int     `yaml:"repeats"`
	Tolerance float64 `yaml:"tolerance"`
	Sweep     []int   `yaml:"sweep,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Mode:      DefaultMode,
		Particles: DefaultParticles,
		TileSize:  DefaultTileSize,
		Columns:   DefaultColumns,
		Strategy:  DefaultStrategy,
		Precision: DefaultPrecision,
		Seed:      DefaultSeed,
		Softening: force.DefaultSoftening,
		Repeats:   DefaultRepeats,
		Tolerance: validate.DefaultFactor,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Launch validates the particle count, tile size and column count.
func (c *Config) Launch() (launch.Config, error) {
	return launch.New(c.Particles, c.TileSize, c.Columns)
}

// Validate checks the fields that do not depend on the launch triple.
func (c *Config) Validate() error {
	switch c.Mode {
	case "check", "profile", "bench":
	default:
		return fmt.Errorf("unknown mode: %s (available: check, profile, bench)", c.Mode)
	}
	switch c.Precision {
	case "single", "double":
	default:
		return fmt.Errorf("unknown precision: %s (available: single, double)", c.Precision)
	}
	if c.Strategy != "reference" {
		if _, err := launch.ParseStrategy(c.Strategy); err != nil {
			return err
		}
	}
	if c.Softening <= 0 {
		return fmt.Errorf("softening must be positive, got %g", c.Softening)
	}
	if c.Repeats < 1 {
		return fmt.Errorf("repeats must be at least 1, got %d", c.Repeats)
	}
	return nil
}
