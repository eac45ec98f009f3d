package config

import "sort"

var Presets = map[string]*Config{
	"small": {
		Mode: "check", Particles: 256, TileSize: 32, Columns: 1, Strategy: "tiled",
		Precision: "single", Seed: 42, Softening: 1e-6, Repeats: 3, Tolerance: 1024,
	},
	"medium": {
		Mode: "check", Particles: 2048, TileSize: 128, Columns: 4, Strategy: "column",
		Precision: "single", Seed: 42, Softening: 1e-6, Repeats: 5, Tolerance: 1024,
	},
	"large": {
		Mode: "bench", Particles: 8192, TileSize: 256, Columns: 2, Strategy: "column",
		Precision: "single", Seed: 42, Softening: 1e-6, Repeats: 3, Tolerance: 1024,
	},
	"double": {
		Mode: "check", Particles: 1024, TileSize: 64, Columns: 8, Strategy: "column",
		Precision: "double", Seed: 7, Softening: 1e-6, Repeats: 5, Tolerance: 1024,
	},
	"sweep": {
		Mode: "bench", Particles: 4096, TileSize: 128, Columns: 1, Strategy: "tiled",
		Precision: "single", Seed: 42, Softening: 1e-6, Repeats: 3, Tolerance: 1024,
		Sweep: []int{16, 32, 64, 128, 256, 512},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Sweep = append([]int(nil), p.Sweep...)
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
