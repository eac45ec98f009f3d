// Package launch validates the (n, p, q) launch triple of the tiled force
// kernel and derives its grid and block dimensions.
//
// A [Config] can only be obtained through [New], so holding one proves the
// tiling preconditions hold:
//
//	p <= n, p*q < MaxWorkersPerGroup, q <= p, n mod p == 0, p mod q == 0
package launch

import (
	"fmt"
	"strings"
)

// MaxWorkersPerGroup is the platform limit on workers in one block.
const MaxWorkersPerGroup = 1024

// Strategy selects the tiling granularity of the kernel.
type Strategy int

const (
	// Global gives one worker per target reading sources from device storage.
	Global Strategy = iota
	// Tiled gives one worker per target and stages sources tile by tile.
	Tiled
	// ColumnSplit gives q workers per target, each over p/q staged sources,
	// merged with atomic adds.
	ColumnSplit
)

var strategyNames = map[Strategy]string{
	Global:      "global",
	Tiled:       "tiled",
	ColumnSplit: "column",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// ParseStrategy accepts the names printed by Strategy.String.
func ParseStrategy(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy: %s (available: global, tiled, column)", name)
}

// Strategies lists every strategy in dispatch order.
func Strategies() []Strategy {
	return []Strategy{Global, Tiled, ColumnSplit}
}

// Config is a validated launch configuration.
type Config struct {
	n int
	p int
	q int
}

// New validates a launch triple: n particles, tile size p, q columns per
// target. Any violation yields a *ConfigurationError.
func New(n, p, q int) (Config, error) {
	reject := func(r Rule) (Config, error) {
		return Config{}, &ConfigurationError{N: n, P: p, Q: q, Rule: r}
	}

	switch {
	case n < 1 || p < 1 || q < 1:
		return reject(RulePositive)
	case p > n:
		return reject(RuleTileFits)
	case p*q >= MaxWorkersPerGroup:
		return reject(RuleWorkerLimit)
	case q > p:
		return reject(RuleColumnsFit)
	case n%p != 0:
		return reject(RuleEvenTiles)
	case p%q != 0:
		return reject(RuleEvenColumns)
	}

	return Config{n: n, p: p, q: q}, nil
}

// MustNew is New for configurations known to be valid at compile time.
func MustNew(n, p, q int) Config {
	c, err := New(n, p, q)
	if err != nil {
		panic(err)
	}
	return c
}

// Check applies the tiling preconditions to a source population whose
// count may differ from the target count n.
func (c Config) Check(sources int) error {
	switch {
	case c.p > sources:
		return &ConfigurationError{N: sources, P: c.p, Q: c.q, Rule: RuleSourceFits}
	case sources%c.p != 0:
		return &ConfigurationError{N: sources, P: c.p, Q: c.q, Rule: RuleEvenSrcTiles}
	}
	return nil
}

// Valid reports whether c came from New rather than being a zero value.
func (c Config) Valid() bool { return c.p > 0 }

func (c Config) N() int        { return c.n }
func (c Config) TileSize() int { return c.p }
func (c Config) Columns() int  { return c.q }

// GridSize is the number of blocks, ceil(n/p).
func (c Config) GridSize() int {
	return (c.n + c.p - 1) / c.p
}

// BlockSize is the number of workers per block under s.
func (c Config) BlockSize(s Strategy) int {
	if s == ColumnSplit {
		return c.p * c.q
	}
	return c.p
}

// BodiesPerColumn is the width of one column's slice of a tile.
func (c Config) BodiesPerColumn() int {
	return c.p / c.q
}

// Tiles is the number of tiles a source population of the given size
// splits into.
func (c Config) Tiles(sources int) int {
	return sources / c.p
}

func (c Config) String() string {
	return fmt.Sprintf("n=%d p=%d q=%d", c.n, c.p, c.q)
}
