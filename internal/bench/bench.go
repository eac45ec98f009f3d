// Package bench times the reference engine against the tiled kernel on
// seeded random inputs and reports speedup, throughput and the validator's
// verdict.
package bench

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/gravkern/internal/compute"
	"github.com/san-kum/gravkern/internal/force"
	"github.com/san-kum/gravkern/internal/launch"
	"github.com/san-kum/gravkern/internal/particles"
	"github.com/san-kum/gravkern/internal/validate"
)

type Options struct {
	Particles int
	TileSize  int
	Columns   int
	Strategy  launch.Strategy
	Precision string
	Seed      int64
	Softening float64
	Repeats   int
	Tolerance float64
	// SkipReference times the kernel alone; the result carries no report.
	SkipReference bool
}

// Stats summarises wall-clock samples of one path.
type Stats struct {
	Samples int           `json:"samples"`
	Mean    time.Duration `json:"mean"`
	StdDev  time.Duration `json:"stddev"`
	Min     time.Duration `json:"min"`
}

func summarize(samples []float64) Stats {
	if len(samples) == 0 {
		return Stats{}
	}
	mean, std := stat.MeanStdDev(samples, nil)
	if len(samples) == 1 {
		std = 0
	}
	return Stats{
		Samples: len(samples),
		Mean:    time.Duration(mean),
		StdDev:  time.Duration(std),
		Min:     time.Duration(floats.Min(samples)),
	}
}

type Result struct {
	Particles    int             `json:"particles"`
	TileSize     int             `json:"tile_size"`
	Columns      int             `json:"columns"`
	Strategy     string          `json:"strategy"`
	Precision    string          `json:"precision"`
	Seed         int64           `json:"seed"`
	Softening    float64         `json:"softening"`
	Reference    Stats           `json:"reference"`
	Kernel       Stats           `json:"kernel"`
	Speedup      float64         `json:"speedup"`
	Interactions float64         `json:"interactions"`
	Throughput   float64         `json:"throughput"`
	Report       validate.Report `json:"report"`
	Validated    bool            `json:"validated"`

	// Flattened {ax, ay, az} rows of the last pass of each path.
	ReferenceAccel []float64 `json:"-"`
	KernelAccel    []float64 `json:"-"`
}

// Point is one tile size of a sweep. Err holds the launch rejection when
// the tile size does not fit the particle count.
type Point struct {
	TileSize int
	Result   *Result
	Err      error
}

// Run generates inputs, times both paths and validates the kernel output.
func Run(ctx context.Context, opts Options) (*Result, error) {
	switch opts.Precision {
	case "", "single":
		return run[float32](ctx, opts)
	case "double":
		return run[float64](ctx, opts)
	}
	return nil, fmt.Errorf("unknown precision: %s", opts.Precision)
}

// Sweep runs the kernel once per tile size against a single reference
// pass. progress, when non-nil, receives each point as it completes.
func Sweep(ctx context.Context, opts Options, tiles []int, progress func(Point)) ([]Point, error) {
	switch opts.Precision {
	case "", "single":
		return sweep[float32](ctx, opts, tiles, progress)
	case "double":
		return sweep[float64](ctx, opts, tiles, progress)
	}
	return nil, fmt.Errorf("unknown precision: %s", opts.Precision)
}

func run[T particles.Float](ctx context.Context, opts Options) (*Result, error) {
	cfg, err := launch.New(opts.Particles, opts.TileSize, opts.Columns)
	if err != nil {
		return nil, err
	}
	r, err := newRunner[T](ctx, opts)
	if err != nil {
		return nil, err
	}
	return r.kernel(ctx, cfg)
}

func sweep[T particles.Float](ctx context.Context, opts Options, tiles []int, progress func(Point)) ([]Point, error) {
	r, err := newRunner[T](ctx, opts)
	if err != nil {
		return nil, err
	}

	points := make([]Point, 0, len(tiles))
	for _, p := range tiles {
		pt := Point{TileSize: p}
		cfg, err := launch.New(opts.Particles, p, opts.Columns)
		if err != nil {
			pt.Err = err
		} else if pt.Result, err = r.kernel(ctx, cfg); err != nil {
			if ctx.Err() != nil {
				return points, err
			}
			pt.Err = err
		}
		points = append(points, pt)
		if progress != nil {
			progress(pt)
		}
	}
	return points, nil
}

// runner owns one seeded population and its reference result.
type runner[T particles.Float] struct {
	opts     Options
	src      *particles.Array[T]
	tgt      *particles.Array[T]
	ref      *particles.Array[T]
	refStats Stats
}

func newRunner[T particles.Float](ctx context.Context, opts Options) (*runner[T], error) {
	if opts.Repeats < 1 {
		opts.Repeats = 1
	}
	if opts.Softening <= 0 {
		opts.Softening = force.DefaultSoftening
	}
	src, tgt := particles.Pair[T](opts.Particles, opts.Seed)
	r := &runner[T]{opts: opts, src: src, tgt: tgt}
	if opts.SkipReference {
		return r, nil
	}

	r.ref = tgt.Clone()
	eps2 := T(opts.Softening)
	samples := make([]float64, 0, opts.Repeats)
	for i := 0; i < opts.Repeats; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.ref.ResetAcceleration()
		start := time.Now()
		force.Accumulate(r.src, r.ref, eps2)
		samples = append(samples, float64(time.Since(start)))
	}
	r.refStats = summarize(samples)
	return r, nil
}

func (r *runner[T]) kernel(ctx context.Context, cfg launch.Config) (*Result, error) {
	opts := r.opts
	k := compute.NewKernel(opts.Strategy, cfg, T(opts.Softening))
	dev := compute.NewDevice(r.src, r.tgt)
	out := r.tgt.Clone()

	samples := make([]float64, 0, opts.Repeats)
	for i := 0; i < opts.Repeats; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dev.ResetAcceleration()
		start := time.Now()
		if err := k.Launch(dev); err != nil {
			return nil, err
		}
		samples = append(samples, float64(time.Since(start)))
	}
	if err := dev.Download(out); err != nil {
		return nil, err
	}

	res := &Result{
		Particles:    opts.Particles,
		TileSize:     cfg.TileSize(),
		Columns:      cfg.Columns(),
		Strategy:     opts.Strategy.String(),
		Precision:    particles.Precision[T](),
		Seed:         opts.Seed,
		Softening:    opts.Softening,
		Reference:    r.refStats,
		Kernel:       summarize(samples),
		Interactions: force.Interactions(r.src.Len(), r.tgt.Len()),
		KernelAccel:  out.Accelerations(),
	}
	if res.Kernel.Mean > 0 {
		res.Throughput = res.Interactions / res.Kernel.Mean.Seconds()
	}

	if r.ref != nil {
		res.Validated = true
		res.Report = validate.Compare(r.ref, out, validate.Options{Factor: opts.Tolerance})
		res.ReferenceAccel = r.ref.Accelerations()
		if res.Kernel.Mean > 0 {
			res.Speedup = float64(res.Reference.Mean) / float64(res.Kernel.Mean)
		}
	}
	return res, nil
}
