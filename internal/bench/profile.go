package bench

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/san-kum/gravkern/internal/compute"
	"github.com/san-kum/gravkern/internal/force"
	"github.com/san-kum/gravkern/internal/launch"
	"github.com/san-kum/gravkern/internal/particles"
)

// Profile times one backend alone. backend is "reference" or any strategy
// name; the launch triple is validated either way.
func Profile(ctx context.Context, opts Options, backend string) (*Result, error) {
	switch opts.Precision {
	case "", "single":
		return profile[float32](ctx, opts, backend)
	case "double":
		return profile[float64](ctx, opts, backend)
	}
	return nil, fmt.Errorf("unknown precision: %s", opts.Precision)
}

func profile[T particles.Float](ctx context.Context, opts Options, backend string) (*Result, error) {
	cfg, err := launch.New(opts.Particles, opts.TileSize, opts.Columns)
	if err != nil {
		return nil, err
	}
	if opts.Repeats < 1 {
		opts.Repeats = 1
	}
	if opts.Softening <= 0 {
		opts.Softening = force.DefaultSoftening
	}
	backend = strings.ToLower(backend)
	b, err := compute.SelectBackend[T](backend, cfg, T(opts.Softening))
	if err != nil {
		return nil, err
	}

	src, tgt := particles.Pair[T](opts.Particles, opts.Seed)
	samples := make([]float64, 0, opts.Repeats)
	for i := 0; i < opts.Repeats; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tgt.ResetAcceleration()
		start := time.Now()
		if err := b.Accumulate(src, tgt); err != nil {
			return nil, err
		}
		samples = append(samples, float64(time.Since(start)))
	}

	res := &Result{
		Particles:    opts.Particles,
		TileSize:     cfg.TileSize(),
		Columns:      cfg.Columns(),
		Strategy:     backend,
		Precision:    particles.Precision[T](),
		Seed:         opts.Seed,
		Softening:    opts.Softening,
		Kernel:       summarize(samples),
		Interactions: force.Interactions(src.Len(), tgt.Len()),
		KernelAccel:  tgt.Accelerations(),
	}
	if res.Kernel.Mean > 0 {
		res.Throughput = res.Interactions / res.Kernel.Mean.Seconds()
	}
	return res, nil
}
