package compute

import (
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/gravkern/internal/force"
	"github.com/san-kum/gravkern/internal/launch"
	"github.com/san-kum/gravkern/internal/particles"
)

// Kernel is the tiled parallel force kernel. One value describes one
// launch policy; it can be launched any number of times.
type Kernel[T particles.Float] struct {
	Strategy  launch.Strategy
	Config    launch.Config
	Softening T
	// MaxBlocks caps concurrently running blocks. Zero means GOMAXPROCS.
	MaxBlocks int
}

func NewKernel[T particles.Float](s launch.Strategy, cfg launch.Config, eps2 T) *Kernel[T] {
	return &Kernel[T]{Strategy: s, Config: cfg, Softening: eps2}
}

func (k *Kernel[T]) Name() string {
	return fmt.Sprintf("kernel/%s (%s)", k.Strategy, k.Config)
}

// Accumulate uploads src and tgt, launches the kernel and downloads the
// result into tgt.
func (k *Kernel[T]) Accumulate(src, tgt *particles.Array[T]) error {
	dev := NewDevice(src, tgt)
	if err := k.Launch(dev); err != nil {
		return err
	}
	return dev.Download(tgt)
}

// Launch runs the whole grid against dev and returns once every block has
// finished. There is no cancellation: a started launch always completes.
func (k *Kernel[T]) Launch(dev *Device[T]) error {
	cfg := k.Config
	if !cfg.Valid() {
		return &launch.ConfigurationError{Rule: launch.RulePositive}
	}
	if dev.Targets() != cfg.N() {
		return fmt.Errorf("%w: launch configured for %d targets, device holds %d", ErrShape, cfg.N(), dev.Targets())
	}
	if err := cfg.Check(dev.Sources()); err != nil {
		return err
	}

	var work func(blk *block[T], t int)
	switch k.Strategy {
	case launch.Global:
		work = k.global
	case launch.Tiled:
		work = k.tiled
	case launch.ColumnSplit:
		work = k.columnSplit
	default:
		return fmt.Errorf("compute: unsupported strategy %s", k.Strategy)
	}

	l := &grid[T]{
		cfg:   cfg,
		size:  cfg.BlockSize(k.Strategy),
		tiles: cfg.Tiles(dev.Sources()),
		eps2:  k.Softening,
		src:   dev.src,
		tgt:   dev.tgt,
		stage: newStagingPool[T](cfg.TileSize()),
		work:  work,
	}

	limit := k.MaxBlocks
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for b := 0; b < cfg.GridSize(); b++ {
		g.Go(func() error {
			l.run(b)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	dev.launched = true
	return nil
}

// grid is the state shared by every block of one launch.
type grid[T particles.Float] struct {
	cfg   launch.Config
	size  int
	tiles int
	eps2  T
	src   *particles.Array[T]
	tgt   *particles.Array[T]
	stage *stagingPool[T]
	work  func(blk *block[T], t int)
}

// block is the execution context of one block: its index, a staging
// buffer of one tile of sources and the barrier its workers share.
type block[T particles.Float] struct {
	g      *grid[T]
	id     int
	shared []T
	sync   *barrier
}

func (l *grid[T]) run(id int) {
	blk := &block[T]{
		g:      l,
		id:     id,
		shared: l.stage.Get(),
		sync:   newBarrier(l.size),
	}
	defer l.stage.Put(blk.shared)

	var wg sync.WaitGroup
	wg.Add(l.size)
	for t := 0; t < l.size; t++ {
		go func(worker int) {
			defer wg.Done()
			l.work(blk, worker)
		}(t)
	}
	wg.Wait()
}

// load copies source j into staging slot s.
func (blk *block[T]) load(s, j int) {
	pos := blk.g.src.Position(j)
	rec := blk.shared[s*stageStride : (s+1)*stageStride]
	rec[0], rec[1], rec[2], rec[3] = pos[0], pos[1], pos[2], blk.g.src.Mass(j)
}

// sumStaged adds the pull of staging slots [lo, hi) on pi to acc.
func (blk *block[T]) sumStaged(acc *[3]T, pi [3]T, lo, hi int) {
	eps2 := blk.g.eps2
	for s := lo; s < hi; s++ {
		rec := blk.shared[s*stageStride : (s+1)*stageStride]
		a := force.Pair([3]T{rec[0], rec[1], rec[2]}, pi, rec[3], eps2)
		acc[0] += a[0]
		acc[1] += a[1]
		acc[2] += a[2]
	}
}

// global: one worker per target, every source read from device storage.
func (k *Kernel[T]) global(blk *block[T], t int) {
	l := blk.g
	i := blk.id*l.cfg.TileSize() + t
	pi := l.tgt.Position(i)
	for j := 0; j < l.src.Len(); j++ {
		l.tgt.AddAcceleration(i, force.Pair(l.src.Position(j), pi, l.src.Mass(j), l.eps2))
	}
}

// tiled: one worker per target. Each worker stages one source per tile and
// then consumes the whole tile from the staging buffer.
func (k *Kernel[T]) tiled(blk *block[T], t int) {
	l := blk.g
	p := l.cfg.TileSize()
	i := blk.id*p + t
	pi := l.tgt.Position(i)

	var acc [3]T
	for tile := 0; tile < l.tiles; tile++ {
		blk.load(t, tile*p+t)
		blk.sync.Wait()
		blk.sumStaged(&acc, pi, 0, p)
		blk.sync.Wait()
	}

	l.tgt.AddAcceleration(i, acc)
}

// columnSplit: q workers per target. Worker t is (row, col) with
// row = t mod p naming the target and col = t / p naming a p/q wide slice of
// each tile. Column 0 stages the tile; partial sums merge atomically.
func (k *Kernel[T]) columnSplit(blk *block[T], t int) {
	l := blk.g
	p := l.cfg.TileSize()
	width := l.cfg.BodiesPerColumn()
	row, col := t%p, t/p
	i := blk.id*p + row
	pi := l.tgt.Position(i)

	var acc [3]T
	lo := col * width
	for tile := 0; tile < l.tiles; tile++ {
		if col == 0 {
			blk.load(row, tile*p+row)
		}
		blk.sync.Wait()
		blk.sumStaged(&acc, pi, lo, lo+width)
		blk.sync.Wait()
	}

	raw := l.tgt.Raw()
	base := i * int(particles.NumFields)
	atomicAdd(&raw[base+int(particles.AX)], acc[0])
	atomicAdd(&raw[base+int(particles.AY)], acc[1])
	atomicAdd(&raw[base+int(particles.AZ)], acc[2])
}
