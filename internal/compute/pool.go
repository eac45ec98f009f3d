package compute

import (
	"sync"

	"github.com/san-kum/gravkern/internal/particles"
)

// stageStride is the number of values one staged source occupies:
// x, y, z, mass.
const stageStride = 4

// stagingPool recycles block-local staging buffers between blocks of the
// same launch.
type stagingPool[T particles.Float] struct {
	pool sync.Pool
	size int
}

func newStagingPool[T particles.Float](tile int) *stagingPool[T] {
	size := tile * stageStride
	return &stagingPool[T]{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				return make([]T, size)
			},
		},
	}
}

func (p *stagingPool[T]) Get() []T {
	return p.pool.Get().([]T)
}

func (p *stagingPool[T]) Put(buf []T) {
	if len(buf) == p.size {
		clear(buf)
		p.pool.Put(buf)
	}
}
