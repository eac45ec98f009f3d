package compute

import (
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/san-kum/gravkern/internal/particles"
)

// atomicAdd performs *addr += delta as a compare-and-swap loop on the bit
// pattern of the float. It is the only write path for accelerations that
// several workers share.
func atomicAdd[T particles.Float](addr *T, delta T) {
	if unsafe.Sizeof(delta) == 4 {
		p := (*uint32)(unsafe.Pointer(addr))
		for {
			old := atomic.LoadUint32(p)
			sum := math.Float32bits(math.Float32frombits(old) + float32(delta))
			if atomic.CompareAndSwapUint32(p, old, sum) {
				return
			}
		}
	}

	p := (*uint64)(unsafe.Pointer(addr))
	for {
		old := atomic.LoadUint64(p)
		sum := math.Float64bits(math.Float64frombits(old) + float64(delta))
		if atomic.CompareAndSwapUint64(p, old, sum) {
			return
		}
	}
}
