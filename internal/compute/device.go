package compute

import (
	"errors"
	"fmt"

	"github.com/san-kum/gravkern/internal/particles"
)

var (
	// ErrShape indicates arrays that do not fit the launch configuration or
	// each other.
	ErrShape = errors.New("compute: particle count mismatch")

	// ErrNotLaunched indicates a download from a device whose kernel has
	// not completed.
	ErrNotLaunched = errors.New("compute: no completed launch to download")
)

// Device is kernel-visible storage: private copies of the source and
// target arrays that kernels read and accumulate into. Host arrays are never
// touched until Download.
type Device[T particles.Float] struct {
	src      *particles.Array[T]
	tgt      *particles.Array[T]
	launched bool
}

// NewDevice uploads copies of src and tgt. All seven target fields are
// copied, so accelerations already present on the host are accumulated onto.
func NewDevice[T particles.Float](src, tgt *particles.Array[T]) *Device[T] {
	return &Device[T]{
		src: src.Clone(),
		tgt: tgt.Clone(),
	}
}

func (d *Device[T]) Sources() int { return d.src.Len() }
func (d *Device[T]) Targets() int { return d.tgt.Len() }

// ResetAcceleration zeroes the device copy of the target accelerations so
// the same upload can be launched again.
func (d *Device[T]) ResetAcceleration() {
	d.tgt.ResetAcceleration()
	d.launched = false
}

// Download copies the accumulated acceleration rows into host, leaving its
// position and mass rows untouched.
func (d *Device[T]) Download(host *particles.Array[T]) error {
	if !d.launched {
		return ErrNotLaunched
	}
	if !d.tgt.SameShape(host) {
		return fmt.Errorf("%w: device holds %d targets, host %d", ErrShape, d.tgt.Len(), host.Len())
	}
	for i := 0; i < host.Len(); i++ {
		host.SetAcceleration(i, d.tgt.Acceleration(i))
	}
	return nil
}
