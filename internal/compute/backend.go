package compute

import (
	"github.com/san-kum/gravkern/internal/force"
	"github.com/san-kum/gravkern/internal/launch"
	"github.com/san-kum/gravkern/internal/particles"
)

// Backend accumulates source pull onto target accelerations. Target
// accelerations must be zeroed by the caller beforehand.
type Backend[T particles.Float] interface {
	Name() string
	Accumulate(src, tgt *particles.Array[T]) error
}

// ReferenceBackend is the sequential engine used as correctness oracle.
type ReferenceBackend[T particles.Float] struct {
	Softening T
}

func NewReferenceBackend[T particles.Float](eps2 T) *ReferenceBackend[T] {
	return &ReferenceBackend[T]{Softening: eps2}
}

func (r *ReferenceBackend[T]) Name() string { return "reference" }

func (r *ReferenceBackend[T]) Accumulate(src, tgt *particles.Array[T]) error {
	force.Accumulate(src, tgt, r.Softening)
	return nil
}

// SelectBackend returns the reference engine for "reference" and a kernel
// for any strategy name accepted by launch.ParseStrategy.
func SelectBackend[T particles.Float](name string, cfg launch.Config, eps2 T) (Backend[T], error) {
	if name == "reference" {
		return NewReferenceBackend(eps2), nil
	}
	s, err := launch.ParseStrategy(name)
	if err != nil {
		return nil, err
	}
	return NewKernel(s, cfg, eps2), nil
}
