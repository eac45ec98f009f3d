package particles

import (
	"golang.org/x/exp/rand"
)

// Generate returns n particles with positions uniform in [-1, 1)^3, masses
// uniform in [0, 1) and zeroed accelerations. The same seed always yields the
// same array.
func Generate[T Float](n int, seed int64) *Array[T] {
	rng := rand.New(rand.NewSource(uint64(seed)))
	a := New[T](n)
	for j := 0; j < n; j++ {
		a.SetPosition(j, [3]T{
			T(2*rng.Float64() - 1),
			T(2*rng.Float64() - 1),
			T(2*rng.Float64() - 1),
		})
		a.Set(Mass, j, T(rng.Float64()))
	}
	return a
}

// Pair returns a source array and an independent target array holding the
// same particles, as used when a single population acts on itself.
func Pair[T Float](n int, seed int64) (src, tgt *Array[T]) {
	src = Generate[T](n, seed)
	return src, src.Clone()
}
