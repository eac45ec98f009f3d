// Package force holds the softened pairwise gravity law and the sequential
// reference engine every parallel strategy is checked against.
package force

import (
	"math"

	"github.com/san-kum/gravkern/internal/particles"
)

// DefaultSoftening is the eps2 term added to every squared distance.
const DefaultSoftening = 1e-6

// Pair returns the acceleration a source of the given mass at srcPos induces
// at tgtPos:
//
//	r = srcPos - tgtPos
//	a = r * mass / sqrt((r·r + eps2)^3)
//
// Coincident positions give zero, not NaN, as long as eps2 > 0.
func Pair[T particles.Float](srcPos, tgtPos [3]T, mass, eps2 T) [3]T {
	rx := srcPos[0] - tgtPos[0]
	ry := srcPos[1] - tgtPos[1]
	rz := srcPos[2] - tgtPos[2]

	r2 := rx*rx + ry*ry + rz*rz + eps2
	r6 := r2 * r2 * r2
	mag := mass / T(math.Sqrt(float64(r6)))

	return [3]T{rx * mag, ry * mag, rz * mag}
}

// Accumulate adds the acceleration of every source onto every target in
// fixed order: targets ascending, sources ascending per target. Results are
// reproducible bit for bit. Target accelerations must be zeroed beforehand.
func Accumulate[T particles.Float](src, tgt *particles.Array[T], eps2 T) {
	ns := src.Len()
	for i := 0; i < tgt.Len(); i++ {
		pi := tgt.Position(i)
		for j := 0; j < ns; j++ {
			tgt.AddAcceleration(i, Pair(src.Position(j), pi, src.Mass(j), eps2))
		}
	}
}

// Interactions is the number of pairwise evaluations one pass performs.
func Interactions(ns, nt int) float64 {
	return float64(ns) * float64(nt)
}
