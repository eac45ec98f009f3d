// Package validate compares a candidate set of target accelerations against
// the reference engine's and reports how far apart they are. Disagreement is
// a diagnostic outcome, never an error.
package validate

import (
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/gravkern/internal/particles"
)

// DefaultFactor is the default tolerance in machine epsilons. Reordered
// summation over a few thousand terms stays well inside it.
const DefaultFactor = 1024

type Options struct {
	// Factor scales machine epsilon into the per-element tolerance.
	Factor float64
}

func DefaultOptions() Options {
	return Options{Factor: DefaultFactor}
}

// Report is the outcome of one comparison.
type Report struct {
	Pass          bool    `json:"pass"`
	Mismatches    int     `json:"mismatches"`
	Total         int     `json:"total"`
	ErrorNorm     float64 `json:"error_norm"`
	MaxAbsError   float64 `json:"max_abs_error"`
	RelativeNorm  float64 `json:"relative_norm"`
	Epsilon       float64 `json:"epsilon"`
	Factor        float64 `json:"factor"`
	ShapeMismatch bool    `json:"shape_mismatch,omitempty"`
}

func (r Report) String() string {
	if r.ShapeMismatch {
		return "FAIL shape mismatch"
	}
	status := "PASS"
	if !r.Pass {
		status = "FAIL"
	}
	return fmt.Sprintf("%s %d/%d mismatches, rms error %.3e, max error %.3e, relative %.3e",
		status, r.Mismatches, r.Total, r.ErrorNorm, r.MaxAbsError, r.RelativeNorm)
}

// Compare checks the ax, ay, az rows of got against ref. Element k
// mismatches when
//
//	|got_k - ref_k| > factor * eps(T) * max(|ref_k|, rms(ref))
//
// The rms floor keeps components that cancel to near zero from demanding
// more precision than the summation carries.
func Compare[T particles.Float](ref, got *particles.Array[T], opts Options) Report {
	if opts.Factor <= 0 {
		opts.Factor = DefaultFactor
	}
	rep := Report{
		Epsilon: particles.Epsilon[T](),
		Factor:  opts.Factor,
	}
	if ref == nil || !ref.SameShape(got) {
		rep.ShapeMismatch = true
		return rep
	}

	want := ref.Accelerations()
	have := got.Accelerations()
	rep.Total = len(want)
	if rep.Total == 0 {
		rep.Pass = true
		return rep
	}

	diff := make([]float64, rep.Total)
	floats.SubTo(diff, have, want)

	sq := make([]float64, rep.Total)
	vecmath.MulBlock(sq, diff, diff)
	rep.ErrorNorm = math.Sqrt(floats.Sum(sq) / float64(rep.Total))

	refNorm := floats.Norm(want, 2)
	refRMS := refNorm / math.Sqrt(float64(rep.Total))
	if refNorm > 0 {
		rep.RelativeNorm = math.Sqrt(floats.Sum(sq)) / refNorm
	}

	scale := opts.Factor * rep.Epsilon
	for k, d := range diff {
		ad := math.Abs(d)
		if ad > rep.MaxAbsError || math.IsNaN(ad) {
			rep.MaxAbsError = ad
		}
		tol := scale * math.Max(math.Abs(want[k]), refRMS)
		if math.IsNaN(ad) || ad > tol {
			rep.Mismatches++
		}
	}

	rep.Pass = rep.Mismatches == 0
	return rep
}
