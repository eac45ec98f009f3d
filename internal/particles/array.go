package particles

import (
	"errors"
	"fmt"
	"math"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Float is the numeric type a particle array is stored in.
type Float interface {
	constraints.Float
}

// Field names one row of the 7×N particle matrix.
type Field int

const (
	X Field = iota
	Y
	Z
	Mass
	AX
	AY
	AZ
	NumFields
)

var fieldNames = [NumFields]string{"x", "y", "z", "mass", "ax", "ay", "az"}

func (f Field) String() string {
	if f < 0 || f >= NumFields {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

// ErrShape is returned when a flat buffer does not hold whole particle columns.
var ErrShape = errors.New("particles: buffer length is not a multiple of the field count")

// Array is a column-major 7×N particle matrix. Column j lives in
// data[7j : 7j+7] ordered {x, y, z, mass, ax, ay, az}.
type Array[T Float] struct {
	data []T
	n    int
}

func New[T Float](n int) *Array[T] {
	if n < 0 {
		n = 0
	}
	return &Array[T]{
		data: make([]T, n*int(NumFields)),
		n:    n,
	}
}

// FromRaw wraps an existing flat buffer without copying.
func FromRaw[T Float](data []T) (*Array[T], error) {
	if len(data)%int(NumFields) != 0 {
		return nil, fmt.Errorf("%w: len=%d", ErrShape, len(data))
	}
	return &Array[T]{data: data, n: len(data) / int(NumFields)}, nil
}

func (a *Array[T]) Len() int { return a.n }

// Raw exposes the backing slice. Callers that write fields 1-4 through it
// break the read-only contract of force evaluation.
func (a *Array[T]) Raw() []T { return a.data }

func (a *Array[T]) At(f Field, j int) T {
	return a.data[j*int(NumFields)+int(f)]
}

func (a *Array[T]) Set(f Field, j int, v T) {
	a.data[j*int(NumFields)+int(f)] = v
}

func (a *Array[T]) Position(j int) [3]T {
	c := a.data[j*int(NumFields):]
	return [3]T{c[X], c[Y], c[Z]}
}

func (a *Array[T]) SetPosition(j int, p [3]T) {
	c := a.data[j*int(NumFields):]
	c[X], c[Y], c[Z] = p[0], p[1], p[2]
}

func (a *Array[T]) Mass(j int) T {
	return a.data[j*int(NumFields)+int(Mass)]
}

func (a *Array[T]) Acceleration(j int) [3]T {
	c := a.data[j*int(NumFields):]
	return [3]T{c[AX], c[AY], c[AZ]}
}

func (a *Array[T]) SetAcceleration(j int, acc [3]T) {
	c := a.data[j*int(NumFields):]
	c[AX], c[AY], c[AZ] = acc[0], acc[1], acc[2]
}

// AddAcceleration accumulates into the acceleration fields of column j.
func (a *Array[T]) AddAcceleration(j int, acc [3]T) {
	c := a.data[j*int(NumFields):]
	c[AX] += acc[0]
	c[AY] += acc[1]
	c[AZ] += acc[2]
}

// ResetAcceleration zeroes fields 5-7 of every column. It must run before
// each accumulation pass.
func (a *Array[T]) ResetAcceleration() {
	for j := 0; j < a.n; j++ {
		c := a.data[j*int(NumFields):]
		c[AX], c[AY], c[AZ] = 0, 0, 0
	}
}

// Clone returns an independent copy. A parallel run that is compared against
// a reference run must operate on a clone.
func (a *Array[T]) Clone() *Array[T] {
	c := make([]T, len(a.data))
	copy(c, a.data)
	return &Array[T]{data: c, n: a.n}
}

// SameShape reports whether both arrays hold the same number of columns.
func (a *Array[T]) SameShape(b *Array[T]) bool {
	return b != nil && a.n == b.n
}

// Accelerations returns the acceleration rows as one flat slice of
// length 3N laid out {ax0, ay0, az0, ax1, ...}, widened to float64.
func (a *Array[T]) Accelerations() []float64 {
	out := make([]float64, 3*a.n)
	for j := 0; j < a.n; j++ {
		c := a.data[j*int(NumFields):]
		out[3*j] = float64(c[AX])
		out[3*j+1] = float64(c[AY])
		out[3*j+2] = float64(c[AZ])
	}
	return out
}

// Epsilon returns the machine epsilon of T.
func Epsilon[T Float]() float64 {
	var zero T
	if unsafe.Sizeof(zero) == 4 {
		return float64(math.Nextafter32(1, 2) - 1)
	}
	return math.Nextafter(1, 2) - 1
}

// Precision names the storage width of T ("single" or "double").
func Precision[T Float]() string {
	var zero T
	if unsafe.Sizeof(zero) == 4 {
		return "single"
	}
	return "double"
}
