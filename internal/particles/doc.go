// Package particles defines the 7×N particle matrix shared by source and
// target populations.
//
// Each column is one particle:
//
//	{x, y, z, mass, ax, ay, az}
//
// Position and mass are read-only during force evaluation. The three
// acceleration rows are accumulated with += and must be zeroed with
// [Array.ResetAcceleration] before every pass.
//
// # Example
//
//	src := particles.Generate[float32](1024, 42)
//	tgt := src.Clone()
//	tgt.ResetAcceleration()
package particles
