// Package compute provides the tiled parallel force kernel and the
// reference backend it is validated against.
//
// A launch runs a grid of independent blocks. Each block is a set of worker
// goroutines sharing one staging buffer and one barrier:
//
//   - Global: one worker per target, sources read straight from device storage
//   - Tiled: one worker per target, sources staged one tile at a time
//   - ColumnSplit: q workers per target over p/q wide slices of each tile,
//     partial sums merged with an atomic add
//
// # Usage
//
//	cfg, err := launch.New(n, 128, 4)
//	if err != nil {
//		return err
//	}
//	k := compute.NewKernel(launch.ColumnSplit, cfg, float32(force.DefaultSoftening))
//	err = k.Accumulate(src, tgt)
//
// Accumulate uploads copies of both arrays to a [Device], launches, and
// copies the acceleration rows back. Callers that need the device view
// directly use [NewDevice], [Kernel.Launch] and [Device.Download].
package compute
