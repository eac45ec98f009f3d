package compute_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravkern/internal/compute"
	"github.com/san-kum/gravkern/internal/force"
	"github.com/san-kum/gravkern/internal/launch"
	"github.com/san-kum/gravkern/internal/particles"
	"github.com/san-kum/gravkern/internal/validate"
)

const eps2 = force.DefaultSoftening

func run(s launch.Strategy, n, p, q int, src, tgt *particles.Array[float64]) {
	cfg, err := launch.New(n, p, q)
	Expect(err).NotTo(HaveOccurred())
	Expect(compute.NewKernel(s, cfg, eps2).Accumulate(src, tgt)).To(Succeed())
}

var _ = Describe("Kernel", func() {
	DescribeTable("matches the reference engine across seeds",
		func(s launch.Strategy, n, p, q int) {
			for seed := int64(1); seed <= 3; seed++ {
				src, tgt := particles.Pair[float64](n, seed)
				ref := tgt.Clone()
				force.Accumulate(src, ref, eps2)

				run(s, n, p, q, src, tgt)

				rep := validate.Compare(ref, tgt, validate.DefaultOptions())
				Expect(rep.Pass).To(BeTrue(), rep.String())
				Expect(rep.Mismatches).To(BeZero())
			}
		},
		Entry("global", launch.Global, 64, 16, 1),
		Entry("tiled", launch.Tiled, 64, 16, 1),
		Entry("tiled, one block", launch.Tiled, 32, 32, 1),
		Entry("column split q=2", launch.ColumnSplit, 64, 16, 2),
		Entry("column split q=p", launch.ColumnSplit, 48, 8, 8),
	)

	DescribeTable("reproduces the worked example",
		func(s launch.Strategy, q int) {
			src := particles.New[float64](2)
			src.SetPosition(0, [3]float64{1, 0, 0})
			src.Set(particles.Mass, 0, 2)
			src.SetPosition(1, [3]float64{0, 1, 0})
			src.Set(particles.Mass, 1, 3)
			tgt := particles.New[float64](2)

			run(s, 2, 2, q, src, tgt)

			d := math.Pow(1+eps2, 1.5)
			for i := 0; i < 2; i++ {
				a := tgt.Acceleration(i)
				Expect(a[0]).To(BeNumerically("~", 2/d, 1e-14))
				Expect(a[1]).To(BeNumerically("~", 3/d, 1e-14))
				Expect(a[2]).To(BeZero())
			}
		},
		Entry("global", launch.Global, 1),
		Entry("tiled", launch.Tiled, 1),
		Entry("column split", launch.ColumnSplit, 2),
	)

	It("gives zero acceleration from massless sources", func() {
		src := particles.Generate[float64](32, 4)
		for j := 0; j < src.Len(); j++ {
			src.Set(particles.Mass, j, 0)
		}
		for _, s := range launch.Strategies() {
			tgt := particles.Generate[float64](32, 5)
			run(s, 32, 8, 4, src, tgt)
			for i := 0; i < tgt.Len(); i++ {
				Expect(tgt.Acceleration(i)).To(Equal([3]float64{}), "strategy %s target %d", s, i)
			}
		}
	})

	It("stays finite when sources coincide with targets", func() {
		src := particles.Generate[float32](16, 8)
		for _, s := range launch.Strategies() {
			tgt := src.Clone()
			cfg := launch.MustNew(16, 4, 2)
			Expect(compute.NewKernel(s, cfg, float32(eps2)).Accumulate(src, tgt)).To(Succeed())
			for _, v := range tgt.Accelerations() {
				Expect(math.IsNaN(v) || math.IsInf(v, 0)).To(BeFalse())
			}
		}
	})

	It("never writes position or mass rows", func() {
		src := particles.Generate[float64](64, 12)
		for _, s := range launch.Strategies() {
			tgt := particles.Generate[float64](64, 13)
			before := tgt.Clone()
			run(s, 64, 16, 4, src, tgt)
			for j := 0; j < tgt.Len(); j++ {
				for f := particles.X; f <= particles.Mass; f++ {
					Expect(tgt.At(f, j)).To(Equal(before.At(f, j)))
				}
			}
		}
	})

	It("accumulates on top of existing accelerations", func() {
		src, tgt := particles.Pair[float64](32, 14)
		tgt.SetAcceleration(3, [3]float64{100, 200, 300})
		ref := tgt.Clone()
		force.Accumulate(src, ref, eps2)

		run(launch.ColumnSplit, 32, 8, 4, src, tgt)

		rep := validate.Compare(ref, tgt, validate.DefaultOptions())
		Expect(rep.Pass).To(BeTrue(), rep.String())
	})

	It("repeats column split runs without lost updates", func() {
		src, tgt := particles.Pair[float32](128, 15)
		cfg := launch.MustNew(128, 32, 8)
		k := compute.NewKernel(launch.ColumnSplit, cfg, float32(eps2))

		first := tgt.Clone()
		Expect(k.Accumulate(src, first)).To(Succeed())

		for r := 0; r < 5; r++ {
			again := tgt.Clone()
			Expect(k.Accumulate(src, again)).To(Succeed())
			rep := validate.Compare(first, again, validate.DefaultOptions())
			Expect(rep.Pass).To(BeTrue(), rep.String())
		}
	})

	It("leaves the source array untouched", func() {
		src, tgt := particles.Pair[float64](16, 16)
		before := src.Clone()
		run(launch.Tiled, 16, 4, 1, src, tgt)
		Expect(src.Raw()).To(Equal(before.Raw()))
	})
})
