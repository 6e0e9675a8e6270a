package kinetics

import (
	"math/cmplx"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/floats"
)

var _ = Describe("SolveSteadyState", func() {
	It("is uniform on flat surfaces with symmetric coupling and no catalysis", func() {
		tm := buildMatrix(flat(6), flat(6), Parameters{KT: 0.6, D: testD, CIntersurface: 1, Substrate: 1})
		ss, err := SolveSteadyState(tm)
		Expect(err).NotTo(HaveOccurred())
		Expect(ss.Distribution).To(HaveLen(12))
		for _, p := range ss.Distribution {
			Expect(p).To(BeNumerically("~", 1.0/12, 1e-10))
		}
	})

	It("collapses onto the unbound ring when nothing binds", func() {
		p := Parameters{KT: 0.6, D: testD, CIntersurface: 1e6, OffsetFactor: 6.0}
		tm := buildMatrix(flat(4), flat(4), p)
		ss, err := SolveSteadyState(tm)
		Expect(err).NotTo(HaveOccurred())
		for _, v := range ss.Distribution.Unbound() {
			Expect(v).To(BeNumerically("~", 0.25, 1e-9))
		}
		for _, v := range ss.Distribution.Bound() {
			Expect(v).To(BeNumerically("~", 0, 1e-9))
		}

		flux, err := ComputeFlux(ss.Distribution, tm)
		Expect(err).NotTo(HaveOccurred())
		for i := range flux.Unbound {
			Expect(flux.Unbound[i]).To(BeNumerically("~", 0, 1e-6))
			Expect(flux.Bound[i]).To(BeNumerically("~", 0, 1e-6))
		}
	})

	It("returns a normalized fixed point of the chain", func() {
		tm := buildMatrix(rugged(10), flat(10), Parameters{KT: 0.6, D: testD, CIntersurface: 1, Substrate: 0.5, CatalyticRate: 2, OffsetFactor: 0.4})
		ss, err := SolveSteadyState(tm)
		Expect(err).NotTo(HaveOccurred())
		Expect(floats.Sum(ss.Distribution)).To(BeNumerically("~", 1, 1e-12))
		Expect(cmplx.Abs(ss.Eigenvalue - 1)).To(BeNumerically("<", 1e-9))
		Expect(ss.ImagResidue).To(BeNumerically("<", ImagTolerance))

		n := tm.States()
		for j := 0; j < n; j++ {
			next := 0.0
			for i := 0; i < n; i++ {
				next += ss.Distribution[i] * tm.At(i, j)
			}
			Expect(next).To(BeNumerically("~", ss.Distribution[j], 1e-10))
			Expect(ss.Distribution[j]).To(BeNumerically(">=", 0))
		}
	})

	It("is deterministic across identical runs", func() {
		p := Parameters{KT: 0.6, D: testD, CIntersurface: 3, Substrate: 0.2, CatalyticRate: 1, LoadSlope: 1.5}
		first, err := SolveSteadyState(buildMatrix(rugged(8), flat(8), p))
		Expect(err).NotTo(HaveOccurred())
		second, err := SolveSteadyState(buildMatrix(rugged(8), flat(8), p))
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Distribution).To(Equal(first.Distribution))
	})

	It("rejects a nil matrix", func() {
		_, err := SolveSteadyState(nil)
		Expect(err).To(MatchError(ErrDimensionMismatch))
	})
})

var _ = Describe("dominant", func() {
	It("prefers the largest real part", func() {
		Expect(dominant([]complex128{0.5, 1, complex(0.9, 0.3)})).To(Equal(1))
	})

	It("breaks round-off ties by magnitude", func() {
		Expect(dominant([]complex128{complex(1, 0), complex(1, 1e-3)})).To(Equal(1))
		Expect(dominant([]complex128{complex(1, 1e-3), complex(1-1e-14, 0)})).To(Equal(0))
	})
})
