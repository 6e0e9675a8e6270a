package kinetics

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/floats"
)

var _ = Describe("ComputeFlux", func() {
	steady := func(tm *TransitionMatrix) Distribution {
		GinkgoHelper()
		ss, err := SolveSteadyState(tm)
		Expect(err).NotTo(HaveOccurred())
		return ss.Distribution
	}

	It("vanishes everywhere for a detailed-balanced configuration", func() {
		tm := buildMatrix(rugged(12), flat(12), Parameters{KT: 0.6, D: testD, CIntersurface: 2, Substrate: 0.3, OffsetFactor: 0.5})
		flux, err := ComputeFlux(steady(tm), tm)
		Expect(err).NotTo(HaveOccurred())

		Expect(floats.Sum(flux.Unbound)).To(BeNumerically("~", 0, 1e-9))
		Expect(floats.Sum(flux.Bound)).To(BeNumerically("~", 0, 1e-9))
		Expect(floats.Sum(flux.Intersurface)).To(BeNumerically("~", 0, 1e-9))
		for i := range flux.Unbound {
			Expect(flux.Unbound[i]).To(BeNumerically("~", 0, 1e-9))
			Expect(flux.Bound[i]).To(BeNumerically("~", 0, 1e-9))
			Expect(flux.Intersurface[i]).To(BeNumerically("~", 0, 1e-9))
		}
	})

	It("conserves probability at every state in the steady state", func() {
		tm := buildMatrix(rugged(10), flat(10), Parameters{KT: 0.6, D: testD, CIntersurface: 1, Substrate: 0.5, CatalyticRate: 3, OffsetFactor: 0.2})
		flux, err := ComputeFlux(steady(tm), tm)
		Expect(err).NotTo(HaveOccurred())

		n := tm.Bins
		for i := 0; i < n; i++ {
			prev := (i - 1 + n) % n
			Expect(flux.Unbound[prev] - flux.Unbound[i] - flux.Intersurface[i]).To(BeNumerically("~", 0, 1e-9))
			Expect(flux.Bound[prev] - flux.Bound[i] + flux.Intersurface[i]).To(BeNumerically("~", 0, 1e-9))
		}
		// every bound state drains back through the ring, so binding and
		// unbinding balance overall while cycling locally
		Expect(floats.Sum(flux.Intersurface)).To(BeNumerically("~", 0, 1e-9))
		Expect(floats.Norm(flux.Intersurface, 2)).To(BeNumerically(">", 1e-6))
	})

	It("drives uniform rotation down the load on a flat surface", func() {
		tm := buildMatrix(flat(8), flat(8), Parameters{KT: 0.6, D: testD, CIntersurface: 1, Substrate: 1, LoadSlope: 2})
		flux, err := ComputeFlux(steady(tm), tm)
		Expect(err).NotTo(HaveOccurred())

		first := flux.Unbound[0]
		Expect(first).To(BeNumerically("<", -1e-6))
		for i := range flux.Unbound {
			Expect(flux.Unbound[i]).To(BeNumerically("~", first, 1e-9))
			Expect(flux.Bound[i]).To(BeNumerically("~", first, 1e-9))
			Expect(flux.Intersurface[i]).To(BeNumerically("~", 0, 1e-9))
		}
		Expect(flux.Intrasurface()[3]).To(BeNumerically("~", 2*first, 1e-9))
	})

	It("rejects a distribution of the wrong length", func() {
		tm := buildMatrix(flat(4), flat(4), Parameters{KT: 0.6, D: testD, CIntersurface: 1, Substrate: 1})
		_, err := ComputeFlux(make([]float64, 4), tm)
		Expect(err).To(MatchError(ErrDimensionMismatch))
	})
})
