package kinetics

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/floats"
)

var _ = Describe("InitialPulse", func() {
	It("is a normalized pulse centered on the middle bin", func() {
		pulse := InitialPulse(20)
		Expect(pulse).To(HaveLen(40))
		Expect(floats.Sum(pulse)).To(BeNumerically("~", 1, 1e-12))
		Expect(floats.MaxIdx(pulse)).To(Equal(10))
		Expect(pulse[8]).To(BeNumerically("~", pulse[12], 1e-15))
	})
})

var _ = Describe("RelaxIteratively", func() {
	params := Parameters{KT: 0.6, D: testD, CIntersurface: 1, Substrate: 0.5, CatalyticRate: 0.5, OffsetFactor: 0.2}

	It("records one diagnostic per step plus the start", func() {
		tm := buildMatrix(rugged(8), flat(8), params)
		rel, err := RelaxIteratively(tm, 25)
		Expect(err).NotTo(HaveOccurred())
		Expect(rel.MSD).To(HaveLen(26))
		Expect(rel.CenterOfMass).To(HaveLen(26))
		// the pulse is cut off at state 0 but not on the right
		Expect(rel.CenterOfMass[0]).To(BeNumerically(">", 4))
		Expect(rel.CenterOfMass[0]).To(BeNumerically("<", 4.2))
		Expect(floats.Sum(rel.Final)).To(BeNumerically("~", 1, 1e-9))
		Expect(rel.Initial).To(Equal(InitialPulse(8)))
	})

	It("returns the pulse itself for zero iterations", func() {
		tm := buildMatrix(flat(4), flat(4), params)
		rel, err := RelaxIteratively(tm, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(rel.Final).To(Equal(InitialPulse(4)))
		Expect(rel.MSD).To(HaveLen(1))
	})

	It("spreads the pulse on a flat surface", func() {
		tm := buildMatrix(flat(16), flat(16), Parameters{KT: 0.6, D: 3e4, CIntersurface: 1, Substrate: 1})
		rel, err := RelaxIteratively(tm, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(rel.MSD[10]).To(BeNumerically(">", rel.MSD[0]))
	})

	It("converges to the eigen-derived steady state and its flux", func() {
		tm := buildMatrix(rugged(8), flat(8), params)
		ss, err := SolveSteadyState(tm)
		Expect(err).NotTo(HaveOccurred())

		rel, err := RelaxIteratively(tm, 5000)
		Expect(err).NotTo(HaveOccurred())

		gap, err := ConvergenceGap(rel.Final, ss.Distribution)
		Expect(err).NotTo(HaveOccurred())
		Expect(gap).To(BeNumerically("<", 1e-9))

		eigenFlux, err := ComputeFlux(ss.Distribution, tm)
		Expect(err).NotTo(HaveOccurred())
		iterFlux, err := ComputeFlux(rel.Final, tm)
		Expect(err).NotTo(HaveOccurred())
		for i := range eigenFlux.Unbound {
			Expect(iterFlux.Unbound[i]).To(BeNumerically("~", eigenFlux.Unbound[i], 1e-7))
			Expect(iterFlux.Bound[i]).To(BeNumerically("~", eigenFlux.Bound[i], 1e-7))
			Expect(iterFlux.Intersurface[i]).To(BeNumerically("~", eigenFlux.Intersurface[i], 1e-7))
		}
	})

	It("rejects negative iteration counts", func() {
		tm := buildMatrix(flat(4), flat(4), params)
		_, err := RelaxIteratively(tm, -1)
		Expect(err).To(MatchError(ErrInvalidParameter))
	})
})

var _ = Describe("ConvergenceGap", func() {
	It("measures Euclidean distance", func() {
		gap, err := ConvergenceGap([]float64{0, 3}, []float64{4, 0})
		Expect(err).NotTo(HaveOccurred())
		Expect(gap).To(BeNumerically("~", 5, 1e-12))

		_, err = ConvergenceGap([]float64{1}, []float64{1, 2})
		Expect(err).To(MatchError(ErrDimensionMismatch))
	})
})
