package kinetics

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("IntrasurfaceRates", func() {
	const kT = 0.6

	It("converts D into a hopping prefactor", func() {
		Expect(IntrasurfacePrefactor(testD, 4)).To(BeNumerically("~", 1, 1e-12))
		Expect(IntrasurfacePrefactor(3e12, 60)).To(BeNumerically("~", 3e12/36, 1e-3))
	})

	It("satisfies detailed balance on every adjacent pair including the wraparound", func() {
		e, err := DeriveEnergy(rugged(10), kT)
		Expect(err).NotTo(HaveOccurred())
		r, err := IntrasurfaceRates(e, 2.5, kT, nil)
		Expect(err).NotTo(HaveOccurred())

		n := e.Bins()
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			ratio := r.At(i, j) / r.At(j, i)
			Expect(ratio).To(BeNumerically("~", math.Exp(-(e[j]-e[i])/kT), 1e-9))
		}
	})

	It("only connects nearest neighbors and leaves the diagonal empty", func() {
		e, err := DeriveEnergy(rugged(6), kT)
		Expect(err).NotTo(HaveOccurred())
		r, err := IntrasurfaceRates(e, 1, kT, nil)
		Expect(err).NotTo(HaveOccurred())

		n := r.Bins()
		Expect(n).To(Equal(6))
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				adjacent := j == (i+1)%n || i == (j+1)%n
				if adjacent {
					Expect(r.At(i, j)).To(BeNumerically(">", 0))
				} else {
					Expect(r.At(i, j)).To(BeZero())
				}
			}
		}
	})

	It("tilts a flat surface uniformly across the periodic boundary under load", func() {
		const slope = 3.0
		n := 8
		e, err := DeriveEnergy(flat(n), kT)
		Expect(err).NotTo(HaveOccurred())
		r, err := IntrasurfaceRates(e, 1, kT, LinearLoad(slope, n))
		Expect(err).NotTo(HaveOccurred())

		step := slope / float64(n)
		forward := math.Exp(-step / (2 * kT))
		backward := math.Exp(step / (2 * kT))
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			Expect(r.At(i, j)).To(BeNumerically("~", forward, 1e-12))
			Expect(r.At(j, i)).To(BeNumerically("~", backward, 1e-12))
		}
	})

	It("rejects invalid input", func() {
		_, err := IntrasurfaceRates(EnergyProfile{1}, 1, kT, nil)
		Expect(err).To(MatchError(ErrDimensionMismatch))
		_, err = IntrasurfaceRates(EnergyProfile{1, 2}, -1, kT, nil)
		Expect(err).To(MatchError(ErrInvalidParameter))
		_, err = IntrasurfaceRates(EnergyProfile{1, 2}, 1, 0, nil)
		Expect(err).To(MatchError(ErrInvalidParameter))
	})
})

var _ = Describe("LinearLoad", func() {
	It("keeps accumulating past the last bin", func() {
		load := LinearLoad(4, 8)
		Expect(load(0)).To(BeZero())
		Expect(load(7)).To(BeNumerically("~", 3.5, 1e-12))
		Expect(load(8)).To(BeNumerically("~", 4, 1e-12))
		Expect(load(-1)).To(BeNumerically("~", -0.5, 1e-12))
	})
})

var _ = Describe("ExtendedLoadedProfile", func() {
	It("tiles the surface and adds the continuing tilt", func() {
		p := EnergyProfile{0, 1, 2, 3}
		xs, es := ExtendedLoadedProfile(p, LinearLoad(4, 4))
		Expect(xs).To(Equal([]int{-2, -1, 0, 1, 2, 3, 4, 5}))
		Expect(es).To(Equal([]float64{0, 2, 0, 2, 4, 6, 4, 6}))
	})
})

var _ = Describe("IntersurfaceRates", func() {
	It("binds at C·[S] and unbinds thermodynamically plus catalysis", func() {
		u := EnergyProfile{1, 2}
		b := EnergyProfile{0.4, 2}
		ub, bu, err := IntersurfaceRates(u, b, Coupling{KT: 0.6, CIntersurface: 10, CatalyticRate: 5, Substrate: 0.1})
		Expect(err).NotTo(HaveOccurred())
		Expect(ub).To(HaveLen(2))
		Expect(ub[0]).To(BeNumerically("~", 1, 1e-12))
		Expect(ub[1]).To(Equal(ub[0]))
		Expect(bu[0]).To(BeNumerically("~", 10*math.Exp(-1)+5, 1e-12))
		Expect(bu[1]).To(BeNumerically("~", 15, 1e-12))
	})

	It("requires matching surfaces", func() {
		_, _, err := IntersurfaceRates(EnergyProfile{1, 2}, EnergyProfile{1, 2, 3}, Coupling{KT: 0.6})
		Expect(err).To(MatchError(ErrDimensionMismatch))
	})
})
