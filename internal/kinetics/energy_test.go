package kinetics

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/floats"
)

var _ = Describe("GaussianSmooth", func() {
	It("leaves a constant signal unchanged", func() {
		out := GaussianSmooth([]float64{3, 3, 3, 3, 3}, SmoothingSigma)
		for _, v := range out {
			Expect(v).To(BeNumerically("~", 3, 1e-12))
		}
	})

	It("spreads a spike symmetrically", func() {
		in := make([]float64, 21)
		in[10] = 1
		out := GaussianSmooth(in, SmoothingSigma)
		for k := 1; k <= 4; k++ {
			Expect(out[10-k]).To(BeNumerically("~", out[10+k], 1e-15))
			Expect(out[10-k]).To(BeNumerically("<", out[10-k+1]))
		}
		Expect(out[5]).To(BeZero())
		Expect(floats.Sum(out)).To(BeNumerically("~", 1, 1e-12))
	})

	It("mirrors samples at the edges", func() {
		in := []float64{1, 0, 0, 0, 0, 0, 0, 0, 0, 0}
		out := GaussianSmooth(in, SmoothingSigma)
		Expect(out[0]).To(BeNumerically(">", out[1]))
		Expect(floats.Sum(out)).To(BeNumerically("~", 1, 1e-12))
	})
})

var _ = Describe("DeriveEnergy", func() {
	const kT = 0.6

	It("gives equal energies for a flat histogram", func() {
		e, err := DeriveEnergy(flat(4), kT)
		Expect(err).NotTo(HaveOccurred())
		Expect(e).To(HaveLen(4))
		for _, v := range e {
			Expect(v).To(BeNumerically("~", -kT*math.Log(0.25), 1e-12))
		}
	})

	It("is the inverse of the Boltzmann distribution of the smoothed histogram", func() {
		h := rugged(12)
		e, err := DeriveEnergy(h, kT)
		Expect(err).NotTo(HaveOccurred())

		smooth := GaussianSmooth(h, SmoothingSigma)
		floats.Scale(1/floats.Sum(smooth), smooth)
		pdf := BoltzmannDistribution(e, kT)
		for i := range pdf {
			Expect(pdf[i]).To(BeNumerically("~", smooth[i], 1e-12))
		}
	})

	It("fills bins the kernel cannot reach with the smallest smoothed value", func() {
		h := make([]float64, 30)
		h[0], h[1], h[2] = 10, 20, 10
		e, err := DeriveEnergy(h, kT)
		Expect(err).NotTo(HaveOccurred())
		for _, v := range e {
			Expect(math.IsInf(v, 0)).To(BeFalse())
		}
		Expect(e[20]).To(Equal(e[29]))
		Expect(e[20]).To(BeNumerically(">", e[1]))
	})

	It("rejects histograms that cannot be repaired", func() {
		_, err := DeriveEnergy(make([]float64, 8), kT)
		Expect(err).To(MatchError(ErrInvalidHistogram))

		_, err = DeriveEnergy([]float64{1, -1, 1}, kT)
		Expect(err).To(MatchError(ErrInvalidHistogram))

		_, err = DeriveEnergy([]float64{1}, kT)
		Expect(err).To(MatchError(ErrInvalidHistogram))
	})

	It("rejects a non-positive kT", func() {
		_, err := DeriveEnergy(flat(4), 0)
		Expect(err).To(MatchError(ErrInvalidParameter))
	})

	It("does not modify its input", func() {
		h := []float64{0, 5, 0, 5}
		_, err := DeriveEnergy(h, kT)
		Expect(err).NotTo(HaveOccurred())
		Expect(h).To(Equal([]float64{0, 5, 0, 5}))
	})
})

var _ = Describe("EnergyProfile", func() {
	It("shifts into a new profile", func() {
		p := EnergyProfile{1, 2, 3}
		q := p.Shift(0.5)
		Expect(q).To(Equal(EnergyProfile{0.5, 1.5, 2.5}))
		Expect(p).To(Equal(EnergyProfile{1, 2, 3}))
	})
})
