package kinetics

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"
)

var _ = Describe("AssembleTransitionMatrix", func() {
	params := Parameters{KT: 0.6, D: testD, CIntersurface: 1, Substrate: 1, CatalyticRate: 0.5, OffsetFactor: 0.3}

	It("produces a row-stochastic matrix", func() {
		for _, bins := range []int{2, 4, 9, 24} {
			tm := buildMatrix(rugged(bins), flat(bins), params)
			Expect(tm.States()).To(Equal(2 * bins))
			Expect(tm.Warning).NotTo(HaveOccurred())
			for i := 0; i < tm.States(); i++ {
				sum := 0.0
				for j := 0; j < tm.States(); j++ {
					v := tm.At(i, j)
					Expect(v).To(BeNumerically(">=", 0))
					Expect(v).To(BeNumerically("<=", 1))
					sum += v
				}
				Expect(sum).To(BeNumerically("~", 1, 1e-9))
			}
		}
	})

	It("chooses dt one order of magnitude below the largest row sum", func() {
		tm := buildMatrix(flat(4), flat(4), Parameters{KT: 0.6, D: testD, CIntersurface: 1, Substrate: 1})
		// every row: two neighbors at rate 1 plus one intersurface hop at rate 1
		Expect(tm.Dt).To(BeNumerically("~", 0.1, 1e-15))
		Expect(tm.At(0, 0)).To(BeNumerically("~", 0.7, 1e-12))

		tm = buildMatrix(flat(4), flat(4), Parameters{KT: 0.6, D: testD, CIntersurface: 1e6, Substrate: 2e-3, CatalyticRate: 140})
		Expect(tm.Dt).To(BeNumerically("~", 1e-7, 1e-22))
	})

	It("places intersurface rates on the block off-diagonals", func() {
		u := NewRateMatrix(mat.NewDense(2, 2, []float64{0, 1, 1, 0}))
		b := NewRateMatrix(mat.NewDense(2, 2, []float64{0, 2, 2, 0}))
		tm, err := AssembleTransitionMatrix(u, b, []float64{3, 4}, []float64{5, 6})
		Expect(err).NotTo(HaveOccurred())
		Expect(tm.Dt).To(BeNumerically("~", 0.1, 1e-15))
		Expect(tm.At(0, 2)).To(BeNumerically("~", 0.3, 1e-12))
		Expect(tm.At(1, 3)).To(BeNumerically("~", 0.4, 1e-12))
		Expect(tm.At(2, 0)).To(BeNumerically("~", 0.5, 1e-12))
		Expect(tm.At(3, 1)).To(BeNumerically("~", 0.6, 1e-12))
		Expect(tm.At(0, 3)).To(BeZero())
		Expect(tm.At(3, 3)).To(BeNumerically("~", 1-0.2-0.6, 1e-12))
	})

	It("rejects mismatched blocks", func() {
		u := NewRateMatrix(mat.NewDense(2, 2, []float64{0, 1, 1, 0}))
		b := NewRateMatrix(mat.NewDense(3, 3, nil))
		_, err := AssembleTransitionMatrix(u, b, []float64{1, 1}, []float64{1, 1})
		Expect(err).To(MatchError(ErrDimensionMismatch))
	})

	It("refuses a chain with no transitions", func() {
		_, err := AssembleTransitionMatrix(
			NewRateMatrix(mat.NewDense(2, 2, nil)),
			NewRateMatrix(mat.NewDense(2, 2, nil)),
			[]float64{0, 0}, []float64{0, 0})
		Expect(err).To(MatchError(ErrZeroRates))
	})
})

var _ = Describe("Uniformize", func() {
	It("keeps sub-unit rates at dt of one tenth", func() {
		p, dt, warning, err := Uniformize(mat.NewDense(2, 2, []float64{0, 0.5, 0.5, 0}))
		Expect(err).NotTo(HaveOccurred())
		Expect(warning).NotTo(HaveOccurred())
		Expect(dt).To(BeNumerically("~", 0.1, 1e-15))
		Expect(p.At(0, 0)).To(BeNumerically("~", 0.95, 1e-12))
	})

	It("rejects infinite rates", func() {
		_, _, _, err := Uniformize(mat.NewDense(2, 2, []float64{0, math.Inf(1), 1, 0}))
		Expect(err).To(MatchError(ErrZeroRates))
	})
})

var _ = Describe("RowError", func() {
	It("unwraps to the sentinel", func() {
		var err error = &RowError{Row: 3, Value: 1.2, Wrapped: ErrSuperStochastic}
		Expect(errors.Is(err, ErrSuperStochastic)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("row 3"))
	})
})
