package kinetics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// TransitionMatrix is a row-stochastic matrix advancing the two-surface
// chain by one timestep Dt. States 0..Bins-1 are unbound, Bins..2*Bins-1
// are bound.
type TransitionMatrix struct {
	p    *mat.Dense
	Dt   float64
	Bins int

	// Warning is non-nil when some row's scaled off-diagonal sum exceeded 1.
	// The matrix is still returned; results built on it are suspect.
	Warning error
}

func (t *TransitionMatrix) At(i, j int) float64 { return t.p.At(i, j) }

// States is the matrix dimension, 2*Bins.
func (t *TransitionMatrix) States() int { return 2 * t.Bins }

// Matrix exposes the probabilities as a read-only gonum matrix.
func (t *TransitionMatrix) Matrix() mat.Matrix { return t.p }

// AssembleTransitionMatrix places both surfaces' rate matrices on the
// diagonal blocks and the intersurface rates on the off-diagonal blocks at
// matching bins, then scales the result into a one-step transition matrix.
func AssembleTransitionMatrix(u, b RateMatrix, ub, bu []float64) (*TransitionMatrix, error) {
	n := u.Bins()
	if n < 2 || b.Bins() != n || len(ub) != n || len(bu) != n {
		return nil, fmt.Errorf("%w: unbound %d, bound %d, ub %d, bu %d",
			ErrDimensionMismatch, n, b.Bins(), len(ub), len(bu))
	}

	rates := mat.NewDense(2*n, 2*n, nil)
	rates.Slice(0, n, 0, n).(*mat.Dense).Copy(u.m)
	rates.Slice(n, 2*n, n, 2*n).(*mat.Dense).Copy(b.m)
	for i := 0; i < n; i++ {
		rates.Set(i, i+n, ub[i])
		rates.Set(i+n, i, bu[i])
	}
	for i := 0; i < 2*n; i++ {
		rates.Set(i, i, 0)
	}

	p, dt, warning, err := Uniformize(rates)
	if err != nil {
		return nil, err
	}
	return &TransitionMatrix{p: p, Dt: dt, Bins: n, Warning: warning}, nil
}

// Uniformize scales a rate matrix by dt = 10^-(M+1), where M
// is the order of magnitude of the largest row sum, and fills each diagonal
// entry with one minus its row's off-diagonal sum.
//
// A row that still sums past 1 is reported through warning; err is
// reserved for matrices that cannot be scaled at all.
func Uniformize(rates *mat.Dense) (p *mat.Dense, dt float64, warning error, err error) {
	r, c := rates.Dims()
	if r != c {
		return nil, 0, nil, fmt.Errorf("%w: rate matrix is %dx%d", ErrDimensionMismatch, r, c)
	}

	sums := make([]float64, r)
	for i := range sums {
		sums[i] = offDiagonalSum(rates, i)
	}
	maxSum := floats.Max(sums)
	if !(maxSum > 0) || math.IsInf(maxSum, 0) {
		return nil, 0, nil, fmt.Errorf("%w: largest row sum is %g", ErrZeroRates, maxSum)
	}

	magnitude := int(math.Log10(maxSum))
	dt = math.Pow(10, -float64(magnitude+1))

	p = mat.NewDense(r, r, nil)
	p.Scale(dt, rates)
	for i := 0; i < r; i++ {
		rowSum := offDiagonalSum(p, i)
		if rowSum > 1 && warning == nil {
			warning = &RowError{Row: i, Value: rowSum, Wrapped: ErrSuperStochastic}
		}
		p.Set(i, i, 1-rowSum)
	}
	return p, dt, warning, nil
}

func offDiagonalSum(m *mat.Dense, i int) float64 {
	return floats.Sum(m.RawRowView(i)) - m.At(i, i)
}
