package kinetics

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ImagTolerance bounds the relative imaginary residue of the dominant
// eigenvector that is discarded without comment.
const ImagTolerance = 1e-8

// SteadyState is the stationary distribution of a transition matrix.
type SteadyState struct {
	Distribution Distribution

	// Eigenvalue is the selected eigenvalue; for a valid stochastic matrix
	// it is 1 up to round-off.
	Eigenvalue  complex128
	Eigenvalues []complex128

	// ImagResidue is the L1 norm of the discarded imaginary part relative
	// to the L1 norm of the real part.
	ImagResidue float64
}

// SolveSteadyState finds the left eigenvector of tm with the dominant
// eigenvalue, as the right eigenvector of its transpose.
//
// Eigenvectors carry an arbitrary overall sign and may come back with a
// round-off imaginary part. The imaginary part is dropped (its relative size
// is kept in ImagResidue), the magnitude of the real part is taken
// element-wise, and the result is L1-normalized.
//
// The chain is assumed irreducible; with several closed classes the
// returned vector is one arbitrary stationary distribution.
func SolveSteadyState(tm *TransitionMatrix) (SteadyState, error) {
	if tm == nil || tm.p == nil {
		return SteadyState{}, fmt.Errorf("%w: nil transition matrix", ErrDimensionMismatch)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(tm.p.T(), mat.EigenRight); !ok {
		return SteadyState{}, ErrNoConvergence
	}
	values := eig.Values(nil)
	idx := dominant(values)

	var vectors mat.CDense
	eig.VectorsTo(&vectors)
	n, _ := vectors.Dims()

	dist := make(Distribution, n)
	imagSum := 0.0
	for i := 0; i < n; i++ {
		v := vectors.At(i, idx)
		dist[i] = math.Abs(real(v))
		imagSum += math.Abs(imag(v))
	}
	realSum := floats.Sum(dist)
	if !(realSum > 0) || math.IsNaN(realSum) {
		return SteadyState{}, fmt.Errorf("%w: dominant eigenvector has no real part", ErrNoConvergence)
	}
	floats.Scale(1/realSum, dist)

	return SteadyState{
		Distribution: dist,
		Eigenvalue:   values[idx],
		Eigenvalues:  values,
		ImagResidue:  imagSum / realSum,
	}, nil
}

// dominant picks the eigenvalue with the largest real part, breaking
// round-off ties by magnitude.
func dominant(values []complex128) int {
	const tie = 1e-12
	best := 0
	for i := 1; i < len(values); i++ {
		re, bestRe := real(values[i]), real(values[best])
		switch {
		case re > bestRe+tie:
			best = i
		case math.Abs(re-bestRe) <= tie && cmplx.Abs(values[i]) > cmplx.Abs(values[best]):
			best = i
		}
	}
	return best
}
