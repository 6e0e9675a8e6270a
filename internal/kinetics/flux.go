package kinetics

import "fmt"

// ComputeFlux returns the net currents J(i→j) = (π_i P_ij - π_j P_ji) / dt
// for every adjacent pair on each surface, including the wraparound pair
// bins-1 → 0, and for every matched unbound/bound pair. Positive
// intrasurface flux is rotation toward increasing bin index.
//
// dist may be the eigen-derived steady state or an iterated distribution.
func ComputeFlux(dist []float64, tm *TransitionMatrix) (FluxProfile, error) {
	if tm == nil || tm.p == nil {
		return FluxProfile{}, fmt.Errorf("%w: nil transition matrix", ErrDimensionMismatch)
	}
	n := tm.Bins
	if len(dist) != 2*n {
		return FluxProfile{}, fmt.Errorf("%w: distribution has %d states, matrix has %d",
			ErrDimensionMismatch, len(dist), 2*n)
	}

	current := func(i, j int) float64 {
		return (dist[i]*tm.p.At(i, j) - dist[j]*tm.p.At(j, i)) / tm.Dt
	}

	flux := FluxProfile{
		Unbound:      make([]float64, n),
		Bound:        make([]float64, n),
		Intersurface: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		next := (i + 1) % n
		flux.Unbound[i] = current(i, next)
		flux.Bound[i] = current(n+i, n+next)
		flux.Intersurface[i] = current(i, n+i)
	}
	return flux, nil
}
