package kinetics

import (
	"fmt"
	"math"
)

// Coupling holds the constants of the binding and catalytic steps.
type Coupling struct {
	KT            float64
	CIntersurface float64
	CatalyticRate float64
	Substrate     float64
}

// IntersurfaceRates returns the per-bin unbound→bound and bound→unbound rates.
//
// Binding is diffusion limited: C·[S] in every bin. Unbinding is the
// thermodynamic reverse C·exp(-(E_u-E_b)/kT) plus the catalytic rate, which
// is a one-way exit channel and is not balanced by any reverse step.
func IntersurfaceRates(unbound, bound EnergyProfile, c Coupling) (ub, bu []float64, err error) {
	n := unbound.Bins()
	if bound.Bins() != n {
		return nil, nil, fmt.Errorf("%w: unbound has %d bins, bound has %d", ErrDimensionMismatch, n, bound.Bins())
	}
	if !(c.KT > 0) {
		return nil, nil, fmt.Errorf("%w: kT must be positive, got %g", ErrInvalidParameter, c.KT)
	}
	if c.CIntersurface < 0 || c.CatalyticRate < 0 || c.Substrate < 0 {
		return nil, nil, fmt.Errorf("%w: intersurface rates must be non-negative", ErrInvalidParameter)
	}

	ub = make([]float64, n)
	bu = make([]float64, n)
	for i := 0; i < n; i++ {
		ub[i] = c.CIntersurface * c.Substrate
		bu[i] = c.CIntersurface*math.Exp(-(unbound[i]-bound[i])/c.KT) + c.CatalyticRate
	}
	return ub, bu, nil
}
