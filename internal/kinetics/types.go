package kinetics

import "fmt"

// Parameters are the physical constants of one simulation run.
type Parameters struct {
	KT             float64 // thermal energy, kcal/mol
	D              float64 // rotational diffusion coefficient, degree^2/s
	CIntersurface  float64 // intersurface prefactor, 1/(M s)
	OffsetFactor   float64 // bound surface offset, kcal/mol
	CatalyticRate  float64 // catalytic turnover, 1/s
	Substrate      float64 // substrate concentration, M
	LoadSlope      float64 // kcal/mol per full cycle; zero disables the load
	Iterations     int     // power-iteration steps after the eigen solve
	StrictMatrices bool    // treat a super-stochastic transition matrix as fatal
}

// Validate checks the invariants that must hold before any numerical work.
func (p Parameters) Validate() error {
	switch {
	case !(p.KT > 0):
		return fmt.Errorf("%w: kT must be positive, got %g", ErrInvalidParameter, p.KT)
	case !(p.D > 0):
		return fmt.Errorf("%w: D must be positive, got %g", ErrInvalidParameter, p.D)
	case p.CIntersurface < 0:
		return fmt.Errorf("%w: C_intersurface must be non-negative, got %g", ErrInvalidParameter, p.CIntersurface)
	case p.CatalyticRate < 0:
		return fmt.Errorf("%w: catalytic rate must be non-negative, got %g", ErrInvalidParameter, p.CatalyticRate)
	case p.Substrate < 0:
		return fmt.Errorf("%w: substrate concentration must be non-negative, got %g", ErrInvalidParameter, p.Substrate)
	case p.Iterations < 0:
		return fmt.Errorf("%w: iterations must be non-negative, got %d", ErrInvalidParameter, p.Iterations)
	}
	return nil
}

// Coupling returns the intersurface constants of p.
func (p Parameters) Coupling() Coupling {
	return Coupling{
		KT:            p.KT,
		CIntersurface: p.CIntersurface,
		CatalyticRate: p.CatalyticRate,
		Substrate:     p.Substrate,
	}
}

// EnergyProfile is the free energy of each bin of one surface.
type EnergyProfile []float64

func (p EnergyProfile) Bins() int { return len(p) }

// Shift returns a copy of p with offset subtracted from every bin.
func (p EnergyProfile) Shift(offset float64) EnergyProfile {
	out := make(EnergyProfile, len(p))
	for i, e := range p {
		out[i] = e - offset
	}
	return out
}

func (p EnergyProfile) Clone() EnergyProfile {
	out := make(EnergyProfile, len(p))
	copy(out, p)
	return out
}

// Distribution is a probability vector over both surfaces.
type Distribution []float64

// Unbound returns the unbound-surface half of d.
func (d Distribution) Unbound() []float64 { return d[:len(d)/2] }

// Bound returns the bound-surface half of d.
func (d Distribution) Bound() []float64 { return d[len(d)/2:] }

// FluxProfile holds net probability currents in cycles per second.
// Unbound[i] and Bound[i] are the currents from bin i to bin i+1 (wrapping);
// Intersurface[i] is the current from unbound bin i to bound bin i.
type FluxProfile struct {
	Unbound      []float64
	Bound        []float64
	Intersurface []float64
}

// Intrasurface returns the per-bin sum of both surfaces' rotational flux.
func (f FluxProfile) Intrasurface() []float64 {
	out := make([]float64, len(f.Unbound))
	for i := range out {
		out[i] = f.Unbound[i] + f.Bound[i]
	}
	return out
}
