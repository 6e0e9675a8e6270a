package kinetics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// degrees in one full turn of the internal coordinate
const fullCycle = 360.0

// LoadFunc returns the additive load energy at bin x. x may run past the
// last bin: the load keeps accumulating instead of wrapping.
type LoadFunc func(x int) float64

// LinearLoad spreads slope kcal/mol evenly over one full cycle of bins.
func LinearLoad(slope float64, bins int) LoadFunc {
	return func(x int) float64 {
		return float64(x) * slope / float64(bins)
	}
}

// IntrasurfacePrefactor converts a rotational diffusion coefficient in
// degree^2/s into a hopping rate between adjacent bins.
func IntrasurfacePrefactor(d float64, bins int) float64 {
	width := fullCycle / float64(bins)
	return d / (width * width)
}

// RateMatrix holds continuous-time transition rates. Only allowed
// transitions are non-zero and the diagonal is left at zero.
type RateMatrix struct {
	m *mat.Dense
}

// NewRateMatrix wraps a copy of a square matrix of rates.
func NewRateMatrix(m mat.Matrix) RateMatrix {
	return RateMatrix{m: mat.DenseCopyOf(m)}
}

func (r RateMatrix) At(i, j int) float64 { return r.m.At(i, j) }

// Bins is the number of states r connects.
func (r RateMatrix) Bins() int {
	if r.m == nil {
		return 0
	}
	n, _ := r.m.Dims()
	return n
}

// Matrix exposes r as a read-only gonum matrix.
func (r RateMatrix) Matrix() mat.Matrix { return r.m }

// IntrasurfaceRates builds the nearest-neighbor rate matrix of one surface.
//
// Adjacent bins i and i+1 hop with rates c*exp(∓ΔE/2kT), which satisfies
// detailed balance against exp(-E/kT). Bin bins-1 is adjacent to bin 0.
// With a nil load the wraparound uses the plain energy difference. With a
// load the tilt is added before differencing, and bin 0 is seen from bin
// bins-1 as its image one cycle ahead, at load(bins).
func IntrasurfaceRates(p EnergyProfile, c, kT float64, load LoadFunc) (RateMatrix, error) {
	n := p.Bins()
	if n < 2 {
		return RateMatrix{}, fmt.Errorf("%w: need at least 2 bins, got %d", ErrDimensionMismatch, n)
	}
	if !(kT > 0) {
		return RateMatrix{}, fmt.Errorf("%w: kT must be positive, got %g", ErrInvalidParameter, kT)
	}
	if c < 0 {
		return RateMatrix{}, fmt.Errorf("%w: intrasurface prefactor must be non-negative, got %g", ErrInvalidParameter, c)
	}

	surface := p.Clone()
	if load != nil {
		for i := range surface {
			surface[i] += load(i)
		}
	}

	m := mat.NewDense(n, n, nil)
	for i := 0; i < n-1; i++ {
		diff := surface[i+1] - surface[i]
		m.Set(i, i+1, c*math.Exp(-diff/(2*kT)))
		m.Set(i+1, i, c*math.Exp(+diff/(2*kT)))
	}

	first := p[0]
	if load != nil {
		first += load(n)
	}
	wrap := surface[n-1] - first
	m.Set(0, n-1, c*math.Exp(-wrap/(2*kT)))
	m.Set(n-1, 0, c*math.Exp(+wrap/(2*kT)))

	return RateMatrix{m: m}, nil
}

// ExtendedLoadedProfile tiles p across one and a half extra cycles and adds
// the load, so that the tilt can be checked for continuity across the
// periodic boundary. xs runs from -bins/2 to bins+bins/2-1.
func ExtendedLoadedProfile(p EnergyProfile, load LoadFunc) (xs []int, energies []float64) {
	n := p.Bins()
	for x := -n / 2; x < n+n/2; x++ {
		i := ((x % n) + n) % n
		e := p[i]
		if load != nil {
			e += load(x)
		}
		xs = append(xs, x)
		energies = append(energies, e)
	}
	return xs, energies
}
