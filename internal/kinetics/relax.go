package kinetics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// PulseWidth is the standard deviation, in bins, of the starting pulse.
const PulseWidth = 2.0

// Relaxation records a power iteration of the transition matrix.
type Relaxation struct {
	Initial Distribution
	Final   Distribution

	// MSD[k] is the mean-squared angular displacement, in degree^2, from
	// the pulse center after k steps. MSD[0] describes the initial pulse.
	MSD []float64
	// CenterOfMass[k] is the probability-weighted mean state index after k steps.
	CenterOfMass []float64
}

// InitialPulse is a normalized Gaussian over all 2*bins states, centered
// at bin bins/2 with width PulseWidth.
func InitialPulse(bins int) Distribution {
	mu := float64(bins) / 2
	pulse := make(Distribution, 2*bins)
	for i := range pulse {
		x := float64(i) - mu
		pulse[i] = math.Exp(-x * x / (2 * PulseWidth * PulseWidth))
	}
	floats.Scale(1/floats.Sum(pulse), pulse)
	return pulse
}

// RelaxIteratively starts from InitialPulse and applies tm iterations
// times, p ← p·P. For an ergodic chain Final approaches the steady state as
// iterations grows.
func RelaxIteratively(tm *TransitionMatrix, iterations int) (Relaxation, error) {
	if tm == nil || tm.p == nil {
		return Relaxation{}, fmt.Errorf("%w: nil transition matrix", ErrDimensionMismatch)
	}
	if iterations < 0 {
		return Relaxation{}, fmt.Errorf("%w: iterations must be non-negative, got %d", ErrInvalidParameter, iterations)
	}

	bins := tm.Bins
	center := float64(bins) / 2
	start := InitialPulse(bins)

	rel := Relaxation{
		Initial:      start,
		MSD:          make([]float64, 0, iterations+1),
		CenterOfMass: make([]float64, 0, iterations+1),
	}
	rel.MSD = append(rel.MSD, meanSquaredDisplacement(start, center, bins))
	rel.CenterOfMass = append(rel.CenterOfMass, centerOfMass(start))

	cur := mat.NewVecDense(len(start), append([]float64(nil), start...))
	next := mat.NewVecDense(len(start), nil)
	pt := tm.p.T()
	for k := 0; k < iterations; k++ {
		next.MulVec(pt, cur)
		cur, next = next, cur

		raw := cur.RawVector().Data
		rel.MSD = append(rel.MSD, meanSquaredDisplacement(raw, center, bins))
		rel.CenterOfMass = append(rel.CenterOfMass, centerOfMass(raw))
	}

	rel.Final = make(Distribution, cur.Len())
	copy(rel.Final, cur.RawVector().Data)
	return rel, nil
}

// ConvergenceGap is the Euclidean distance between two distributions.
func ConvergenceGap(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d states", ErrDimensionMismatch, len(a), len(b))
	}
	return floats.Distance(a, b, 2), nil
}

func meanSquaredDisplacement(p []float64, center float64, bins int) float64 {
	width := fullCycle / float64(bins)
	msd := 0.0
	for i, v := range p {
		d := (float64(i) - center) * width
		msd += v * d * d
	}
	return msd
}

func centerOfMass(p []float64) float64 {
	total := floats.Sum(p)
	if total == 0 {
		return 0
	}
	moment := 0.0
	for i, v := range p {
		moment += float64(i) * v
	}
	return moment / total
}
