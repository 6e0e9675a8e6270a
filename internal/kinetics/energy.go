package kinetics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// SmoothingSigma is the Gaussian kernel width, in bins, applied to raw histograms.
	SmoothingSigma = 1.0
	// kernel radius in units of sigma
	smoothingTruncate = 4.0
)

// GaussianSmooth convolves data with a normalized Gaussian kernel of width
// sigma bins. Samples past either edge are mirrored about the edge
// (d c b a | a b c d | d c b a).
func GaussianSmooth(data []float64, sigma float64) []float64 {
	n := len(data)
	out := make([]float64, n)
	if n == 0 || sigma <= 0 {
		copy(out, data)
		return out
	}

	radius := int(smoothingTruncate*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)
	for k := -radius; k <= radius; k++ {
		kernel[k+radius] = math.Exp(-0.5 * float64(k*k) / (sigma * sigma))
	}
	floats.Scale(1/floats.Sum(kernel), kernel)

	for i := range out {
		acc := 0.0
		for k := -radius; k <= radius; k++ {
			acc += kernel[k+radius] * data[reflect(i+k, n)]
		}
		out[i] = acc
	}
	return out
}

func reflect(i, n int) int {
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}

// DeriveEnergy turns a population histogram into a free-energy profile.
//
// The histogram is smoothed, bins that are still exactly zero take the
// smallest non-zero smoothed value, and the result is normalized and mapped
// through E = -kT ln p.
func DeriveEnergy(histogram []float64, kT float64) (EnergyProfile, error) {
	if !(kT > 0) {
		return nil, fmt.Errorf("%w: kT must be positive, got %g", ErrInvalidParameter, kT)
	}
	if len(histogram) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 bins, got %d", ErrInvalidHistogram, len(histogram))
	}
	for i, v := range histogram {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: bin %d has population %g", ErrInvalidHistogram, i, v)
		}
	}

	smooth := GaussianSmooth(histogram, SmoothingSigma)

	floor := math.Inf(1)
	for _, v := range smooth {
		if v != 0 && v < floor {
			floor = v
		}
	}
	for i, v := range smooth {
		if v == 0 {
			if math.IsInf(floor, 1) {
				return nil, fmt.Errorf("%w: bin %d is empty after smoothing", ErrInvalidHistogram, i)
			}
			smooth[i] = floor
		}
	}

	floats.Scale(1/floats.Sum(smooth), smooth)

	energy := make(EnergyProfile, len(smooth))
	for i, p := range smooth {
		energy[i] = -kT * math.Log(p)
	}
	return energy, nil
}

// BoltzmannDistribution returns the normalized equilibrium density exp(-E/kT)
// of a single surface.
func BoltzmannDistribution(p EnergyProfile, kT float64) []float64 {
	out := make([]float64, len(p))
	if len(p) == 0 {
		return out
	}
	// shifting by the minimum keeps exp() in range for deep wells
	lo := floats.Min(p)
	for i, e := range p {
		out[i] = math.Exp(-(e - lo) / kT)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}
