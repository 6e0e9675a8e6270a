// Package metrics reduces flux profiles and relaxation series to the scalar
// figures shown in reports.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/slochower/nonequilibrium-manuscript/internal/kinetics"
)

var ErrNoFlux = errors.New("metrics: empty flux profile")

// Summary holds the headline flux figures of one run. Fluxes are in cycles
// per second.
type Summary struct {
	MeanIntrasurface   float64 `json:"mean_intrasurface"`
	StdDevIntrasurface float64 `json:"stddev_intrasurface"`
	PeakIntrasurface   float64 `json:"peak_intrasurface"`
	MeanIntersurface   float64 `json:"mean_intersurface"`
	LoadSlope          float64 `json:"load_slope,omitempty"` // kcal/mol per cycle
	Power              float64 `json:"power,omitempty"`      // kcal/mol/s
}

func Summarize(flux kinetics.FluxProfile, loadSlope float64) (Summary, error) {
	intra := flux.Intrasurface()
	if len(intra) == 0 || len(flux.Intersurface) == 0 {
		return Summary{}, ErrNoFlux
	}

	mean, err := stats.Mean(intra)
	if err != nil {
		return Summary{}, fmt.Errorf("metrics: mean intrasurface: %w", err)
	}
	sd, err := stats.StandardDeviation(intra)
	if err != nil {
		return Summary{}, fmt.Errorf("metrics: intrasurface spread: %w", err)
	}
	peak, err := stats.Max(absAll(flux.Unbound, flux.Bound))
	if err != nil {
		return Summary{}, fmt.Errorf("metrics: peak intrasurface: %w", err)
	}
	inter, err := stats.Mean(flux.Intersurface)
	if err != nil {
		return Summary{}, fmt.Errorf("metrics: mean intersurface: %w", err)
	}

	s := Summary{
		MeanIntrasurface:   mean,
		StdDevIntrasurface: sd,
		PeakIntrasurface:   peak,
		MeanIntersurface:   inter,
	}
	if loadSlope != 0 {
		s.LoadSlope = loadSlope
		s.Power = loadSlope * mean
	}
	return s, nil
}

func absAll(series ...[]float64) []float64 {
	var out []float64
	for _, s := range series {
		for _, v := range s {
			out = append(out, math.Abs(v))
		}
	}
	return out
}
