package metrics

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"github.com/slochower/nonequilibrium-manuscript/internal/kinetics"
)

// Agreement compares the iterative cross-check against the eigen solution.
type Agreement struct {
	Iterations      int     `json:"iterations"`
	DistributionGap float64 `json:"distribution_gap"`
	MaxFluxGap      float64 `json:"max_flux_gap"`
	// Center-of-mass displacement over the whole run, in bins.
	Drift float64 `json:"drift"`
	// Mean growth of the angular MSD per step, degree^2.
	MSDRate float64 `json:"msd_rate"`
}

func Compare(r *kinetics.Relaxation, iterFlux kinetics.FluxProfile, steady kinetics.SteadyState, flux kinetics.FluxProfile) (Agreement, error) {
	if r == nil || len(r.MSD) == 0 {
		return Agreement{}, fmt.Errorf("metrics: no relaxation series")
	}
	gap, err := kinetics.ConvergenceGap(r.Final, steady.Distribution)
	if err != nil {
		return Agreement{}, err
	}

	diffs := make([]float64, 0, 3*len(flux.Unbound))
	for _, pair := range [][2][]float64{
		{iterFlux.Unbound, flux.Unbound},
		{iterFlux.Bound, flux.Bound},
		{iterFlux.Intersurface, flux.Intersurface},
	} {
		if len(pair[0]) != len(pair[1]) {
			return Agreement{}, fmt.Errorf("%w: flux profiles differ in length", kinetics.ErrDimensionMismatch)
		}
		for i := range pair[0] {
			diffs = append(diffs, pair[0][i]-pair[1][i])
		}
	}
	maxGap, err := stats.Max(absAll(diffs))
	if err != nil {
		return Agreement{}, fmt.Errorf("metrics: flux gap: %w", err)
	}

	steps := len(r.MSD) - 1
	a := Agreement{
		Iterations:      steps,
		DistributionGap: gap,
		MaxFluxGap:      maxGap,
		Drift:           r.CenterOfMass[len(r.CenterOfMass)-1] - r.CenterOfMass[0],
	}
	if steps > 0 {
		a.MSDRate = (r.MSD[steps] - r.MSD[0]) / float64(steps)
	}
	return a, nil
}
