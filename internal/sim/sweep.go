package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/slochower/nonequilibrium-manuscript/internal/kinetics"
	"gonum.org/v1/gonum/floats"
)

// SweepPoint is one run of a concentration sweep.
type SweepPoint struct {
	Substrate float64
	Result    *Result
}

// Concentrations returns n substrate concentrations spaced evenly in log10
// between from and to.
func Concentrations(from, to float64, n int) ([]float64, error) {
	if !(from > 0) || !(to > 0) {
		return nil, fmt.Errorf("%w: concentrations must be positive", kinetics.ErrInvalidParameter)
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: need at least one point", kinetics.ErrInvalidParameter)
	}
	if n == 1 {
		return []float64{from}, nil
	}
	return floats.LogSpan(make([]float64, n), from, to), nil
}

// Sweep runs one independent simulation per substrate concentration in
// parallel. Each run owns its parameters and histograms.
func Sweep(ctx context.Context, base kinetics.Parameters, unboundHist, boundHist []float64, substrates []float64, logger *slog.Logger) ([]SweepPoint, error) {
	points := make([]SweepPoint, len(substrates))
	errs := make([]error, len(substrates))

	var wg sync.WaitGroup
	for i, c := range substrates {
		wg.Add(1)
		go func(idx int, substrate float64) {
			defer wg.Done()

			params := base
			params.Substrate = substrate

			s, err := New(params, logger)
			if err != nil {
				errs[idx] = err
				return
			}
			u := append([]float64(nil), unboundHist...)
			b := append([]float64(nil), boundHist...)
			res, err := s.Run(ctx, u, b)
			if err != nil {
				errs[idx] = fmt.Errorf("substrate %g: %w", substrate, err)
				return
			}
			points[idx] = SweepPoint{Substrate: substrate, Result: res}
		}(i, c)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return points, nil
}

// Log10 returns the base-10 logarithm of each concentration for plotting.
func Log10(substrates []float64) []float64 {
	out := make([]float64, len(substrates))
	for i, c := range substrates {
		out[i] = math.Log10(c)
	}
	return out
}
