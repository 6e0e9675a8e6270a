// Package optim searches grids of kinetic constants for the run that
// maximizes an objective, such as the power delivered against a load.
package optim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"runtime"
	"sync"

	"github.com/slochower/nonequilibrium-manuscript/internal/kinetics"
	"github.com/slochower/nonequilibrium-manuscript/internal/metrics"
	"github.com/slochower/nonequilibrium-manuscript/internal/sim"
	"gonum.org/v1/gonum/floats"
)

var ErrNoCandidate = errors.New("optim: no grid point could be solved")

// Objective scores one solved run. Larger is better.
type Objective func(res *sim.Result, s metrics.Summary) float64

func Power(_ *sim.Result, s metrics.Summary) float64 { return s.Power }

func Flux(_ *sim.Result, s metrics.Summary) float64 { return s.MeanIntrasurface }

var Objectives = map[string]Objective{
	"power": Power,
	"flux":  Flux,
}

// setters maps config-style names to the parameter they change.
var setters = map[string]func(*kinetics.Parameters, float64){
	"load_slope":     func(p *kinetics.Parameters, v float64) { p.LoadSlope = v },
	"substrate":      func(p *kinetics.Parameters, v float64) { p.Substrate = v },
	"catalytic_rate": func(p *kinetics.Parameters, v float64) { p.CatalyticRate = v },
	"c_intersurface": func(p *kinetics.Parameters, v float64) { p.CIntersurface = v },
	"offset_factor":  func(p *kinetics.Parameters, v float64) { p.OffsetFactor = v },
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(params), len(ranges))
	}
	for i, name := range params {
		if _, ok := setters[name]; !ok {
			return nil, fmt.Errorf("optim: unknown parameter %q", name)
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("optim: empty range for %q", name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges, workers: runtime.NumCPU()}, nil
}

// Point is one evaluated grid point.
type Point struct {
	Values  map[string]float64
	Score   float64
	Summary metrics.Summary
	Err     error
}

// Search solves every grid point and returns them in grid order along with
// the index of the best one.
func (g *GridSearch) Search(ctx context.Context, base kinetics.Parameters, unboundHist, boundHist []float64, objective Objective, logger *slog.Logger) ([]Point, int, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}
	combos := g.combinations()
	points := make([]Point, len(combos))

	parallelFor(len(combos), g.workers, func(start, end int) {
		for i := start; i < end; i++ {
			if ctx.Err() != nil {
				points[i] = Point{Values: combos[i], Err: ctx.Err()}
				continue
			}
			points[i] = g.evaluate(ctx, base, combos[i], unboundHist, boundHist, objective, logger)
		}
	})

	if err := ctx.Err(); err != nil {
		return nil, -1, err
	}

	best, bestScore := -1, math.Inf(-1)
	for i, p := range points {
		if p.Err != nil {
			logger.Debug("grid point failed", "values", p.Values, "err", p.Err)
			continue
		}
		if p.Score > bestScore {
			best, bestScore = i, p.Score
		}
	}
	if best < 0 {
		return points, -1, ErrNoCandidate
	}
	return points, best, nil
}

func (g *GridSearch) evaluate(ctx context.Context, base kinetics.Parameters, values map[string]float64, u, b []float64, objective Objective, logger *slog.Logger) Point {
	params := base
	params.Iterations = 0
	for name, v := range values {
		setters[name](&params, v)
	}

	p := Point{Values: values}
	s, err := sim.New(params, logger)
	if err != nil {
		p.Err = err
		return p
	}
	res, err := s.Run(ctx, u, b)
	if err != nil {
		p.Err = err
		return p
	}
	sum, err := metrics.Summarize(res.Flux, params.LoadSlope)
	if err != nil {
		p.Err = err
		return p
	}
	p.Summary = sum
	p.Score = objective(res, sum)
	return p
}

// combinations enumerates the grid with the last parameter varying fastest.
func (g *GridSearch) combinations() []map[string]float64 {
	var out []map[string]float64
	var walk func(depth int, current map[string]float64)
	walk = func(depth int, current map[string]float64) {
		if depth == len(g.paramNames) {
			out = append(out, current)
			return
		}
		for _, val := range g.ranges[depth] {
			next := make(map[string]float64, len(current)+1)
			for k, v := range current {
				next[k] = v
			}
			next[g.paramNames[depth]] = val
			walk(depth+1, next)
		}
	}
	walk(0, map[string]float64{})
	return out
}

// parallelFor runs fn over [0, n) split into contiguous chunks.
func parallelFor(n, workers int, fn func(start, end int)) {
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}
