package sim

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/slochower/nonequilibrium-manuscript/internal/kinetics"
)

// Simulation threads one run through the kinetic pipeline. Each stage method
// requires the previous stage to have completed; re-running an earlier stage
// discards everything downstream of it.
type Simulation struct {
	params kinetics.Parameters
	logger *slog.Logger
	stage  Stage

	unbound, bound kinetics.EnergyProfile
	uRates, bRates kinetics.RateMatrix
	ub, bu         []float64
	tm             *kinetics.TransitionMatrix
	steady         kinetics.SteadyState
	flux           kinetics.FluxProfile
	relax          *kinetics.Relaxation
	relaxFlux      *kinetics.FluxProfile
	warnings       []error
}

func New(params kinetics.Parameters, logger *slog.Logger) (*Simulation, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}
	return &Simulation{params: params, logger: logger}, nil
}

func (s *Simulation) Stage() Stage { return s.stage }

func (s *Simulation) Params() kinetics.Parameters { return s.params }

func (s *Simulation) require(stage, want Stage) error {
	if s.stage < want {
		return &StageError{Stage: stage, Wrapped: fmt.Errorf("%w: need %s, at %s", ErrStageOrder, want, s.stage)}
	}
	return nil
}

func (s *Simulation) advance(stage Stage) {
	s.logger.Debug("stage complete", "stage", stage.String())
	s.stage = stage
}

// DeriveEnergies converts both histograms to energy profiles and subtracts
// the offset factor from the bound surface.
func (s *Simulation) DeriveEnergies(unboundHist, boundHist []float64) error {
	if len(unboundHist) != len(boundHist) {
		return &StageError{Stage: StageEnergiesDerived, Wrapped: fmt.Errorf("%w: unbound has %d bins, bound has %d",
			kinetics.ErrDimensionMismatch, len(unboundHist), len(boundHist))}
	}
	u, err := kinetics.DeriveEnergy(unboundHist, s.params.KT)
	if err != nil {
		return &StageError{Stage: StageEnergiesDerived, Wrapped: fmt.Errorf("unbound: %w", err)}
	}
	b, err := kinetics.DeriveEnergy(boundHist, s.params.KT)
	if err != nil {
		return &StageError{Stage: StageEnergiesDerived, Wrapped: fmt.Errorf("bound: %w", err)}
	}
	s.reset()
	s.unbound, s.bound = u, b.Shift(s.params.OffsetFactor)
	s.advance(StageEnergiesDerived)
	return nil
}

// SetEnergies installs precomputed energy profiles. No offset is applied.
func (s *Simulation) SetEnergies(unbound, bound kinetics.EnergyProfile) error {
	if len(unbound) != len(bound) {
		return &StageError{Stage: StageEnergiesDerived, Wrapped: fmt.Errorf("%w: unbound has %d bins, bound has %d",
			kinetics.ErrDimensionMismatch, len(unbound), len(bound))}
	}
	if len(unbound) < 2 {
		return &StageError{Stage: StageEnergiesDerived, Wrapped: fmt.Errorf("%w: need at least 2 bins", kinetics.ErrInvalidHistogram)}
	}
	s.reset()
	s.unbound, s.bound = unbound.Clone(), bound.Clone()
	s.advance(StageEnergiesDerived)
	return nil
}

func (s *Simulation) reset() {
	s.uRates, s.bRates = kinetics.RateMatrix{}, kinetics.RateMatrix{}
	s.ub, s.bu = nil, nil
	s.tm = nil
	s.steady = kinetics.SteadyState{}
	s.flux = kinetics.FluxProfile{}
	s.relax, s.relaxFlux = nil, nil
	s.warnings = nil
}

// BuildRates builds the intrasurface matrices of both surfaces and the
// intersurface rate vectors.
func (s *Simulation) BuildRates() error {
	if err := s.require(StageRatesBuilt, StageEnergiesDerived); err != nil {
		return err
	}
	bins := s.unbound.Bins()
	c := kinetics.IntrasurfacePrefactor(s.params.D, bins)

	var load kinetics.LoadFunc
	if s.params.LoadSlope != 0 {
		load = kinetics.LinearLoad(s.params.LoadSlope, bins)
	}

	u, err := kinetics.IntrasurfaceRates(s.unbound, c, s.params.KT, load)
	if err != nil {
		return &StageError{Stage: StageRatesBuilt, Wrapped: err}
	}
	b, err := kinetics.IntrasurfaceRates(s.bound, c, s.params.KT, load)
	if err != nil {
		return &StageError{Stage: StageRatesBuilt, Wrapped: err}
	}
	ub, bu, err := kinetics.IntersurfaceRates(s.unbound, s.bound, s.params.Coupling())
	if err != nil {
		return &StageError{Stage: StageRatesBuilt, Wrapped: err}
	}

	s.uRates, s.bRates, s.ub, s.bu = u, b, ub, bu
	s.tm = nil
	s.advance(StageRatesBuilt)
	return nil
}

func (s *Simulation) AssembleTransitionMatrix() error {
	if err := s.require(StageTransitionMatrixReady, StageRatesBuilt); err != nil {
		return err
	}
	tm, err := kinetics.AssembleTransitionMatrix(s.uRates, s.bRates, s.ub, s.bu)
	if err != nil {
		return &StageError{Stage: StageTransitionMatrixReady, Wrapped: err}
	}
	if tm.Warning != nil {
		if s.params.StrictMatrices {
			return &StageError{Stage: StageTransitionMatrixReady, Wrapped: tm.Warning}
		}
		s.logger.Warn("transition matrix is not a valid stochastic matrix", "err", tm.Warning)
		s.warnings = append(s.warnings, tm.Warning)
	}
	s.logger.Debug("transition matrix", "states", tm.States(), "dt", tm.Dt)
	s.tm = tm
	s.advance(StageTransitionMatrixReady)
	return nil
}

func (s *Simulation) SolveSteadyState() error {
	if err := s.require(StageSteadyStateComputed, StageTransitionMatrixReady); err != nil {
		return err
	}
	ss, err := kinetics.SolveSteadyState(s.tm)
	if err != nil {
		return &StageError{Stage: StageSteadyStateComputed, Wrapped: err}
	}
	if ss.ImagResidue > kinetics.ImagTolerance {
		s.logger.Warn("dominant eigenvector has an imaginary part", "residue", ss.ImagResidue)
	}
	s.steady = ss
	s.advance(StageSteadyStateComputed)
	return nil
}

func (s *Simulation) ComputeFlux() error {
	if err := s.require(StageFluxComputed, StageSteadyStateComputed); err != nil {
		return err
	}
	flux, err := kinetics.ComputeFlux(s.steady.Distribution, s.tm)
	if err != nil {
		return &StageError{Stage: StageFluxComputed, Wrapped: err}
	}
	s.flux = flux
	s.advance(StageFluxComputed)
	return nil
}

// Relax runs the power iteration from a localized pulse and recomputes the
// fluxes from its terminal distribution.
func (s *Simulation) Relax(iterations int) error {
	if err := s.require(StageIterativeValidated, StageFluxComputed); err != nil {
		return err
	}
	s.logger.Debug("running iterative method", "iterations", iterations)
	r, err := kinetics.RelaxIteratively(s.tm, iterations)
	if err != nil {
		return &StageError{Stage: StageIterativeValidated, Wrapped: err}
	}
	flux, err := kinetics.ComputeFlux(r.Final, s.tm)
	if err != nil {
		return &StageError{Stage: StageIterativeValidated, Wrapped: err}
	}
	if gap, err := kinetics.ConvergenceGap(r.Final, s.steady.Distribution); err == nil {
		s.logger.Debug("iterative distribution", "gap", gap)
	}
	s.relax, s.relaxFlux = &r, &flux
	s.advance(StageIterativeValidated)
	return nil
}

// Result snapshots the outputs produced so far. It fails unless the fluxes
// have been computed.
func (s *Simulation) Result() (*Result, error) {
	if err := s.require(StageFluxComputed, StageFluxComputed); err != nil {
		return nil, err
	}
	return &Result{
		Params:           s.params,
		Bins:             s.unbound.Bins(),
		Unbound:          s.unbound,
		Bound:            s.bound,
		UnboundBoltzmann: kinetics.BoltzmannDistribution(s.unbound, s.params.KT),
		BoundBoltzmann:   kinetics.BoltzmannDistribution(s.bound, s.params.KT),
		Dt:               s.tm.Dt,
		SteadyState:      s.steady,
		Flux:             s.flux,
		Relaxation:       s.relax,
		IterativeFlux:    s.relaxFlux,
		Warnings:         append([]error(nil), s.warnings...),
	}, nil
}

// Run performs the whole pipeline on two population histograms.
func (s *Simulation) Run(ctx context.Context, unboundHist, boundHist []float64) (*Result, error) {
	if err := s.DeriveEnergies(unboundHist, boundHist); err != nil {
		return nil, err
	}
	return s.finish(ctx)
}

// RunWithEnergies performs the pipeline on precomputed energy profiles.
func (s *Simulation) RunWithEnergies(ctx context.Context, unbound, bound kinetics.EnergyProfile) (*Result, error) {
	if err := s.SetEnergies(unbound, bound); err != nil {
		return nil, err
	}
	return s.finish(ctx)
}

func (s *Simulation) finish(ctx context.Context) (*Result, error) {
	steps := []func() error{
		s.BuildRates,
		s.AssembleTransitionMatrix,
		s.SolveSteadyState,
		s.ComputeFlux,
	}
	if s.params.Iterations > 0 {
		steps = append(steps, func() error { return s.Relax(s.params.Iterations) })
	}
	for _, step := range steps {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if err := step(); err != nil {
			return nil, err
		}
	}
	return s.Result()
}
