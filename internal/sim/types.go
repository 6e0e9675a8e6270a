package sim

import (
	"errors"
	"fmt"

	"github.com/slochower/nonequilibrium-manuscript/internal/kinetics"
)

// Stage is the pipeline position of a Simulation.
type Stage int

const (
	StageUnconfigured Stage = iota
	StageEnergiesDerived
	StageRatesBuilt
	StageTransitionMatrixReady
	StageSteadyStateComputed
	StageFluxComputed
	StageIterativeValidated
)

var stageNames = [...]string{
	"unconfigured",
	"energies-derived",
	"rates-built",
	"transition-matrix-ready",
	"steady-state-computed",
	"flux-computed",
	"iterative-validated",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// ErrStageOrder is returned when a stage is invoked before its inputs exist.
var ErrStageOrder = errors.New("sim: stage invoked out of order")

// StageError wraps a failure with the stage that produced it.
type StageError struct {
	Stage   Stage
	Wrapped error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("sim: %s: %v", e.Stage, e.Wrapped)
}

func (e *StageError) Unwrap() error {
	return e.Wrapped
}

// Result collects the outputs of a completed run.
type Result struct {
	Params kinetics.Parameters
	Bins   int

	Unbound kinetics.EnergyProfile
	Bound   kinetics.EnergyProfile

	// Equilibrium populations of each surface taken on its own.
	UnboundBoltzmann []float64
	BoundBoltzmann   []float64

	Dt          float64
	SteadyState kinetics.SteadyState
	Flux        kinetics.FluxProfile

	// Set only when Params.Iterations > 0.
	Relaxation    *kinetics.Relaxation
	IterativeFlux *kinetics.FluxProfile

	Warnings []error
}
