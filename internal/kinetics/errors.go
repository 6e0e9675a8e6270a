package kinetics

import (
	"errors"
	"fmt"
)

// Domain errors for model construction and solution.
var (
	// ErrInvalidHistogram indicates a population histogram that cannot be
	// turned into a finite energy profile.
	ErrInvalidHistogram = errors.New("kinetics: invalid population histogram")

	// ErrInvalidParameter indicates a physical parameter outside its valid range.
	ErrInvalidParameter = errors.New("kinetics: parameter out of valid bounds")

	// ErrDimensionMismatch indicates arrays whose lengths do not agree.
	ErrDimensionMismatch = errors.New("kinetics: dimension mismatch")

	// ErrZeroRates indicates a rate matrix with no outgoing transitions at all.
	ErrZeroRates = errors.New("kinetics: rate matrix has no non-zero rates")

	// ErrSuperStochastic indicates a row whose scaled off-diagonal sum exceeds 1.
	// It is reported alongside the matrix, not returned as a failure.
	ErrSuperStochastic = errors.New("kinetics: transition matrix row sum exceeds 1")

	// ErrNoConvergence indicates the eigen-decomposition failed.
	ErrNoConvergence = errors.New("kinetics: eigen-decomposition did not converge")
)

// RowError locates a numerical problem in a specific matrix row.
type RowError struct {
	Row     int
	Value   float64
	Wrapped error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s (row %d: %.6g)", e.Wrapped.Error(), e.Row, e.Value)
}

func (e *RowError) Unwrap() error {
	return e.Wrapped
}
