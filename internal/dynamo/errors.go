package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidMass indicates a particle created with non-positive mass.
	ErrInvalidMass = errors.New("dynamo: particle mass must be positive")

	// ErrInvalidRadius indicates inconsistent particle radii.
	ErrInvalidRadius = errors.New("dynamo: invalid particle radius")

	// ErrInvalidState indicates a NaN or Inf in particle or tool state.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrUnstable indicates the simulation became numerically unstable.
	ErrUnstable = errors.New("dynamo: simulation unstable (state diverged)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
