package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrNonPositiveMass indicates a particle mass of zero or less.
	ErrNonPositiveMass = errors.New("dynamo: particle mass must be positive")

	// ErrDegenerateNormal indicates a plane normal that cannot be normalized.
	ErrDegenerateNormal = errors.New("dynamo: plane normal has zero length")

	// ErrInvalidTimestep indicates a non-positive or non-finite dt.
	ErrInvalidTimestep = errors.New("dynamo: timestep must be positive and finite")

	// ErrInvalidParameter indicates a NaN or Inf configuration value.
	ErrInvalidParameter = errors.New("dynamo: parameter is not finite")

	// ErrInvalidState indicates a particle with NaN or Inf position or velocity.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// ConfigError reports a configuration value rejected before a simulation starts.
type ConfigError struct {
	Field   string
	Value   any
	Wrapped error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s=%v: %v", e.Field, e.Value, e.Wrapped)
}

func (e *ConfigError) Unwrap() error {
	return e.Wrapped
}

// SimError wraps an error with the tick it occurred on.
type SimError struct {
	Step    int
	Time    float64
	Message string
	Wrapped error
}

func (e *SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

func (e *SimError) Unwrap() error {
	return e.Wrapped
}
