package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration matches every *InvalidConfigurationError.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrObjectiveEvaluation matches every *ObjectiveEvaluationError.
	ErrObjectiveEvaluation = errors.New("objective evaluation failed")
	// ErrEngineUsed is returned when Run or Initialize is called on an engine
	// that has already left the initial state.
	ErrEngineUsed = errors.New("engine already initialized")
)

// InvalidConfigurationError reports a parameter rejected before any
// generation runs.
type InvalidConfigurationError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

func (e *InvalidConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// ObjectiveEvaluationError wraps an error returned by the objective function.
// Generation 0 means the failure happened during initialization.
type ObjectiveEvaluationError struct {
	Generation int
	Particle   int
	Err        error
}

func (e *ObjectiveEvaluationError) Error() string {
	return fmt.Sprintf("objective evaluation failed at generation %d, particle %d: %v", e.Generation, e.Particle, e.Err)
}

func (e *ObjectiveEvaluationError) Unwrap() error {
	return e.Err
}

func (e *ObjectiveEvaluationError) Is(target error) bool {
	return target == ErrObjectiveEvaluation
}
