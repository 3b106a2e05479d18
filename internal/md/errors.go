package md

import (
	"errors"
	"fmt"
)

var (
	// ErrUnstable indicates a non-finite energy or coordinate.
	ErrUnstable = errors.New("md: simulation unstable (NaN or Inf detected)")

	// ErrParameterBounds indicates a run parameter outside its valid range.
	ErrParameterBounds = errors.New("md: parameter out of valid bounds")
)

// StepError wraps an error with the step at which it happened.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("md: step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
