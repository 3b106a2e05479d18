package pes

import (
	"errors"
	"fmt"
)

// Domain errors for non-bonded evaluations.
var (
	// ErrNotReady indicates a pair potential used before its form and cutoff were set.
	ErrNotReady = errors.New("pes: pair potential not ready")

	// ErrInvalidParameter indicates a parameter outside its valid range.
	ErrInvalidParameter = errors.New("pes: invalid parameter")

	// ErrDomainViolation indicates a zero distance between two listed atoms.
	ErrDomainViolation = errors.New("pes: zero distance between distinct atoms")

	// ErrDimensionMismatch indicates buffers whose lengths disagree with the atom count.
	ErrDimensionMismatch = errors.New("pes: buffer dimension mismatch")
)

// ParameterError wraps ErrInvalidParameter with the offending name and value.
type ParameterError struct {
	Name  string
	Value float64
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s = %g", ErrInvalidParameter, e.Name, e.Value)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// InvalidParameter is a shorthand for building a *ParameterError.
func InvalidParameter(name string, value float64) error {
	return &ParameterError{Name: name, Value: value}
}

// PairError wraps ErrDomainViolation with the pair that triggered it.
type PairError struct {
	Center   int
	Other    int
	Distance float64
}

func (e *PairError) Error() string {
	return fmt.Sprintf("%s: pair (%d, %d) at d = %g", ErrDomainViolation, e.Center, e.Other, e.Distance)
}

func (e *PairError) Unwrap() error {
	return ErrDomainViolation
}
