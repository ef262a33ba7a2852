package linalg

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrShapeMismatch        = errors.New("shape mismatch")
	ErrNumericalInstability = errors.New("numerical instability")
)

// ConfigError provides detailed information about a rejected setting.
type ConfigError struct {
	Field   string // Setting name (e.g., "rate", "activation")
	Value   any    // Offending value
	Details string // What was expected
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s=%v: %s", ErrInvalidConfiguration, e.Field, e.Value, e.Details)
	}
	return fmt.Sprintf("%s: %s=%v", ErrInvalidConfiguration, e.Field, e.Value)
}

// Unwrap allows errors.Is(err, ErrInvalidConfiguration).
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}

// ShapeError reports a matrix whose dimensions do not fit an operation.
type ShapeError struct {
	Op   string // Operation that rejected the input (e.g., "Dense.Forward")
	Want Shape
	Got  Shape
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s: want %v, got %v", e.Op, ErrShapeMismatch, e.Want, e.Got)
}

// Unwrap allows errors.Is(err, ErrShapeMismatch).
func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}

// Invalid is shorthand for building a *ConfigError.
func Invalid(field string, value any, details string) error {
	return &ConfigError{Field: field, Value: value, Details: details}
}
