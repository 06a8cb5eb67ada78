// Package errs defines the error taxonomy shared by the index, catalog, planner, and HTTP layer.
//
// Every error produced by this module wraps exactly one of the four kind sentinels
// (ErrValidation, ErrNotFound, ErrDependencyUnavailable, ErrInternal), so callers can
// classify any error with errors.Is and the server can map it to a status code.
package errs

import (
	"errors"
	"fmt"
)

// Kind sentinels.
var (
	ErrValidation            = errors.New("validation error")
	ErrNotFound              = errors.New("not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrInternal              = errors.New("internal error")
)

// Validation sub-kinds.
var (
	// ErrEmptyBatch is returned when an add carries no vectors.
	ErrEmptyBatch = fmt.Errorf("%w: empty batch", ErrValidation)
	// ErrInvalidArgument is returned for out-of-range scalar arguments such as top_k <= 0.
	ErrInvalidArgument = fmt.Errorf("%w: invalid argument", ErrValidation)
	// ErrUnsupportedFormat is returned by extraction for formats it cannot read.
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported format", ErrValidation)
)

// DimensionMismatch indicates a vector or query whose length differs from the store dimension.
type DimensionMismatch struct {
	Expected int
	Actual   int
	// Position is the batch index of the offending vector, or -1 for a query vector.
	Position int
}

func (e *DimensionMismatch) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("dimension mismatch at vector %d: expected %d, got %d", e.Position, e.Expected, e.Actual)
	}
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *DimensionMismatch) Unwrap() error { return ErrValidation }

// CountMismatch indicates that a vector batch and its metadata batch differ in length.
type CountMismatch struct {
	Vectors  int
	Metadata int
}

func (e *CountMismatch) Error() string {
	return fmt.Sprintf("count mismatch: %d vectors, %d metadata items", e.Vectors, e.Metadata)
}

func (e *CountMismatch) Unwrap() error { return ErrValidation }

// InvalidArgument returns an ErrInvalidArgument with a formatted detail.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// NotFound returns an ErrNotFound with a formatted detail.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Unavailable wraps cause as ErrDependencyUnavailable.
func Unavailable(what string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrDependencyUnavailable, what)
	}
	return fmt.Errorf("%w: %s: %w", ErrDependencyUnavailable, what, cause)
}

// Internal wraps cause as ErrInternal.
func Internal(what string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrInternal, what)
	}
	return fmt.Errorf("%w: %s: %w", ErrInternal, what, cause)
}

// Kind returns the taxonomy name of err. ErrInternal takes precedence over any kind
// its cause carries. Errors outside the taxonomy are reported as InternalError.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInternal):
		return "InternalError"
	case errors.Is(err, ErrValidation):
		return "ValidationError"
	case errors.Is(err, ErrNotFound):
		return "NotFoundError"
	case errors.Is(err, ErrDependencyUnavailable):
		return "DependencyUnavailable"
	default:
		return "InternalError"
	}
}
