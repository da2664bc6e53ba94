package relax

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates a configuration value outside its valid range.
	ErrInvalidConfig = errors.New("relax: invalid configuration")

	// ErrDimensionMismatch indicates increment vectors that do not match the structure.
	ErrDimensionMismatch = errors.New("relax: dimension mismatch between increments and structure")

	// ErrNotFinite indicates the relaxation produced NaN or Inf values.
	ErrNotFinite = errors.New("relax: state diverged (NaN or Inf detected)")

	// ErrNonPositiveFreeLength indicates a free-length increment that
	// shortens an element to zero or less.
	ErrNonPositiveFreeLength = errors.New("relax: free length must stay positive")
)

// StepError wraps an error with the relaxation step it happened at.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
