package texturize

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by texturize packages matches exactly one
// of these with errors.Is.
var (
	// ErrPrecondition is returned when an operation is called with arguments
	// or state it cannot accept. These are permanent logic errors.
	ErrPrecondition = errors.New("precondition violation")

	// ErrResourceUnavailable is returned when an external resource (an edge
	// model, an image file, a codec) is missing or unreadable. Callers may
	// retry these; see IsTransient.
	ErrResourceUnavailable = errors.New("resource unavailable")

	// ErrNumericDegenerate is returned when the input defeats the numeric
	// method, e.g. a PCA over constant descriptors.
	ErrNumericDegenerate = errors.New("numeric degenerate")
)

// Precondition violations.
var (
	// ErrInvalidDimensions is returned when width, height or channel count is non-positive.
	ErrInvalidDimensions = fmt.Errorf("%w: invalid dimensions", ErrPrecondition)

	// ErrOutOfRange is returned when texel coordinates are outside [0,W)×[0,H).
	ErrOutOfRange = fmt.Errorf("%w: coordinates out of range", ErrPrecondition)

	// ErrChannelCount is returned when a sample has the wrong number of channels.
	ErrChannelCount = fmt.Errorf("%w: unexpected channel count", ErrPrecondition)

	// ErrChannelRange is returned when a channel range exceeds the available channels.
	ErrChannelRange = fmt.Errorf("%w: channel range out of bounds", ErrPrecondition)

	// ErrSizeMismatch is returned when samples that must agree in size do not.
	ErrSizeMismatch = fmt.Errorf("%w: sample sizes differ", ErrPrecondition)

	// ErrNeighborhoodSize is returned when a neighborhood size is not a positive odd number.
	ErrNeighborhoodSize = fmt.Errorf("%w: neighborhood size must be positive and odd", ErrPrecondition)

	// ErrDataTooSmall is returned when a raw buffer is smaller than W*H*C.
	ErrDataTooSmall = fmt.Errorf("%w: data buffer too small", ErrPrecondition)

	// ErrNilSample is returned when a required sample is nil.
	ErrNilSample = fmt.Errorf("%w: nil sample", ErrPrecondition)
)

// OpError records the operation or pipeline stage that failed.
type OpError struct {
	Op  string
	Err error
}

// Error joins the operations of directly nested OpErrors into one chain,
// e.g. "texturize: search.Query: search.Project: ...".
func (e *OpError) Error() string {
	var b strings.Builder
	b.WriteString("texturize: ")
	var err error = e
	for {
		op, ok := err.(*OpError)
		if !ok {
			break
		}
		b.WriteString(op.Op)
		b.WriteString(": ")
		err = op.Err
	}
	b.WriteString(err.Error())
	return b.String()
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// WrapOp wraps err with the name of the failing operation.
// Returns nil if err is nil.
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}

// IsTransient reports whether err stems from an unavailable resource rather
// than a logic error, so the caller may decide to retry.
func IsTransient(err error) bool {
	return errors.Is(err, ErrResourceUnavailable)
}

// ConfigError represents a configuration validation error.
// It matches ErrPrecondition with errors.Is.
type ConfigError struct {
	Pkg    string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Pkg + ": invalid config." + e.Field + ": " + e.Reason
}

func (e *ConfigError) Unwrap() error {
	return ErrPrecondition
}
