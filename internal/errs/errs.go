// Package errs defines the error kinds shared across the modelling packages.
// Each kind reflects a caller-supplied configuration or data defect; none is
// retryable. Callers test kinds with errors.Is.
package errs

import (
	"errors"

	"github.com/rotisserie/eris"
)

var (
	// ErrSchema marks a malformed or mismatched column or layer name.
	ErrSchema = errors.New("schema error")

	// ErrFit marks degenerate or non-finite input to a model fit or predict.
	ErrFit = errors.New("fit error")

	// ErrResampling marks an invalid fold configuration, reported before any
	// fold executes.
	ErrResampling = errors.New("resampling error")
)

// Schemaf returns a schema error with the identifying detail attached.
func Schemaf(format string, args ...any) error {
	return eris.Wrapf(ErrSchema, format, args...)
}

// Fitf returns a fit error with the identifying detail attached.
func Fitf(format string, args ...any) error {
	return eris.Wrapf(ErrFit, format, args...)
}

// Resamplingf returns a resampling error with the identifying detail attached.
func Resamplingf(format string, args ...any) error {
	return eris.Wrapf(ErrResampling, format, args...)
}
