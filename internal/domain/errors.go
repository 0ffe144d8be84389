package domain

import "errors"

// Sentinel errors for the preprocessing pipeline. Callers wrap these with
// context and test with errors.Is.
var (
	// ErrMissingInput marks a required source file that does not exist.
	ErrMissingInput = errors.New("missing input")

	// ErrInsufficientHistory marks a symbol with fewer than two price rows.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrNonNumericClose marks a symbol whose last or previous close cannot
	// be parsed as a number.
	ErrNonNumericClose = errors.New("non-numeric close")

	// ErrDegenerateArithmetic marks a symbol whose previous close is zero.
	ErrDegenerateArithmetic = errors.New("previous close is zero")

	// ErrDataUnavailable marks an artifact that could not be fetched or read.
	ErrDataUnavailable = errors.New("data unavailable")
)
