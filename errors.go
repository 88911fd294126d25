package dataprocessing

import "errors"

var (
	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("dataprocessing: invalid configuration")

	// ErrEmptyRoster is returned when the input roster has no usable rows.
	ErrEmptyRoster = errors.New("dataprocessing: roster has no usable rows")

	// ErrValidationFailed is returned when the final entity set has schema
	// errors.
	ErrValidationFailed = errors.New("dataprocessing: validation failed")
)
