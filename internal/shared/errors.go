package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation wraps input validation failures.
	ErrValidation = errors.New("validation failed")
)
