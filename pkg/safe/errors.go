package safe

import "errors"

var (
	// ErrFull indicates no space is left and nothing was accepted.
	ErrFull = errors.New("full")
	// ErrEmpty indicates there is nothing to take.
	ErrEmpty = errors.New("empty")
	// ErrTimeout indicates a blocking operation expired with no state change.
	ErrTimeout = errors.New("timeout")
	// ErrInvalid indicates a rejected argument. No state was touched.
	ErrInvalid = errors.New("invalid argument")
)
