package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested slot holds no data.
	ErrNotFound = errors.New("persistence: not found")
	// ErrUnavailable is returned when the backing store cannot be reached.
	ErrUnavailable = errors.New("persistence: unavailable")
	// ErrCorrupt is returned when stored data cannot be decoded.
	ErrCorrupt = errors.New("persistence: corrupt payload")
	// ErrConflict is returned when a slot changed between read and write.
	ErrConflict = errors.New("persistence: slot modified concurrently")
	// ErrSkipWrite is returned by a Mutation that leaves the slot untouched.
	ErrSkipWrite = errors.New("persistence: nothing to write")
)
