package hub75

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned by any operation other than Open and
// Close when the Dev is not open (a zero Dev, or one already closed).
var ErrNotInitialized = errors.New("hub75: not initialized")

// ErrInvalidArgument is returned for bad geometry or a framebuffer whose
// size does not match the configured mode and dimensions.
var ErrInvalidArgument = errors.New("hub75: invalid argument")

// ErrOutOfMemory is returned when stream or descriptor allocation fails.
var ErrOutOfMemory = errors.New("hub75: out of memory")

// DriverError wraps a non-nil error returned by the Collaborator during
// Op. Unwrap returns the original error unchanged, per spec: "the core
// propagates it unchanged."
type DriverError struct {
	Op  string
	Err error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("hub75: driver error during %s: %v", e.Op, e.Err)
}

func (e *DriverError) Unwrap() error {
	return e.Err
}
