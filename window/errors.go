package window

import (
	"errors"
	"fmt"
)

var (
	// ErrCreationFailed matches a CreationError whose native call was
	// rejected.
	ErrCreationFailed = errors.New("window creation failed")
	// ErrThreadSpawnFailed matches a CreationError whose pump goroutine
	// died before reporting.
	ErrThreadSpawnFailed = errors.New("pump thread failed to start")
	// ErrChannelDisconnected is reported by Err when the message stream
	// ended without a Destroyed message.
	ErrChannelDisconnected = errors.New("message channel disconnected")
	// ErrInvalidHandle is returned by control calls once destruction has
	// been committed.
	ErrInvalidHandle = errors.New("invalid window handle")
)

// CreationErrorKind classifies a CreationError.
type CreationErrorKind int

const (
	CreationFailed CreationErrorKind = iota
	ThreadSpawnFailed
)

func (k CreationErrorKind) String() string {
	switch k {
	case CreationFailed:
		return "CreationFailed"
	case ThreadSpawnFailed:
		return "ThreadSpawnFailed"
	default:
		return fmt.Sprintf("CreationErrorKind(%d)", int(k))
	}
}

// CreationError is returned by New when no window could be produced.
// Code carries the native error code for CreationFailed, 0 when the
// subsystem reported none.
type CreationError struct {
	Kind CreationErrorKind
	Code int
	Err  error
}

func (e *CreationError) Error() string {
	var sentinel error = ErrCreationFailed
	if e.Kind == ThreadSpawnFailed {
		sentinel = ErrThreadSpawnFailed
	}
	if e.Code != 0 {
		return fmt.Sprintf("%v (code %d): %v", sentinel, e.Code, e.Err)
	}
	return fmt.Sprintf("%v: %v", sentinel, e.Err)
}

func (e *CreationError) Unwrap() error { return e.Err }

// Is matches ErrCreationFailed or ErrThreadSpawnFailed by kind.
func (e *CreationError) Is(target error) bool {
	switch target {
	case ErrCreationFailed:
		return e.Kind == CreationFailed
	case ErrThreadSpawnFailed:
		return e.Kind == ThreadSpawnFailed
	}
	return false
}
