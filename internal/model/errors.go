package model

import (
	"errors"
	"fmt"
)

// Registration failures reported by the capacity engine. Each one is
// detected inside the transaction and causes a rollback before returning.
var (
	ErrEventNotFound     = errors.New("event not found")
	ErrEventCancelled    = errors.New("event is cancelled")
	ErrEventCompleted    = errors.New("event is completed")
	ErrEventFull         = errors.New("event is full")
	ErrAlreadyRegistered = errors.New("student already registered for this event")
	// ErrInvalidCapacity is a data integrity fault: the stored event has a
	// non-positive capacity.
	ErrInvalidCapacity = errors.New("event has an invalid capacity")
)

// ErrInvalidInput is wrapped by every request validation error.
var ErrInvalidInput = errors.New("invalid input")

// StorageError wraps an underlying transaction or connectivity failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err carries a *StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// IsRegistrationError reports whether err is one of the engine-detected
// registration failures (as opposed to a storage or input fault).
func IsRegistrationError(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrEventCancelled) ||
		errors.Is(err, ErrEventCompleted) ||
		errors.Is(err, ErrEventFull) ||
		errors.Is(err, ErrAlreadyRegistered) ||
		errors.Is(err, ErrInvalidCapacity)
}
