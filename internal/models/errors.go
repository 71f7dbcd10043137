package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine's taxonomy. ValidationError blocks the
// operation and is user-correctable; PersistenceError aborts the operation
// with local state unchanged; ErrNotFound marks a benign race with another
// admin session and is never fatal.
var (
	ErrValidation  = errors.New("validation error")
	ErrPersistence = errors.New("persistence error")
	ErrNotFound    = errors.New("booking not found")
)

// ValidationError wraps ErrValidation with a field-level message.
func ValidationError(field, msg string) error {
	return fmt.Errorf("%w: %s: %s", ErrValidation, field, msg)
}

// PersistenceError wraps a store failure.
func PersistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}
