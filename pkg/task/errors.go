package task

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced task or category does not exist
// or is not owned by the caller.
var ErrNotFound = errors.New("not found")

// ValidationError rejects a mutation before it reaches the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PermissionError rejects an illegal status transition or an unauthorized
// deletion. It names the blocking rule so callers can surface it as a
// user-facing message.
type PermissionError struct {
	Rule string
}

func (e *PermissionError) Error() string {
	return e.Rule
}

// ConflictError rejects a mutation that would violate a uniqueness rule,
// such as a duplicate category name.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// TransientError wraps a network or storage failure that is safe to retry.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a retryable I/O failure.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsPermission reports whether err is a permission rejection.
func IsPermission(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}
