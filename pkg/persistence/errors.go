// Package persistence provides standardized error types for storage operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowTypeNotFound indicates a workflow type was not found.
	ErrWorkflowTypeNotFound = errors.New("workflow type not found")

	// ErrStatusNotFound indicates a workflow status was not found.
	ErrStatusNotFound = errors.New("workflow status not found")

	// ErrTransitionNotFound indicates a workflow transition was not found.
	ErrTransitionNotFound = errors.New("workflow transition not found")

	// ErrVersionNotFound indicates a workflow version snapshot was not found.
	ErrVersionNotFound = errors.New("workflow version not found")

	// ErrTicketNotFound indicates a ticket was not found.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrUserNotFound indicates a user was not found.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateTypeName indicates a workflow type with the same name exists.
	ErrDuplicateTypeName = errors.New("workflow type name already exists")

	// ErrDuplicateStatusName indicates a status name collision within one type.
	ErrDuplicateStatusName = errors.New("status name already exists for this workflow type")

	// ErrDuplicateInitialStatus indicates a second initial status for one type.
	ErrDuplicateInitialStatus = errors.New("workflow type already has an initial status")

	// ErrStatusTypeMismatch indicates a transition endpoint outside its type.
	ErrStatusTypeMismatch = errors.New("transition endpoints must belong to the transition's workflow type")
)

// StoreError wraps storage errors with operation context.
type StoreError struct {
	Op     string // Operation being performed (e.g. "SaveStatus", "TicketForTransition")
	Entity string // Entity identifier if applicable
	Err    error  // Underlying error
}

func (e *StoreError) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("%s failed for %s: %v", e.Op, e.Entity, e.Err)
	}

	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewStoreError creates a new store error with context.
func NewStoreError(op, entity string, err error) *StoreError {
	return &StoreError{Op: op, Entity: entity, Err: err}
}

// IsNotFound checks whether an error is any of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowTypeNotFound) ||
		errors.Is(err, ErrStatusNotFound) ||
		errors.Is(err, ErrTransitionNotFound) ||
		errors.Is(err, ErrVersionNotFound) ||
		errors.Is(err, ErrTicketNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsConstraintViolation checks whether an error reflects a definition
// invariant violation.
func IsConstraintViolation(err error) bool {
	return errors.Is(err, ErrDuplicateTypeName) ||
		errors.Is(err, ErrDuplicateStatusName) ||
		errors.Is(err, ErrDuplicateInitialStatus) ||
		errors.Is(err, ErrStatusTypeMismatch)
}
