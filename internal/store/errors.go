package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrProgressNotFound, ErrAnalysisNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an upsert or merge operation fails,
	// for example because the write violates constraints.
	ErrUpdateFailed = errors.New("update failed")

	// ErrDuplicate is returned when a write would violate a uniqueness
	// constraint.
	ErrDuplicate = errors.New("duplicate entity")

	// Entity-specific "not found" errors

	// ErrProgressNotFound indicates that no progress record exists for the
	// requested user and language.
	ErrProgressNotFound = fmt.Errorf("%w: user progress", ErrNotFound)

	// ErrAnalysisNotFound indicates that no analysis is stored under the
	// requested session ID.
	ErrAnalysisNotFound = fmt.Errorf("%w: session analysis", ErrNotFound)

	// ErrEmbeddingNotFound indicates that no embedding is stored under the
	// requested session ID.
	ErrEmbeddingNotFound = fmt.Errorf("%w: session embedding", ErrNotFound)

	// ErrCurriculumNotFound indicates that no curriculum is registered for
	// the requested language code.
	ErrCurriculumNotFound = fmt.Errorf("%w: curriculum", ErrNotFound)

	// ErrLessonNotFound indicates that the curriculum has no lesson with
	// the requested ID.
	ErrLessonNotFound = fmt.Errorf("%w: lesson", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// All entity-specific not found errors wrap ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "progress", "analysis")
	Operation string // The operation that failed (e.g., "get", "upsert")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
