package catalog

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound marks a slug or id that does not resolve to a row.
	ErrNotFound = errors.New("not found")

	// ErrPersistence marks a failed statement or commit. The transaction has
	// been rolled back when it is returned.
	ErrPersistence = errors.New("persistence failure")
)

// ValidationError reports malformed input for a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func notFound(kind, key string) error {
	return fmt.Errorf("%s %q: %w", kind, key, ErrNotFound)
}

// lookupError maps gorm's missing-record error to ErrNotFound and anything
// else to ErrPersistence.
func lookupError(kind, key string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(kind, key)
	}
	return persistenceError("load "+kind, err)
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

// classify leaves catalog errors untouched and wraps everything else as a
// persistence failure of op.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrPersistence) || IsValidation(err) {
		return err
	}
	return persistenceError(op, err)
}
