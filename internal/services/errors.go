package services

import (
	"fmt"

	"github.com/mrlokans/bookworm/internal/database/books"
)

// Re-exported so collaborators only depend on this package.
var (
	ErrNotFound            = books.ErrNotFound
	ErrConstraintViolation = books.ErrConstraintViolation
)

// ValidationError reports input rejected before it reaches the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
