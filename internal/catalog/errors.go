package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("resource not found")
	ErrConflict = errors.New("resource already exists")

	ErrBrandNotFound    = fmt.Errorf("brand: %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category: %w", ErrNotFound)
	ErrSizeNotFound     = fmt.Errorf("brand size: %w", ErrNotFound)
	ErrProductNotFound  = fmt.Errorf("product: %w", ErrNotFound)

	ErrBrandHasProducts    = errors.New("cannot delete brand with associated products")
	ErrCategoryHasProducts = errors.New("cannot delete category with associated products")
)

// ValidationError names the filter or payload field a caller got wrong.
// Always recoverable by correcting the input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalidField(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
