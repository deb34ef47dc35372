package services

import (
	"errors"
	"strings"
)

var (
	// ErrBookNotFound is returned when no book exists with the requested ID.
	ErrBookNotFound = errors.New("book not found")

	// ErrInvalidPage is returned for page numbers below 1.
	ErrInvalidPage = errors.New("page number must be at least 1")
)

// FieldError is a single human-readable validation failure for a form field.
type FieldError struct {
	Field   string // Form field name, e.g. "title"
	Message string
}

// ValidationError carries every field failure found while validating a book.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		messages = append(messages, fe.Message)
	}
	return "validation failed: " + strings.Join(messages, "; ")
}

// For returns the message for the given field, or "" when the field is valid.
func (e *ValidationError) For(field string) string {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// IsValidationError reports whether err wraps a *ValidationError and returns it.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
