package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotReady         = errors.New("backend connection is not ready")
	ErrNotAuthenticated = errors.New("sign in required")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrForbidden        = errors.New("admin access required")
)

// ValidationError reports invalid input before any remote call is made
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
