package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing record; handlers map it to 404.
	ErrNotFound = errors.New("not found")
	// ErrForbidden signals a caller acting outside its role scope; 403.
	ErrForbidden = errors.New("access forbidden")
)

// ValidationError carries a client-facing message; handlers map it to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
