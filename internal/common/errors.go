package common

import (
	"errors"
	"strings"
)

// Error kinds. Services wrap these so handlers can map them with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrRateLimited        = errors.New("too many attempts")
	ErrUnavailable        = errors.New("service unavailable")
)

// Error carries a caller-facing message alongside its kind.
type Error struct {
	Kind    error
	Message string
	Fields  []string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NewError creates an Error of the given kind.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NewValidationError lists the offending fields. With no message one is derived
// from the field names.
func NewValidationError(message string, fields ...string) *Error {
	if message == "" {
		message = strings.Join(fields, ", ") + " required"
	}
	return &Error{Kind: ErrValidation, Message: message, Fields: fields}
}

// MissingFields returns the names whose values are blank.
func MissingFields(values map[string]string, order ...string) []string {
	var missing []string
	for _, name := range order {
		if strings.TrimSpace(values[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
