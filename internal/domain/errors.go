package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Specific failures. Each wraps one of the classes above.
var (
	ErrInvalidEmail        = fmt.Errorf("invalid email: %w", ErrBadRequest)
	ErrWeakPassword        = fmt.Errorf("weak password: %w", ErrBadRequest)
	ErrPasswordMismatch    = fmt.Errorf("password mismatch: %w", ErrBadRequest)
	ErrMissingRoleField    = fmt.Errorf("missing role field: %w", ErrBadRequest)
	ErrInvalidRole         = fmt.Errorf("invalid role: %w", ErrBadRequest)
	ErrImmutableField      = fmt.Errorf("immutable field: %w", ErrBadRequest)
	ErrBadCredential       = fmt.Errorf("current password is incorrect: %w", ErrBadRequest)
	ErrDuplicateEmail      = fmt.Errorf("email already registered: %w", ErrConflict)
	ErrDuplicateRollNumber = fmt.Errorf("roll number already registered: %w", ErrConflict)

	ErrUnknownUser            = fmt.Errorf("no account for this email: %w", ErrNotFound)
	ErrOTPNotFound            = fmt.Errorf("invalid OTP: %w", ErrNotFound)
	ErrOTPExpired             = fmt.Errorf("OTP expired: %w", ErrBadRequest)
	ErrOTPInvalidOrUnverified = fmt.Errorf("invalid or unverified OTP: %w", ErrBadRequest)
	ErrOTPAttemptsExceeded    = fmt.Errorf("too many failed OTP attempts: %w", ErrBadRequest)

	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	ErrAccountDisabled    = fmt.Errorf("user account is disabled: %w", ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("token is invalid or expired: %w", ErrUnauthorized)

	ErrPermissionDenied = fmt.Errorf("permission denied: %w", ErrForbidden)
)

// FieldError is a validation failure bound to one request field. An empty Field
// means the message applies to the request as a whole.
type FieldError struct {
	Field   string
	Message string
	Kind    error
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error {
	if e.Kind == nil {
		return ErrBadRequest
	}
	return e.Kind
}

// NewFieldError builds a FieldError classified as kind.
func NewFieldError(kind error, field, message string) *FieldError {
	return &FieldError{Field: field, Message: message, Kind: kind}
}

// ValidationErrors collects several field-keyed messages.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(v))
}

func (v ValidationErrors) Unwrap() error { return ErrBadRequest }
