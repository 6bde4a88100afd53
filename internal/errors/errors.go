package errors

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the storefront auth flow
var (
	// Input errors
	ErrValidation = errors.New("validation error")

	// Account errors
	ErrDuplicateAccount         = errors.New("duplicate account")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrInvalidFederatedToken    = errors.New("invalid federated token")
	ErrFederatedAccountConflict = errors.New("federated account conflict")

	// Token errors
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")

	// Storage errors
	ErrPersistence = errors.New("persistence error")
	ErrNotFound    = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Kind attaches a taxonomy kind to an underlying cause so that both
// errors.Is(err, kind) and errors.Is(err, cause) hold.
func Kind(kind, cause error) error {
	if cause == nil {
		return kind
	}
	return fmt.Errorf("%w: %w", kind, cause)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New is errors.New re-exported so callers need only one errors import
func New(text string) error {
	return errors.New(text)
}
