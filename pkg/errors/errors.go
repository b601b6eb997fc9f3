// Package errors provides common, reusable error values and helpers.
package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")

	// KYC errors
	ErrInvalidDecision = errors.New("invalid kyc decision")
	ErrInvalidStatus   = errors.New("invalid kyc status")

	// AML errors
	ErrInvalidInput      = errors.New("invalid input")
	ErrAMLRecordNotFound = errors.New("aml record not found")

	// Audit errors
	ErrInvalidAuditAction = errors.New("invalid audit action")

	// Storage errors
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Middleware errors
	ErrDuplicateRequest = errors.New("duplicate request")
)

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
