// Package domain contains the core business entities for ReuniteIt.
package domain

import (
	"errors"
	"strings"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ErrUserNotFound indicates the requested account does not exist.
	ErrUserNotFound = errors.New("no account found with this email")

	// ErrEmailTaken indicates another account already uses the email.
	// Both the application-level pre-check and a storage-level unique
	// constraint violation are translated into this error.
	ErrEmailTaken = errors.New("email already exists")

	// ErrInvalidCredentials indicates the password did not match.
	ErrInvalidCredentials = errors.New("incorrect password")

	// ErrReportNotFound indicates the requested report does not exist.
	ErrReportNotFound = errors.New("report not found")

	// ErrNotReportOwner indicates a valid session attempted to delete a
	// report posted by a different account.
	ErrNotReportOwner = errors.New("not authorized to delete this report")

	// ErrInvalidAdminCredentials indicates the admin credential pair did
	// not match the configured values.
	ErrInvalidAdminCredentials = errors.New("invalid admin credentials")
)

// ValidationError carries the full list of violated field constraints so the
// caller can surface every message, not just the first.
type ValidationError struct {
	// Messages are user-facing, one per violated constraint.
	Messages []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ", ")
}

// NewValidationError creates a ValidationError from one or more messages.
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
