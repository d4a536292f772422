// Package service provides business logic services for ReuniteIt.
package service

import "errors"

// Common service errors. Expected user-facing outcomes are the sentinels in
// the domain package; ErrInternal wraps everything that should surface to
// the client only as a generic try-again message.
var (
	// ErrInternal indicates an unexpected infrastructure failure.
	ErrInternal = errors.New("internal server error")
)
