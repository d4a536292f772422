// Package storage defines interfaces for image upload backends.
// The upload layer is responsible for persisting a report's photo and
// handing back a stable, publicly fetchable URL. A failed upload must
// prevent report creation, so backends return errors rather than
// placeholder URLs.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrUploadFailed indicates the backend could not persist the file.
var ErrUploadFailed = errors.New("upload failed")

// Backend defines the interface for upload backends.
// Implementations include the local filesystem and S3-compatible stores.
type Backend interface {
	// Store persists the content of reader under a backend-chosen key
	// derived from filename and returns the public URL of the stored file.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - reader: Source of the file content
	//   - filename: Original filename, used for the extension
	//   - contentType: MIME type reported by the client
	//
	// Returns:
	//   - url: Stable public URL of the stored file
	//   - err: ErrUploadFailed (wrapped) if the file could not be stored
	Store(ctx context.Context, reader io.Reader, filename, contentType string) (url string, err error)
}
