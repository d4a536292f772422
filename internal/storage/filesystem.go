package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FilesystemBackend stores uploads on the local filesystem and serves them
// under a configured public URL prefix.
type FilesystemBackend struct {
	dir       string
	publicURL string
	logger    zerolog.Logger
}

// NewFilesystemBackend creates a filesystem backend rooted at dir.
// The directory is created if it does not exist.
func NewFilesystemBackend(dir, publicURL string, logger zerolog.Logger) (*FilesystemBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &FilesystemBackend{
		dir:       dir,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger.With().Str("component", "fs_uploads").Logger(),
	}, nil
}

// Dir returns the root directory uploads are written to.
func (b *FilesystemBackend) Dir() string {
	return b.dir
}

// Store writes the file under a random name preserving the extension.
func (b *FilesystemBackend) Store(ctx context.Context, reader io.Reader, filename, contentType string) (string, error) {
	name := uuid.NewString() + safeExt(filename)
	dst := filepath.Join(b.dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	if _, err := io.Copy(f, reader); err != nil {
		f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	url := b.publicURL + "/" + name
	b.logger.Debug().Str("file", name).Msg("stored upload")
	return url, nil
}

// safeExt returns a sanitized lower-case extension for the filename.
func safeExt(filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(filename)))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return ext
	default:
		return ".bin"
	}
}

// Ensure FilesystemBackend implements Backend.
var _ Backend = (*FilesystemBackend)(nil)
