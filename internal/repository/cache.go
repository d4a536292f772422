// Package repository defines data access interfaces for ReuniteIt.
package repository

import (
	"context"
	"time"
)

// Cache defines the interface for caching operations.
// Implemented by Redis for deployments with one, and by an in-process
// memory cache otherwise.
type Cache interface {
	// Get retrieves a value by key.
	// Returns ErrCacheMiss if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with an optional TTL.
	// If ttl is 0, the value doesn't expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key. Deleting an absent key is not an error.
	Delete(ctx context.Context, keys ...string) error

	// Close releases any resources held by the cache.
	Close() error
}
