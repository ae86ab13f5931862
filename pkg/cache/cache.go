// Package cache provides the storage layer for pipeline results and
// persisted selections.
//
// Three backends implement [Cache]:
//   - [FileCache]: JSON files under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP host
//   - [NullCache]: never stores anything, for tests and --no-cache
//
// Keys are produced by a [Keyer] so that every consumer hashes the same
// inputs the same way. [NewScopedKeyer] prefixes keys per visual or tenant.
package cache

import (
	"context"
	"time"
)

// Default time-to-live per entry kind.
const (
	TTLTable     = 24 * time.Hour
	TTLLayout    = 7 * 24 * time.Hour
	TTLArtifact  = 7 * 24 * time.Hour
	TTLSelection = 30 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiration.
type Cache interface {
	// Get returns the stored data and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}
