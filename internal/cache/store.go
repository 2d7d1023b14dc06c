// Package cache implements the read-optimized content cache: deterministic
// key derivation, a pluggable TTL-bearing key-value store, and the typed
// snapshot read/write/invalidate protocol on top of it.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes. Content is expected to be refreshed by webhooks
// long before expiry; the TTL bounds orphaned-key lifetime when explicit
// invalidation is ever skipped, it is not the primary consistency mechanism.
const (
	// DefaultTTL applies to snapshot, navigation, and document entries.
	DefaultTTL = 7 * 24 * time.Hour

	// DefaultVersionListTTL applies to the branch/tag list namespace.
	DefaultVersionListTTL = time.Hour
)

// Store is the backing key-value store. Values are JSON blobs; keys are never
// enumerable by prefix, so callers must track the keys they have written.
type Store interface {
	// Get retrieves a value. Returns ErrNotFound for missing or expired keys.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes a value with a bounded lifetime.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Close releases any resources held by the store.
	Close() error
}

// ErrNotFound is returned when a key doesn't exist or has expired.
type ErrNotFound struct {
	Key string
}

func (e ErrNotFound) Error() string {
	return "cache entry not found: " + e.Key
}

// IsNotFound returns true if the error is ErrNotFound.
func IsNotFound(err error) bool {
	_, ok := err.(ErrNotFound)
	return ok
}
