package cache

import (
	"context"
	"time"
)

// Store is the TTL key-value cache sitting in front of the expensive read
// paths. Implementations must degrade to "always miss" when the backing
// store is unavailable: a broken cache slows reads down, it never fails them.
type Store interface {
	// Get returns the cached value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
