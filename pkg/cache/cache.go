// Package cache provides the storage backends behind the harvest cache store.
//
// A [Cache] maps string keys to opaque byte slices. re3facet stores exactly
// one entry per harvest: the serialized sequence of raw registry documents.
// Backends differ only in where that blob lives:
//
//   - [PathCache]: the key is a filesystem path; the blob is written there verbatim.
//   - [FileCache]: keys are hashed into a cache directory (XDG cache dir by default).
//   - [RedisCache]: keys live in Redis, useful when several hosts share one harvest.
//   - [NullCache]: never stores anything; every run goes to the network.
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface used by the harvest store.
type Cache interface {
	// Get returns the data stored under key.
	// A missing entry is reported as (nil, false, nil), not as an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key, overwriting any previous entry.
	// A ttl of zero means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the backend.
	Close() error
}
