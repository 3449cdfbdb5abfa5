package cache

import "errors"

// Sentinel errors for caching operations.
var (
	// ErrCacheMiss is returned when an item is required but not found in cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidKey is returned when a key cannot be used by a backend.
	ErrInvalidKey = errors.New("invalid cache key")
)
