package cache

import (
	"context"
	"time"
)

// Cache defines the interface for caching operations.
// Catalog payloads and recipient lookups go through it so that repeated
// runs in one process, or several processes sharing Redis, avoid refetching.
type Cache interface {
	// Get retrieves a value by key. Returns ErrCacheMiss if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// GetOrSet retrieves a value or computes and stores it if missing.
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error)

	// Close releases resources held by the cache.
	Close() error
}

// Common cache errors
type CacheError string

func (e CacheError) Error() string { return string(e) }

const (
	// ErrCacheMiss indicates the key was not found in cache.
	ErrCacheMiss CacheError = "cache miss"
)

// getOrSet implements GetOrSet on top of Get and Set. A non-positive TTL
// bypasses the cache entirely. A failed Set still returns the computed value.
func getOrSet(ctx context.Context, c Cache, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error) {
	if ttl <= 0 {
		return fn()
	}
	if value, err := c.Get(ctx, key); err == nil {
		return value, nil
	}

	value, err := fn()
	if err != nil {
		return nil, err
	}

	_ = c.Set(ctx, key, value, ttl)
	return value, nil
}

// Nop is a cache that never stores anything.
type Nop struct{}

func (Nop) Get(ctx context.Context, key string) ([]byte, error) { return nil, ErrCacheMiss }
func (Nop) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}
func (Nop) Delete(ctx context.Context, key string) error { return nil }
func (Nop) GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error) {
	return fn()
}
func (Nop) Close() error { return nil }

var _ Cache = Nop{}
