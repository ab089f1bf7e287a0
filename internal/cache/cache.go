// Package cache provides a small TTL cache used for hot-path lookups
// like list-membership checks. Two implementations exist: an in-memory
// map for single-instance deployments and a Redis client for setups
// that run more than one replica.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	// Get retrieves a value by key. Returns ErrCacheMiss if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error
}

type CacheError string

func (e CacheError) Error() string { return string(e) }

// ErrCacheMiss indicates the key was not found in cache.
const ErrCacheMiss CacheError = "cache miss"
