// Package cachestore provides the TTL caches owned by an engine instance.
// Callers construct a cache once and inject it into the pipeline, so tests
// and embedders can swap the in-memory implementation for the Redis-backed
// one without touching the components that use it.
package cachestore

import (
	"context"
	"time"
)

// Cache is a TTL key-value cache. Implementations must be safe for
// concurrent use.
type Cache[T any] interface {
	Get(ctx context.Context, key string) (T, bool)
	Set(ctx context.Context, key string, value T)
	Delete(ctx context.Context, key string)
}

// Entry wraps a cached value with its expiry for the in-memory store.
type entry[T any] struct {
	value     T
	expiresAt time.Time
	storedAt  time.Time
}
