package cachestore

import (
	"context"
	"sync"
	"time"
)

// Memory is a bounded in-process TTL cache. It serves library embedders and
// tests that run without Redis.
type Memory[T any] struct {
	mutex      sync.Mutex
	entries    map[string]entry[T]
	ttl        time.Duration
	maxEntries int

	now func() time.Time
}

func NewMemory[T any](ttl time.Duration, maxEntries int) *Memory[T] {
	return &Memory[T]{
		entries:    map[string]entry[T]{},
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (m *Memory[T]) Get(_ context.Context, key string) (T, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var empty T

	cached, exists := m.entries[key]
	if !exists {
		return empty, false
	}

	if m.now().After(cached.expiresAt) {
		delete(m.entries, key)
		return empty, false
	}

	return cached.value, true
}

func (m *Memory[T]) Set(_ context.Context, key string, value T) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := m.now()

	m.entries[key] = entry[T]{
		value:     value,
		expiresAt: now.Add(m.ttl),
		storedAt:  now,
	}

	m.evictLocked(now)
}

func (m *Memory[T]) Delete(_ context.Context, key string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.entries, key)
}

// evictLocked drops expired entries first, then the oldest entries until the
// cache fits within maxEntries.
func (m *Memory[T]) evictLocked(now time.Time) {
	if m.maxEntries <= 0 || len(m.entries) <= m.maxEntries {
		return
	}

	for key, cached := range m.entries {
		if now.After(cached.expiresAt) {
			delete(m.entries, key)
		}
	}

	for len(m.entries) > m.maxEntries {
		oldestKey := ""
		var oldestTime time.Time

		for key, cached := range m.entries {
			if oldestKey == "" || cached.storedAt.Before(oldestTime) {
				oldestKey = key
				oldestTime = cached.storedAt
			}
		}

		delete(m.entries, oldestKey)
	}
}
