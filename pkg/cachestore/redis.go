package cachestore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis is a TTL cache backed by a shared Redis instance, letting several
// daemon replicas share one schedule/identity cache. Values are stored as
// JSON.
type Redis[T any] struct {
	cache  *cache.Cache[string]
	prefix string
}

func NewRedis[T any](client *redis.Client, prefix string, ttl time.Duration) *Redis[T] {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(ttl))

	return &Redis[T]{
		cache:  cache.New[string](redisStore),
		prefix: prefix,
	}
}

func (r *Redis[T]) Get(ctx context.Context, key string) (T, bool) {
	var value T

	cached, err := r.cache.Get(ctx, r.prefix+key)
	if err != nil {
		return value, false
	}

	if err := json.Unmarshal([]byte(cached), &value); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		return value, false
	}

	return value, true
}

func (r *Redis[T]) Set(ctx context.Context, key string, value T) {
	encoded, err := json.Marshal(value)
	if err != nil {
		log.Debug().Err(err).Str("key", key).Msg("Failed to encode cache entry")
		return
	}

	if err := r.cache.Set(ctx, r.prefix+key, string(encoded)); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("Failed to write cache entry")
	}
}

func (r *Redis[T]) Delete(ctx context.Context, key string) {
	if err := r.cache.Delete(ctx, r.prefix+key); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("Failed to delete cache entry")
	}
}
