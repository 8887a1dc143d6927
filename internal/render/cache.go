package render

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "render:" // render:{format}:{token}

// Cache is a redis-backed cache of rendered preview images keyed by the
// transport token. Because Encode is deterministic over source, a token hit
// is always the right image. Only the ephemeral preview path reads it; the
// persist path always goes to the renderer.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get returns cached bytes for this source+format, or (nil, false) on a miss
// or any redis error. Cache trouble never fails a render.
func (c *Cache) Get(ctx context.Context, source string, format Format) ([]byte, bool) {
	data, err := c.client.Get(ctx, cacheKey(source, format)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// treat redis errors as misses
			return nil, false
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	return data, true
}

// Set stores rendered bytes with the configured TTL, best effort.
func (c *Cache) Set(ctx context.Context, source string, format Format, data []byte) {
	_ = c.client.Set(ctx, cacheKey(source, format), data, c.ttl).Err()
}

func cacheKey(source string, format Format) string {
	return cacheKeyPrefix + string(format) + ":" + Encode(source)
}
