package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// URLCache caches presigned playback URLs so a burst of list views does not
// re-sign the same object. Misses are not errors.
type URLCache struct {
	rdb    *redis.Client
	prefix string
}

func NewURLCache(rdb *redis.Client, prefix string) *URLCache {
	return &URLCache{rdb: rdb, prefix: prefix}
}

func (c *URLCache) Set(ctx context.Context, key, val string, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.prefix+":"+key, val, ttl).Err()
}

func (c *URLCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, c.prefix+":"+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}
