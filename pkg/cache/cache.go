// Package cache provides a small JSON cache with Redis, in-memory and no-op
// drivers. Reads never fail: any error is reported as a miss.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/sweetshop/config"
)

// Cache stores JSON-encoded values by key.
type Cache interface {
	// Get unmarshals the cached value into dest and reports a hit.
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// DeletePrefix removes every key starting with prefix. It advances
	// Generation before removing anything.
	DeletePrefix(ctx context.Context, prefix string) error
	// Generation counts DeletePrefix calls made through this instance.
	Generation() uint64
}

// Fill stores a value read from the backing store under key, unless the
// cache was invalidated after gen was taken. gen must be read before the
// store read. An invalidation that lands while the value is being written
// removes the key again, so a read that raced a write is never kept.
func Fill(ctx context.Context, c Cache, key string, value any, ttl time.Duration, gen uint64) error {
	if c.Generation() != gen {
		return nil
	}
	if err := c.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	if c.Generation() != gen {
		return c.DeletePrefix(ctx, key)
	}
	return nil
}

// Open builds the cache selected by CACHE_DRIVER. A redis driver that cannot
// be reached returns an error so the caller can fall back.
func Open(ctx context.Context) (Cache, error) {
	switch driver := config.CacheDriver(); driver {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr(),
			Password: config.RedisPassword(),
			DB:       0,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("cache: redis ping: %w", err)
		}
		return NewRedis(rdb), nil
	case "memory", "":
		return NewMemory(), nil
	case "none":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("cache: unsupported driver %q", driver)
	}
}

// Nop caches nothing.
type Nop struct{}

func (Nop) Get(context.Context, string, any) bool                 { return false }
func (Nop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Nop) DeletePrefix(context.Context, string) error            { return nil }
func (Nop) Generation() uint64                                    { return 0 }
