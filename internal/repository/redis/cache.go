package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redisx "github.com/kirinyoku/eventease/internal/redis"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache keeps JSON copies of catalog reads.
type Cache struct {
	rdb   *redis.Client
	group singleflight.Group
}

func New(client *redis.Client) *Cache {
	return &Cache{rdb: client}
}

// GetJSON reads key into a T. An entry that no longer decodes is evicted
// and reported as a miss.
func GetJSON[T any](ctx context.Context, c *Cache, key string) (T, bool, error) {
	var out T

	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}

	if err := json.Unmarshal(b, &out); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		var zero T
		return zero, false, nil
	}

	return out, true, nil
}

func SetJSON(ctx context.Context, c *Cache, key string, val any, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, key, b, ttl).Err()
}

// GetOrSetJSON returns the cached value under key, loading and storing it
// on a miss. Concurrent misses for the same key share one loader call.
// Redis failures fall through to the loader; only loader errors surface.
func GetOrSetJSON[T any](
	ctx context.Context,
	c *Cache,
	key string,
	ttl time.Duration,
	loader func(ctx context.Context) (T, error),
) (T, error) {
	if v, ok, err := GetJSON[T](ctx, c, key); err == nil && ok {
		return v, nil
	}

	res, err, _ := c.group.Do(key, func() (any, error) {
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}

		_ = SetJSON(ctx, c, key, v, ttl)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	v, ok := res.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache %s: unexpected value type %T", key, res)
	}

	return v, nil
}

// InvalidateEvent drops the cached event and the cached catalog list.
func (c *Cache) InvalidateEvent(ctx context.Context, eventID uuid.UUID) error {
	return c.rdb.Del(ctx, redisx.KeyEvent(eventID), redisx.KeyEventsList()).Err()
}
