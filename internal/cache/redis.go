package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/homies/internal/config"
)

// AdmirerCountTTL is how long a cached admirer count lives without reads.
const AdmirerCountTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// KeyForAdmirerCount generates Redis key for a user's admirer count
func KeyForAdmirerCount(userID uint64) string {
	return fmt.Sprintf("admirers:count:%d", userID)
}

// GetAdmirerCount returns the cached count. ok is false on a cache miss
// or an unparsable value. A hit refreshes the TTL.
func (c *RedisCache) GetAdmirerCount(ctx context.Context, userID uint64) (count int64, ok bool, err error) {
	key := KeyForAdmirerCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	// refresh TTL since this user is active
	_ = c.Client.Expire(ctx, key, AdmirerCountTTL).Err()
	return n, true, nil
}

// SetAdmirerCount stores count with a fresh TTL.
func (c *RedisCache) SetAdmirerCount(ctx context.Context, userID uint64, count int64) error {
	return c.Client.Set(ctx, KeyForAdmirerCount(userID), count, AdmirerCountTTL).Err()
}

// InvalidateAdmirerCounts drops the cached counts of every given user.
func (c *RedisCache) InvalidateAdmirerCounts(ctx context.Context, userIDs ...uint64) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, KeyForAdmirerCount(id))
	}
	return c.Client.Del(ctx, keys...).Err()
}
