package store

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const handleKeyPrefix = "yt:handle:"

func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	opts.Protocol = 2

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}

	return client, nil
}

// RedisResolutionCache remembers which channel ID a handle resolved to.
type RedisResolutionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisResolutionCache(client *redis.Client, ttl time.Duration) *RedisResolutionCache {
	return &RedisResolutionCache{client: client, ttl: ttl}
}

func handleKey(handle string) string {
	return handleKeyPrefix + strings.ToLower(handle)
}

func (c *RedisResolutionCache) GetChannelID(ctx context.Context, handle string) (string, bool, error) {
	channelID, err := c.client.Get(ctx, handleKey(handle)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "get cached handle %s", handle)
	}
	return channelID, true, nil
}

func (c *RedisResolutionCache) SetChannelID(ctx context.Context, handle, channelID string) error {
	err := c.client.Set(ctx, handleKey(handle), channelID, c.ttl).Err()
	return errors.Wrapf(err, "cache handle %s", handle)
}

func (c *RedisResolutionCache) Close() error {
	return c.client.Close()
}
