package features

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/talent-match/internal/types"
	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces feature-set keys in a shared Redis.
const redisKeyPrefix = "tm:features:"

// RedisCache is a Cache backed by Redis. Values are JSON-encoded feature sets.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache connects to redisURL and pings it. ttl <= 0 stores entries without expiry.
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis unreachable at %s: %w", opts.Addr, err)
	}

	return &RedisCache{rdb: rdb, ttl: ttl}, nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached feature set for key.
func (r *RedisCache) Get(ctx context.Context, key string) (*types.FeatureSet, bool, error) {
	data, err := r.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read feature set: %w", err)
	}

	var fs types.FeatureSet
	if err := json.Unmarshal(data, &fs); err != nil {
		return nil, false, fmt.Errorf("failed to decode feature set: %w", err)
	}
	return &fs, true, nil
}

// Set stores fs under key with the configured TTL.
func (r *RedisCache) Set(ctx context.Context, key string, fs *types.FeatureSet) error {
	data, err := json.Marshal(fs)
	if err != nil {
		return fmt.Errorf("failed to encode feature set: %w", err)
	}
	if err := r.rdb.Set(ctx, redisKeyPrefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write feature set: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (r *RedisCache) Close() error {
	return r.rdb.Close()
}
