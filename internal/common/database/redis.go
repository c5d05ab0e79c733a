// internal/common/database/redis.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"operator-assessment-workers/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// Key prefixes shared by the assessment workers.
const (
	AssessmentInputPrefix  = "assessment:input:"
	AssessmentResultPrefix = "assessment:result:"
)

type RedisClient struct {
	Client *redis.Client
}

func NewRedis(cfg config.RedisConfig) *RedisClient {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
	return &RedisClient{Client: rdb}
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// JSONCache stores JSON documents under a key prefix with a fixed TTL.
type JSONCache struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewJSONCache(rdb redis.Cmdable, prefix string, ttl time.Duration) *JSONCache {
	return &JSONCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *JSONCache) Key(id string) string {
	return c.prefix + id
}

// Get decodes the cached value into dest. A missing key returns false and
// no error.
func (c *JSONCache) Get(ctx context.Context, id string, dest interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, c.Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", c.Key(id), err)
	}
	return true, nil
}

func (c *JSONCache) Set(ctx context.Context, id string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.Key(id), raw, c.ttl).Err()
}

func (c *JSONCache) Delete(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, c.Key(id)).Err()
}
