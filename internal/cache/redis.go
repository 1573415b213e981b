// Package cache provides an optional Redis read cache for blob bodies.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"jsonblob/internal/blobid"
)

const (
	dialTimeout = 2 * time.Second
	readTimeout = 2 * time.Second
)

// Cache stores blob bodies in Redis under a bounded TTL. A nil *Cache is
// valid and disables caching.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, addr string, ttl time.Duration) (*Cache, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: dialTimeout,
		ReadTimeout: readTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Cache{client: client, ttl: ttl}, nil
}

// Get returns the cached body for id. A missing key is a miss, not an error.
func (c *Cache) Get(ctx context.Context, id blobid.ID) (string, bool, error) {
	if c == nil {
		return "", false, nil
	}

	body, err := c.client.Get(ctx, blobKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, err
	}
	return body, true, nil
}

// Set stores the body for id under the cache TTL.
func (c *Cache) Set(ctx context.Context, id blobid.ID, body string) error {
	if c == nil {
		return nil
	}
	return c.client.Set(ctx, blobKey(id), body, c.ttl).Err()
}

// Delete evicts the cached body for id.
func (c *Cache) Delete(ctx context.Context, id blobid.ID) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, blobKey(id)).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func blobKey(id blobid.ID) string {
	return "blob:" + id.Hex()
}
