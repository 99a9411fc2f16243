package redis

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores fetched page bodies under a key prefix
// ⭐ SSOT: 캐시 헬퍼는 여기서만
// Redis가 꺼져 있으면 모든 호출은 no-op (항상 miss)
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

// Enabled reports whether the cache is backed by a live Redis
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil && c.client.Enabled()
}

func (c *Cache) fullKey(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, key)
}

// GetText retrieves a raw string (page bodies are stored unencoded)
func (c *Cache) GetText(ctx context.Context, key string) (string, bool, error) {
	if !c.Enabled() {
		return "", false, nil
	}

	text, err := c.client.Redis().Get(ctx, c.fullKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get failed: %w", err)
	}

	return text, true, nil
}

// SetText stores a raw string with TTL
func (c *Cache) SetText(ctx context.Context, key string, text string, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	return c.client.Redis().Set(ctx, c.fullKey(key), text, ttl).Err()
}

// PageKey returns the cache key for a fetched page URL
func PageKey(pageURL string) string {
	sum := sha1.Sum([]byte(pageURL))
	return "page:" + hex.EncodeToString(sum[:])
}
