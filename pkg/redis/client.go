package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/valuescreen/pkg/config"
)

const (
	// dialTimeout bounds the startup ping
	dialTimeout = 3 * time.Second
	// ioTimeout bounds each cache command so a slow Redis never stalls a fetch for long
	ioTimeout = 1 * time.Second
)

// Client wraps the Redis connection used by the page cache
// ⭐ SSOT: Redis 연결은 여기서만 관리
type Client struct {
	rdb     *redis.Client
	addr    string
	enabled bool
}

// New connects to Redis when REDIS_ENABLED is set.
// With Redis disabled it returns a client whose cache calls are no-ops.
func New(cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return Disabled(), nil
	}

	addr := net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port)
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis connection to %s failed: %w", addr, err)
	}

	return &Client{
		rdb:     rdb,
		addr:    addr,
		enabled: true,
	}, nil
}

// Disabled returns a client without a connection (캐시 비활성)
func Disabled() *Client {
	return &Client{}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c != nil && c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Enabled returns whether Redis is enabled
func (c *Client) Enabled() bool {
	return c != nil && c.enabled
}

// Addr returns host:port of the connected server ("" when disabled)
func (c *Client) Addr() string {
	if c == nil {
		return ""
	}
	return c.addr
}

// Redis returns the underlying redis client for advanced usage
func (c *Client) Redis() *redis.Client {
	return c.rdb
}
