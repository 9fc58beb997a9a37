package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps Redis operations for cross-process wallet locking. With
// several dashboard instances sharing one signing wallet, the in-process
// mutex is not enough to keep submissions serialized per wallet.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func lockKey(wallet string) string {
	return fmt.Sprintf("wallet_lock:%s", wallet)
}

// Acquire attempts to take the per-wallet operation lock.
func (c *Client) Acquire(ctx context.Context, wallet string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, lockKey(wallet), "locked", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx failed: %w", err)
	}
	return ok, nil
}

// Release releases the per-wallet operation lock.
func (c *Client) Release(ctx context.Context, wallet string) error {
	return c.rdb.Del(ctx, lockKey(wallet)).Err()
}

// Refresh extends the TTL of a held lock.
func (c *Client) Refresh(ctx context.Context, wallet string, ttl time.Duration) error {
	return c.rdb.Expire(ctx, lockKey(wallet), ttl).Err()
}
