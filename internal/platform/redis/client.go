package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"discadian/internal/platform/config"
)

// Client is the shared connection used by the registry lookup cache.
type Client struct {
	*redis.Client
}

// New dials Redis and pings it once so a bad URL fails at startup rather than
// on the first lookup. No URL means no Redis: New returns nil, nil and callers
// fall back to the in-process cache.
func New(ctx context.Context, cfg config.Redis) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	rc := redis.NewClient(opts)
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	return &Client{Client: rc}, nil
}

// Health pings the server; /health reports degraded when it fails.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
