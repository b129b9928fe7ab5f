// Package redis provides the shared Redis client plus the session store and
// catalog cache built on top of it.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/VitaQuote/internal/config"
	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitaQuote/pkg/errors"
)

// Client wraps the go-redis client with the service's key prefix.
type Client struct {
	rdb       redis.UniversalClient
	keyPrefix string
	logger    logging.Logger
}

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(cfg config.RedisConfig, log logging.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "redis connection failed")
	}

	log.Info("connected to Redis", logging.String("addr", cfg.Addr), logging.Int("db", cfg.DB))

	return &Client{rdb: rdb, keyPrefix: cfg.KeyPrefix, logger: log}, nil
}

// NewClientWithRedis wraps an existing go-redis client, used by tests with
// miniature or mocked servers.
func NewClientWithRedis(rdb redis.UniversalClient, keyPrefix string, log logging.Logger) *Client {
	return &Client{rdb: rdb, keyPrefix: keyPrefix, logger: log}
}

// Key builds a namespaced key.
func (c *Client) Key(parts ...string) string {
	key := c.keyPrefix
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// Raw exposes the underlying go-redis client.
func (c *Client) Raw() redis.UniversalClient {
	return c.rdb
}

// HealthCheck verifies the Redis connection.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "redis health check failed")
	}
	return nil
}

// Close closes the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}
