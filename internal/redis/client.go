package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Client wraps the Redis client together with the key namespace every key this
// application writes lives under.
type Client struct {
	*redis.Client
	namespace string
}

// NewClient creates a new Redis client from the given URL.
// URL format: redis://[:password@]host:port[/db]
// Example: redis://localhost:6379 or redis://:password@localhost:6379/0
func NewClient(redisURL, namespace string) (*Client, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis url is empty")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	return &Client{Client: redis.NewClient(opts), namespace: strings.TrimSuffix(namespace, ":")}, nil
}

// Key prefixes name with the namespace ("ministagram:mini-insta-token").
func (c *Client) Key(name string) string {
	if c.namespace == "" {
		return name
	}
	return c.namespace + ":" + name
}

// Ping verifies the connection to Redis.
// Call this on startup to fail fast if Redis is unreachable.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.Client.Close()
}
