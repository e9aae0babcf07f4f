// Package tokenstore persists the opaque session token between runs.
//
// A Store is a plain pass-through to durable storage: it never inspects the token,
// never checks expiry and keeps no other state. Every process sharing the same
// backing storage sees the same token.
package tokenstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ministagram/internal/config"
	"ministagram/internal/redis"
)

// TokenKey is the fixed name the token is stored under in every backend.
const TokenKey = "mini-insta-token"

// Store persists, reads and clears the session token.
// Read returns "" with a nil error when no token is stored.
type Store interface {
	Persist(ctx context.Context, token string) error
	Read(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// New builds the backend selected by cfg.TokenStore. The redis backend is pinged
// so an unreachable server fails at startup.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (Store, error) {
	switch cfg.TokenStore {
	case config.TokenStoreMemory:
		return NewMemoryStore(), nil
	case config.TokenStoreFile, "":
		return NewFileStore(cfg.TokenFile), nil
	case config.TokenStoreRedis:
		client, err := redis.NewClient(cfg.RedisURL, cfg.RedisNamespace)
		if err != nil {
			return nil, fmt.Errorf("token store: %w", err)
		}
		if err := client.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("token store: %w", err)
		}
		return NewRedisStore(client, log), nil
	default:
		return nil, fmt.Errorf("token store: unknown backend %q", cfg.TokenStore)
	}
}
