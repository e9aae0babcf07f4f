package tokenstore

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ministagram/internal/logger"
	"ministagram/internal/redis"
)

// RedisStore shares one token between every client pointed at the same Redis
// namespace. The key has no TTL; expiry is the server's concern.
type RedisStore struct {
	client *redis.Client
	key    string
	log    *zap.Logger
}

func NewRedisStore(client *redis.Client, log *zap.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		key:    client.Key(TokenKey),
		log:    logger.OrNop(log).Named("TokenStore"),
	}
}

func (s *RedisStore) Persist(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, 0).Err(); err != nil {
		s.log.Warn("persist failed", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

func (s *RedisStore) Read(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	if err != nil {
		s.log.Warn("read failed", zap.String("key", s.key), zap.Error(err))
		return "", fmt.Errorf("read token: %w", err)
	}
	return token, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		s.log.Warn("clear failed", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
