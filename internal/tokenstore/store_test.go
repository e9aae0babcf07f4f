package tokenstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ministagram/internal/config"
	"ministagram/internal/redis"
)

// exerciseStore runs the contract every backend must satisfy.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	token, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, token, "fresh store must be empty")

	require.NoError(t, s.Persist(ctx, "abc.def.ghi"))
	token, err = s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	require.NoError(t, s.Persist(ctx, "second"))
	token, _ = s.Read(ctx)
	assert.Equal(t, "second", token)

	require.NoError(t, s.Clear(ctx))
	token, err = s.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, s.Clear(ctx), "clearing twice is fine")
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	exerciseStore(t, NewFileStore(path))
}

func TestFileStore_SharedBetweenInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "token.json")

	a := NewFileStore(path)
	b := NewFileStore(path)

	require.NoError(t, a.Persist(ctx, "tok"))
	token, err := b.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	require.NoError(t, b.Clear(ctx))
	token, _ = a.Read(ctx)
	assert.Empty(t, token)
}

func TestFileStore_KeepsUnrelatedKeysAndPermissions(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"dark"}`), 0o644))

	s := NewFileStore(path)
	require.NoError(t, s.Persist(ctx, "tok"))
	require.NoError(t, s.Clear(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]string
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, map[string]string{"theme": "dark"}, doc)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStore_CorruptDocument(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s := NewFileStore(path)
	_, err := s.Read(ctx)
	assert.Error(t, err)

	require.NoError(t, s.Clear(ctx))
	token, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestRedisStore(t *testing.T) {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/1"
	}
	client, err := redis.NewClient(redisURL, "ministagram-test")
	require.NoError(t, err)
	defer client.Close()

	if err := client.Ping(context.Background()); err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}
	client.Del(context.Background(), client.Key(TokenKey))

	exerciseStore(t, NewRedisStore(client, nil))
}

func TestNew_SelectsBackend(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, &config.Config{TokenStore: config.TokenStoreMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = New(ctx, &config.Config{TokenStore: config.TokenStoreFile, TokenFile: "x.json"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = New(ctx, &config.Config{TokenStore: config.TokenStoreRedis}, nil)
	assert.Error(t, err, "redis without a URL must fail")

	_, err = New(ctx, &config.Config{TokenStore: "cookie"}, nil)
	assert.Error(t, err)
}

func TestNew_UnreachableRedisFailsFast(t *testing.T) {
	_, err := New(context.Background(), &config.Config{
		TokenStore: config.TokenStoreRedis,
		RedisURL:   "redis://127.0.0.1:1/0",
	}, nil)
	assert.ErrorContains(t, err, "redis ping")
}
