package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"API_BASE_URL", "HTTP_TIMEOUT_SECONDS", "API_RATE_LIMIT", "TOKEN_STORE",
		"REDIS_NAMESPACE", "LOG_LEVEL", "S3_REGION", "DEV_SERVER_PORT", "ACCESS_TOKEN_MAX_AGE",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("TOKEN_FILE", "/tmp/ministagram-token.json")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.APIBaseURL)
	assert.Equal(t, 10, cfg.HTTPTimeoutSeconds)
	assert.Zero(t, cfg.APIRateLimit)
	assert.Equal(t, TokenStoreFile, cfg.TokenStore)
	assert.Equal(t, "/tmp/ministagram-token.json", cfg.TokenFile)
	assert.Equal(t, "ministagram", cfg.RedisNamespace)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "auto", cfg.S3Region)
	assert.Equal(t, "8080", cfg.DevServerPort)
	assert.Equal(t, 86400, cfg.AccessTokenMaxAge)
}

func TestLoadConfig_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT_SECONDS", "-3")
	t.Setenv("API_RATE_LIMIT", "fast")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.HTTPTimeoutSeconds)
	assert.Zero(t, cfg.APIRateLimit)
}

func TestConfig_MediaEnabled(t *testing.T) {
	cfg := &Config{S3AccessKeyID: "a", S3SecretAccessKey: "b", S3BucketName: "c"}
	assert.False(t, cfg.MediaEnabled())

	cfg.S3PublicURL = "https://cdn.example.com"
	assert.True(t, cfg.MediaEnabled())
}
