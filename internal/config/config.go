package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Token store backends
const (
	TokenStoreFile   = "file"
	TokenStoreRedis  = "redis"
	TokenStoreMemory = "memory"
)

type Config struct {
	APIBaseURL         string
	HTTPTimeoutSeconds int
	APIRateLimit       float64 // requests per second, 0 disables throttling

	TokenStore     string
	TokenFile      string
	RedisURL       string
	RedisNamespace string

	LogLevel string

	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3PublicURL       string

	DevServerPort     string
	JWTSecret         string
	AccessTokenMaxAge int
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	httpTimeout, err := strconv.Atoi(os.Getenv("HTTP_TIMEOUT_SECONDS"))
	if err != nil || httpTimeout <= 0 {
		httpTimeout = 10
	}

	rateLimit, err := strconv.ParseFloat(os.Getenv("API_RATE_LIMIT"), 64)
	if err != nil || rateLimit < 0 {
		rateLimit = 0
	}

	accessTokenMaxAge, err := strconv.Atoi(os.Getenv("ACCESS_TOKEN_MAX_AGE"))
	if err != nil || accessTokenMaxAge <= 0 {
		accessTokenMaxAge = 86400
	}

	apiBaseURL := os.Getenv("API_BASE_URL")
	if apiBaseURL == "" {
		apiBaseURL = "http://localhost:8080"
	}

	tokenStore := os.Getenv("TOKEN_STORE")
	if tokenStore == "" {
		tokenStore = TokenStoreFile
	}

	tokenFile := os.Getenv("TOKEN_FILE")
	if tokenFile == "" {
		tokenFile = defaultTokenFile()
	}

	redisNamespace := os.Getenv("REDIS_NAMESPACE")
	if redisNamespace == "" {
		redisNamespace = "ministagram"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	s3Region := os.Getenv("S3_REGION")
	if s3Region == "" {
		s3Region = "auto"
	}

	devServerPort := os.Getenv("DEV_SERVER_PORT")
	if devServerPort == "" {
		devServerPort = "8080"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-secret"
	}

	return &Config{
		APIBaseURL:         apiBaseURL,
		HTTPTimeoutSeconds: httpTimeout,
		APIRateLimit:       rateLimit,

		TokenStore:     tokenStore,
		TokenFile:      tokenFile,
		RedisURL:       os.Getenv("REDIS_URL"),
		RedisNamespace: redisNamespace,

		LogLevel: logLevel,

		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3Region:          s3Region,
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3BucketName:      os.Getenv("S3_BUCKET_NAME"),
		S3PublicURL:       os.Getenv("S3_PUBLIC_URL"),

		DevServerPort:     devServerPort,
		JWTSecret:         jwtSecret,
		AccessTokenMaxAge: accessTokenMaxAge,
	}, nil
}

// MediaEnabled reports whether every setting the media uploader needs is present.
func (c *Config) MediaEnabled() bool {
	return c.S3AccessKeyID != "" && c.S3SecretAccessKey != "" && c.S3BucketName != "" && c.S3PublicURL != ""
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".ministagram", "token.json")
	}
	return filepath.Join(home, ".ministagram", "token.json")
}
