package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port           string        `validate:"required,numeric"`
	Production     bool
	StoreBackend   string        `validate:"oneof=mongo memory"`
	MongoURI       string        `validate:"required_if=StoreBackend mongo"`
	DatabaseName   string        `validate:"required"`
	LogLevel       string        `validate:"oneof=trace debug info warn error"`
	LogFormat      string        `validate:"oneof=json console"`
	CORSOrigins    []string      `validate:"min=1"`
	// TrustedProxies may set X-Forwarded-For; empty trusts none.
	TrustedProxies []string      `validate:"dive,cidr|ip"`
	RateLimit      int           `validate:"gte=0"`
	RequestTimeout time.Duration `validate:"gt=0"`
	BucketName     string
	AWSRegion      string        `validate:"required_with=BucketName"`
	SignedURLTTL   time.Duration `validate:"gt=0"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg := &Config{
		Port:           getEnv("PORT", "3000"),
		Production:     getEnv("GIN_MODE", "debug") == "release",
		StoreBackend:   getEnv("STORE_BACKEND", "mongo"),
		MongoURI:       getEnv("MONGODB_URI", os.Getenv("MONGO_URI")),
		DatabaseName:   getEnv("DB_NAME", "flipbook"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "*")),
		TrustedProxies: splitList(os.Getenv("TRUSTED_PROXIES")),
		BucketName:     os.Getenv("BUCKET_NAME"),
		AWSRegion:      os.Getenv("AWS_REGION"),
		RequestTimeout: 10 * time.Second,
		SignedURLTTL:   10 * time.Minute,
	}

	var err error
	if cfg.RateLimit, err = strconv.Atoi(getEnv("RATE_LIMIT", "0")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT: %w", err)
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		return nil, err
	}
	if cfg.SignedURLTTL, err = getDuration("SIGNED_URL_TTL", cfg.SignedURLTTL); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ObjectStorageEnabled reports whether image uploads to S3 are configured.
func (c *Config) ObjectStorageEnabled() bool {
	return c.BucketName != ""
}

// getEnv returns the environment value for key, or defaultValue when unset.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
