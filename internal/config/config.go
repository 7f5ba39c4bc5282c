package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	BackendBaseURL   string // remote REST API the storefront fronts
	BackendTimeout   time.Duration
	CDNBaseURL       string // optional; empty disables image URL rewriting
	SiteConfigTTL    time.Duration
	AdminToken       string // guards cache invalidation; empty disables the endpoint
	JWTPublicKeyPath string

	KVBackend     string // "memory" | "redis" | "dynamo"
	RedisURL      string
	DismissalTTL  time.Duration
	DynamoKVTable string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	ReferenceS3Bucket string // optional override of the embedded reference tables
	ReferenceS3Key    string

	OTPRateLimit   float64 // requests/second per IP on /api/otp
	OTPRateBurst   int
	AllowedOrigins []string // CORS allowed origins
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		BackendBaseURL:   getEnv("BACKEND_BASE_URL", "http://localhost:8000"),
		BackendTimeout:   getEnvDuration("BACKEND_TIMEOUT", 10*time.Second),
		CDNBaseURL:       getEnv("CDN_BASE_URL", ""),
		SiteConfigTTL:    getEnvDuration("SITE_CONFIG_TTL", 5*time.Minute),
		AdminToken:       getEnv("ADMIN_TOKEN", ""),
		JWTPublicKeyPath: getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),

		KVBackend:     getEnv("KV_BACKEND", "memory"),
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
		DismissalTTL:  getEnvDuration("DISMISSAL_TTL", 90*24*time.Hour),
		DynamoKVTable: getEnv("DYNAMO_TABLE_KV", "storefront_kv"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		ReferenceS3Bucket: getEnv("REFERENCE_S3_BUCKET", ""),
		ReferenceS3Key:    getEnv("REFERENCE_S3_KEY", ""),

		OTPRateLimit:   getEnvFloat("OTP_RATE_LIMIT", 2),
		OTPRateBurst:   getEnvInt("OTP_RATE_BURST", 5),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// IsProduction reports whether APP_ENV selects production behaviour (JSON logs).
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("90s", "5m").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
