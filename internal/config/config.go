package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port            int
	Environment     string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string

	// Database
	DatabaseURL         string
	DBMaxConnections    int
	DBConnectionTimeout time.Duration

	// Clerk Auth
	ClerkPublishableKey string
	ClerkSecretKey      string

	// Statement archive (S3)
	S3Bucket    string
	S3Region    string
	AWSEndpoint string // For LocalStack in development

	// Reporting
	BusinessTimezone string // IANA zone all calendar math is anchored to
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Port:                getEnvInt("PORT", 8080),
		Environment:         getEnv("ENVIRONMENT", "development"),
		ShutdownTimeout:     getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		AllowedOrigins:      getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000"}),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		DBMaxConnections:    getEnvInt("DB_MAX_CONNECTIONS", 25),
		DBConnectionTimeout: getEnvDuration("DB_CONNECTION_TIMEOUT", 30*time.Second),
		ClerkPublishableKey: getEnv("CLERK_PUBLISHABLE_KEY", ""),
		ClerkSecretKey:      getEnv("CLERK_SECRET_KEY", ""),
		S3Bucket:            getEnv("S3_BUCKET", ""),
		S3Region:            getEnv("S3_REGION", "sa-east-1"),
		AWSEndpoint:         getEnv("AWS_ENDPOINT", ""),
		BusinessTimezone:    getEnv("BUSINESS_TIMEZONE", "America/Sao_Paulo"),
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.ClerkSecretKey == "" && cfg.Environment == "production" {
		return nil, fmt.Errorf("CLERK_SECRET_KEY is required in production")
	}
	if _, err := time.LoadLocation(cfg.BusinessTimezone); err != nil {
		return nil, fmt.Errorf("invalid BUSINESS_TIMEZONE %q: %w", cfg.BusinessTimezone, err)
	}

	return cfg, nil
}

// Location resolves the configured business timezone. LoadFromEnv has
// already validated the zone name.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.BusinessTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
