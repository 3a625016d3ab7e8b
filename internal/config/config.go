// Package config reads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	// DefaultJWTSecret is only fit for local development.
	DefaultJWTSecret = "change-me-in-production-0123456789"

	minJWTSecretLength = 32
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Env       string // dev, staging, prod (default: dev)
	Port      int    // HTTP server port (default: 8080)
	LogLevel  string // debug, info, warn, error (default: info)
	LogFormat string // json, text (default: json)

	DatabaseDriver string // postgres or sqlite (default: postgres)
	DatabaseURL    string // PostgreSQL DSN, built from POSTGRES_* when unset
	SQLitePath     string // SQLite database file (default: poll.db)

	JWTSecret      string
	JWTIssuer      string        // default: poll-api
	TokenTTL       time.Duration // default: 30m
	PasswordPepper string        // optional, mixed into every password hash

	RedisURL string // token denylist; in-memory when unset

	RequestTimeout      time.Duration // default: 10s
	ShutdownGracePeriod time.Duration // default: 30s
}

// LoadDotEnv loads a .env file from the working directory when present.
func LoadDotEnv() error {
	return godotenv.Load()
}

func LoadConfig() Config {
	cfg := Config{
		Env:       getEnvOrDefault("ENV", "dev"),
		Port:      getEnvIntOrDefault("PORT", 8080),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),

		DatabaseDriver: getEnvOrDefault("DATABASE_DRIVER", DriverPostgres),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SQLitePath:     getEnvOrDefault("SQLITE_PATH", "poll.db"),

		JWTSecret:      getEnvOrDefault("JWT_SECRET", DefaultJWTSecret),
		JWTIssuer:      getEnvOrDefault("JWT_ISSUER", "poll-api"),
		TokenTTL:       getEnvDurationOrDefault("TOKEN_TTL", 30*time.Minute),
		PasswordPepper: os.Getenv("PASSWORD_PEPPER"),

		RedisURL: os.Getenv("REDIS_URL"),

		RequestTimeout:      getEnvDurationOrDefault("REQUEST_TIMEOUT", 10*time.Second),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 30*time.Second),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = postgresURLFromEnv()
	}

	return cfg
}

// UsesDefaultSecret reports whether tokens would be signed with the
// development secret.
func (c Config) UsesDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("%w: unknown DATABASE_DRIVER %q", ErrInvalidConfig, c.DatabaseDriver)
	}

	if len(c.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("%w: JWT_SECRET must be at least %d bytes", ErrInvalidConfig, minJWTSecretLength)
	}
	if c.Env == "prod" && c.UsesDefaultSecret() {
		return fmt.Errorf("%w: JWT_SECRET must be set in prod", ErrInvalidConfig)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("%w: TOKEN_TTL must be positive", ErrInvalidConfig)
	}
	return nil
}

func postgresURLFromEnv() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnvOrDefault("POSTGRES_USER", "postgres"), os.Getenv("POSTGRES_PASSWORD")),
		Host:     getEnvOrDefault("POSTGRES_HOST", "localhost") + ":" + getEnvOrDefault("POSTGRES_PORT", "5432"),
		Path:     "/" + getEnvOrDefault("POSTGRES_DB", "poll"),
		RawQuery: "sslmode=" + getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}
	return u.String()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
