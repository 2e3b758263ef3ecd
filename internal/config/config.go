// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host    string
	Port    string
	Env     string // "development", "production", "testing"
	BaseURL string // public origin, used in email links

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// S3-compatible object storage (optional)
	S3Endpoint      string
	S3Region        string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBucket  string
	S3PrivateBucket string
	S3PublicURL     string

	// Mailjet
	MailjetPublicKey  string
	MailjetPrivateKey string
	MailSenderName    string
	MailSenderAddr    string

	// Billing provider
	BillingAPIURL string
	BillingAPIKey string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. A .env file is loaded first if one
// exists. Returns an error if critical values are missing in production mode.
func Load() (*Config, error) {
	// Best-effort: a missing .env file is not an error.
	godotenv.Load()

	cfg := &Config{
		Host:    envOrDefault("APP_HOST", "0.0.0.0"),
		Port:    envOrDefault("APP_PORT", "8080"),
		Env:     envOrDefault("APP_ENV", "development"),
		BaseURL: envOrDefault("APP_BASE_URL", "http://localhost:8080"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "inkwell"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "inkwell"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		S3Region:        envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey:     os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:     os.Getenv("S3_SECRET_KEY"),
		S3PublicBucket:  envOrDefault("S3_PUBLIC_BUCKET", "inkwell-public"),
		S3PrivateBucket: envOrDefault("S3_PRIVATE_BUCKET", "inkwell-private"),
		S3PublicURL:     os.Getenv("S3_PUBLIC_URL"),

		MailjetPublicKey:  os.Getenv("MAILJET_PUBLIC_KEY"),
		MailjetPrivateKey: os.Getenv("MAILJET_PRIVATE_KEY"),
		MailSenderName:    envOrDefault("MAIL_SENDER_NAME", "Inkwell"),
		MailSenderAddr:    envOrDefault("MAIL_SENDER_ADDR", "hello@inkwell.local"),

		BillingAPIURL: os.Getenv("BILLING_API_URL"),
		BillingAPIKey: os.Getenv("BILLING_API_KEY"),
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// SecureCookies reports whether cookies should be restricted to TLS.
func (c *Config) SecureCookies() bool {
	return c.Env == "production"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
