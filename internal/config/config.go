// Package config loads the server configuration from environment
// variables plus docker-secret files for the credentials.
package config

import (
	"fmt"
	"time"

	"shelley-server/internal/utils"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the full server configuration.
type Config struct {
	Port        string `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`

	// Postgres
	DBHost        string        `envconfig:"DB_HOST" required:"true"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" required:"true"`
	DBName        string        `envconfig:"DB_NAME" required:"true"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_MINUTES" default:"5m"`
	// Secret field, loaded from a secret file.
	DBPassword string

	// Redis (narrative beat cache)
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// RabbitMQ (telemetry pipeline)
	RabbitMQURL string `envconfig:"RABBITMQ_URL" required:"true"`

	// HTTP surface
	AllowedOrigin string `envconfig:"ALLOWED_ORIGIN" default:"http://localhost:3000"`
	CookieSecure  bool   `envconfig:"COOKIE_SECURE" default:"false"`
	// SelfBaseURL is where the bridge gateway reports progress events,
	// normally this server's own address.
	SelfBaseURL string `envconfig:"SELF_BASE_URL" default:"http://localhost:8080"`

	// Secret fields, loaded from secret files.
	JWTSecret   string
	AdminSecret string
}

// GetDSN returns the Postgres connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// LoadConfig reads non-secret settings from the environment and secrets
// from /run/secrets (with env fallbacks for local runs).
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var err error
	cfg.DBPassword, err = utils.ReadSecretWithFallback("db_password", "DB_PASSWORD")
	if err != nil {
		return nil, err
	}
	cfg.JWTSecret, err = utils.ReadSecretWithFallback("jwt_secret", "JWT_SECRET")
	if err != nil {
		return nil, err
	}
	// Optional: without it the narrative admin endpoints refuse all calls.
	cfg.AdminSecret, _ = utils.ReadSecretWithFallback("admin_secret", "ADMIN_SECRET")

	return &cfg, nil
}
