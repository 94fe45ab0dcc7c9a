// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Once loaded, configuration is read-only and handed to components through their
constructors. Nothing reads the environment after startup.
*/
package config

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Token backends accepted by TOKEN_BACKEND.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// # Configuration Schema

// Config holds all runtime configuration for the NullShip auth server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// TokenBackend selects where OTP and reset records live.
	TokenBackend string `env:"TOKEN_BACKEND" envDefault:"postgres"`

	// Key material
	EncryptionKey string        `env:"ENCRYPTION_KEY,required"`
	JWTSecretKey  string        `env:"JWT_SECRET_KEY,required"`
	SessionTTL    time.Duration `env:"SESSION_TTL"     envDefault:"24h"`
	BcryptCost    int           `env:"BCRYPT_COST"     envDefault:"10"`

	// Verification tokens
	OTPTTL        time.Duration `env:"OTP_TTL"         envDefault:"10m"`
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL" envDefault:"10m"`

	// Outbound links and branding
	AppName   string `env:"APP_NAME"   envDefault:"NullShip"`
	ClientURL string `env:"CLIENT_URL,required"`

	// Outbound email (SMTP). An empty host switches to the log-only mailer.
	SMTPHost           string        `env:"SMTP_HOST"`
	SMTPPort           int           `env:"SMTP_PORT"            envDefault:"587"`
	SMTPUsername       string        `env:"SMTP_USERNAME"`
	SMTPPassword       string        `env:"SMTP_PASSWORD"`
	SMTPFrom           string        `env:"SMTP_FROM"            envDefault:"no-reply@nullship.local"`
	SMTPTLS            bool          `env:"SMTP_TLS"             envDefault:"true"`
	EmailSendAttempts  int           `env:"EMAIL_SEND_ATTEMPTS"  envDefault:"3"`
	EmailRetryInterval time.Duration `env:"EMAIL_RETRY_INTERVAL" envDefault:"2s"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings that would only fail later, at request time.
func (c *Config) Validate() error {
	if _, err := c.EncryptionKeyBytes(); err != nil {
		return err
	}
	if c.TokenBackend != BackendPostgres && c.TokenBackend != BackendRedis {
		return fmt.Errorf("config: TOKEN_BACKEND must be %q or %q, got %q", BackendPostgres, BackendRedis, c.TokenBackend)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("config: SESSION_TTL must not be negative")
	}
	if c.OTPTTL <= 0 || c.ResetTokenTTL <= 0 {
		return fmt.Errorf("config: OTP_TTL and RESET_TOKEN_TTL must be positive")
	}
	if c.EmailSendAttempts < 1 {
		return fmt.Errorf("config: EMAIL_SEND_ATTEMPTS must be at least 1")
	}
	return nil
}

// EncryptionKeyBytes decodes ENCRYPTION_KEY into a 32-byte AES-256 key.
func (c *Config) EncryptionKeyBytes() ([]byte, error) {
	key, err := hex.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("config: ENCRYPTION_KEY is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("config: ENCRYPTION_KEY must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
