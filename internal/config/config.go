// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application configuration from SCMS_-prefixed
// environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"SCMS_DB_PATH" envDefault:"./data/scms.db"`
	APISecret  string `env:"SCMS_API_SECRET,required"`
	ServerHost string `env:"SCMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"SCMS_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"SCMS_ENV" envDefault:"development"`
	LogLevel   string `env:"SCMS_LOG_LEVEL" envDefault:"info"`
	UploadsDir string `env:"SCMS_UPLOADS_DIR" envDefault:"./uploads"`

	// Cache configuration
	RedisURL     string `env:"SCMS_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"SCMS_CACHE_PREFIX" envDefault:"scms:"`   // Redis key prefix
	CacheTTL     int    `env:"SCMS_CACHE_TTL" envDefault:"3600"`       // Default cache TTL in seconds
	CacheMaxSize int    `env:"SCMS_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// CORS configuration
	AllowedOrigins []string `env:"SCMS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Rate limiting
	RateLimitPerMinute int `env:"SCMS_RATE_LIMIT_PER_MINUTE" envDefault:"120"`

	// Seeding configuration
	DoSeed bool `env:"SCMS_DO_SEED" envDefault:"false"` // Enable database seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// SlogLevel maps the configured log level string to a slog.Level.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MinAPISecretLength is the minimum required length for the API secret.
const MinAPISecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.APISecret) < MinAPISecretLength {
		return nil, fmt.Errorf("SCMS_API_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinAPISecretLength, len(cfg.APISecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.APISecret == weak {
			return nil, fmt.Errorf("SCMS_API_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.APISecret) {
		slog.Warn("SCMS_API_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character
// classes (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
