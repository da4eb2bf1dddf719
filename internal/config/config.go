// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// MinSessionSecretLength is the minimum required length for the session
// secret. 32 bytes matches a 256-bit key.
const MinSessionSecretLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"NLF_DB_PATH" envDefault:"./data/meals.db"`
	SessionSecret string `env:"NLF_SESSION_SECRET,required"`
	ServerHost    string `env:"NLF_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"NLF_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"NLF_ENV" envDefault:"development"`
	LogLevel      string `env:"NLF_LOG_LEVEL" envDefault:"info"`
	BaseURL       string `env:"NLF_BASE_URL" envDefault:"http://localhost:8080"`

	// Image storage. In development images are written under PublicDir
	// and served from /images/; in production they go to S3-compatible
	// object storage.
	PublicDir     string `env:"NLF_PUBLIC_DIR" envDefault:"./public"`
	MaxUploadSize int64  `env:"NLF_MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB
	ImageMaxEdge  int    `env:"NLF_IMAGE_MAX_EDGE" envDefault:"2048"`

	// S3 / MinIO object storage (production)
	S3Endpoint      string `env:"NLF_S3_ENDPOINT"` // e.g. http://minio:9000
	S3Region        string `env:"NLF_S3_REGION" envDefault:"us-east-1"`
	S3Bucket        string `env:"NLF_S3_BUCKET" envDefault:"meals"`
	S3AccessKey     string `env:"NLF_S3_ACCESS_KEY"`
	S3SecretKey     string `env:"NLF_S3_SECRET_KEY"`
	S3PublicBaseURL string `env:"NLF_S3_PUBLIC_BASE_URL"`

	// Google OAuth
	GoogleClientID     string `env:"NLF_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"NLF_GOOGLE_CLIENT_SECRET"`

	// Cache configuration. Redis is optional; without it the meal cache
	// runs in memory.
	RedisURL        string `env:"NLF_REDIS_URL"`
	CachePrefix     string `env:"NLF_CACHE_PREFIX" envDefault:"nlf:"`
	CacheTTL        int    `env:"NLF_CACHE_TTL" envDefault:"60"` // seconds
	SessionCacheTTL int    `env:"NLF_SESSION_CACHE_TTL" envDefault:"300"`

	// Orphaned-image cleanup. Empty schedule disables the sweeper and
	// preserves the original leak-orphans behavior.
	ImageCleanupSchedule string `env:"NLF_IMAGE_CLEANUP_SCHEDULE"`
	ImageCleanupGraceMin int    `env:"NLF_IMAGE_CLEANUP_GRACE_MIN" envDefault:"60"`
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

// OAuthEnabled returns true if Google OAuth credentials are configured.
func (c Config) OAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// ImageCleanupEnabled returns true if the orphaned-image sweeper is configured.
func (c Config) ImageCleanupEnabled() bool {
	return c.ImageCleanupSchedule != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("NLF_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("NLF_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !cfg.IsDevelopment() {
		if cfg.S3Endpoint == "" || cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
			return nil, fmt.Errorf("production requires NLF_S3_ENDPOINT, NLF_S3_ACCESS_KEY and NLF_S3_SECRET_KEY")
		}
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return cfg, nil
}
