package cache

import "time"

// Config holds configuration for cache creation.
type Config struct {
	// RedisURL selects the Redis backend when non-empty.
	RedisURL string

	// Prefix scopes Redis keys (ignored by the memory backend).
	Prefix string

	// DefaultTTL is the default TTL for cache entries.
	DefaultTTL time.Duration

	// CleanupInterval is the expired-entry sweep interval of the
	// memory backend.
	CleanupInterval time.Duration
}

// New creates a cache based on the provided configuration: Redis when
// a URL is configured, in-memory otherwise.
func New(cfg Config) (Cache, error) {
	if cfg.DefaultTTL == 0 {
		cfg.DefaultTTL = time.Minute
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = time.Minute
	}

	if cfg.RedisURL != "" {
		return NewRedisCache(cfg.RedisURL, cfg.Prefix, cfg.DefaultTTL)
	}
	return NewMemoryCache(cfg.DefaultTTL, cfg.CleanupInterval), nil
}
