package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Cache stores opaque values under string keys with a time to live.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Provider names a cache implementation.
type Provider string

const (
	ProviderNone   Provider = "none"
	ProviderMemory Provider = "memory"
	ProviderRedis  Provider = "redis"
)

// Config selects and tunes the cache.
type Config struct {
	Provider        Provider
	RedisURL        string
	PoolSize        int
	MaxKeys         int
	CleanupInterval time.Duration
}

// DefaultConfig returns an in-memory cache configuration.
func DefaultConfig() Config {
	return Config{
		Provider:        ProviderMemory,
		MaxKeys:         10000,
		CleanupInterval: 5 * time.Minute,
		PoolSize:        10,
	}
}

// New builds the cache named by cfg.Provider.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (Cache, error) {
	switch cfg.Provider {
	case ProviderMemory:
		return NewMemoryCache(cfg), nil
	case ProviderRedis:
		return NewRedisCache(ctx, cfg, logger)
	case ProviderNone, "":
		return noopCache{}, nil
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", cfg.Provider)
	}
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) ([]byte, bool, error)          { return nil, false, nil }
func (noopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (noopCache) Delete(context.Context, string) error                     { return nil }
func (noopCache) Close() error                                             { return nil }
