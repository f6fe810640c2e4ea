package config

import (
	"fmt"
	"strings"
	"time"

	sharedauth "github.com/pulse/achievement-service/internal/shared/auth"
	"github.com/pulse/achievement-service/internal/shared/envconfig"
)

// Config encapsulates the runtime configuration for the achievement service.
type Config struct {
	Port             string `validate:"required"`
	GCPProjectID     string
	DataStore        DataStore `validate:"required"`
	LogLevel         string
	DefaultTimezone  *time.Location
	RecomputeWorkers int `validate:"min=1,max=64"`
	InternalToken    string
	Auth             AuthConfig
	Firestore        FirestoreConfig
	Postgres         PostgresConfig
	Cache            CacheConfig
	RateLimit        RateLimitConfig
}

// DataStore enumerates supported persistence backends.
type DataStore string

const (
	// DataStoreMemory keeps journal entries and awards in-memory (useful for local development/testing).
	DataStoreMemory DataStore = "memory"
	// DataStoreFirestore stores data in Google Cloud Firestore.
	DataStoreFirestore DataStore = "firestore"
	// DataStorePostgres stores data in PostgreSQL through a pgx pool.
	DataStorePostgres DataStore = "postgres"
)

// CacheProvider selects the badge result cache.
type CacheProvider string

const (
	CacheNone   CacheProvider = "none"
	CacheMemory CacheProvider = "memory"
	CacheRedis  CacheProvider = "redis"
)

// AuthConfig stores authentication middleware setup.
type AuthConfig struct {
	Mode     sharedauth.Mode
	JWKSURL  string
	Audience string
	Issuer   string
}

// FirestoreConfig tailors Firestore client behavior.
type FirestoreConfig struct {
	EmulatorHost string
}

// PostgresConfig holds the connection string for DATASTORE=postgres.
type PostgresConfig struct {
	URL string
}

// CacheConfig controls the per-user badge result cache.
type CacheConfig struct {
	Provider CacheProvider
	RedisURL string
	TTL      time.Duration `validate:"gte=0"`
}

// RateLimitConfig bounds write traffic per user.
type RateLimitConfig struct {
	Enabled   bool
	PerSecond float64 `validate:"gte=0"`
	Burst     int     `validate:"gte=0"`
}

// Load reads environment variables into Config with validation.
func Load() (Config, error) {
	if err := envconfig.LoadDotEnv(); err != nil {
		return Config{}, err
	}

	tzName := envconfig.Get("DEFAULT_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return Config{}, fmt.Errorf("DEFAULT_TIMEZONE: %w", err)
	}

	workers, err := envconfig.GetInt("RECOMPUTE_WORKERS", 8)
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := envconfig.GetDuration("CACHE_TTL", 5*time.Minute)
	if err != nil {
		return Config{}, err
	}
	rateEnabled, err := envconfig.GetBool("RATE_LIMIT_ENABLED", true)
	if err != nil {
		return Config{}, err
	}
	burst, err := envconfig.GetInt("RATE_LIMIT_BURST", 30)
	if err != nil {
		return Config{}, err
	}
	perSecond, err := envconfig.GetInt("RATE_LIMIT_PER_SECOND", 5)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:             envconfig.Get("PORT", "8080"),
		GCPProjectID:     envconfig.Get("GCP_PROJECT_ID", ""),
		DataStore:        DataStore(strings.ToLower(envconfig.Get("DATASTORE", string(DataStoreMemory)))),
		LogLevel:         envconfig.Get("LOG_LEVEL", "info"),
		DefaultTimezone:  loc,
		RecomputeWorkers: workers,
		InternalToken:    strings.TrimSpace(envconfig.Get("INTERNAL_API_TOKEN", "")),
		Auth: AuthConfig{
			Mode:     sharedauth.Mode(strings.ToLower(envconfig.Get("AUTH_MODE", string(sharedauth.ModeNoop)))),
			JWKSURL:  envconfig.Get("CLERK_JWKS_URL", ""),
			Audience: envconfig.Get("CLERK_AUDIENCE", ""),
			Issuer:   envconfig.Get("CLERK_ISSUER", ""),
		},
		Firestore: FirestoreConfig{
			EmulatorHost: envconfig.Get("FIRESTORE_EMULATOR_HOST", ""),
		},
		Postgres: PostgresConfig{
			URL: envconfig.Get("DATABASE_URL", ""),
		},
		Cache: CacheConfig{
			Provider: CacheProvider(strings.ToLower(envconfig.Get("CACHE_PROVIDER", string(CacheMemory)))),
			RedisURL: envconfig.Get("REDIS_URL", ""),
			TTL:      cacheTTL,
		},
		RateLimit: RateLimitConfig{
			Enabled:   rateEnabled,
			PerSecond: float64(perSecond),
			Burst:     burst,
		},
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validate(cfg Config) error {
	if err := envconfig.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	switch cfg.DataStore {
	case DataStoreMemory:
		// no-op
	case DataStoreFirestore:
		if cfg.GCPProjectID == "" {
			return fmt.Errorf("gcp project id required when datastore=firestore")
		}
	case DataStorePostgres:
		if cfg.Postgres.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATASTORE=postgres")
		}
	default:
		return fmt.Errorf("unsupported datastore: %s", cfg.DataStore)
	}

	switch cfg.Cache.Provider {
	case CacheNone, CacheMemory:
		// no-op
	case CacheRedis:
		if cfg.Cache.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_PROVIDER=redis")
		}
	default:
		return fmt.Errorf("unsupported cache provider: %s", cfg.Cache.Provider)
	}

	if cfg.RateLimit.Enabled && (cfg.RateLimit.PerSecond <= 0 || cfg.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit needs a positive rate and burst when enabled")
	}

	switch cfg.Auth.Mode {
	case sharedauth.ModeClerk:
		if cfg.Auth.JWKSURL == "" {
			return fmt.Errorf("CLERK_JWKS_URL is required when AUTH_MODE=clerk")
		}
	case sharedauth.ModeNoop:
		// no-op
	default:
		return fmt.Errorf("unsupported auth mode: %s", cfg.Auth.Mode)
	}

	return nil
}
