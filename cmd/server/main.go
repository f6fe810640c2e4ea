package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pulse/achievement-service/internal/achievement"
	"github.com/pulse/achievement-service/internal/awards"
	"github.com/pulse/achievement-service/internal/badge"
	"github.com/pulse/achievement-service/internal/cache"
	"github.com/pulse/achievement-service/internal/config"
	"github.com/pulse/achievement-service/internal/httpapi"
	"github.com/pulse/achievement-service/internal/journal"
	"github.com/pulse/achievement-service/internal/postgres"
	sharedauth "github.com/pulse/achievement-service/internal/shared/auth"
	"github.com/pulse/achievement-service/internal/shared/logging"
	"github.com/pulse/achievement-service/internal/shared/metrics"
	"github.com/pulse/achievement-service/internal/shared/ratelimit"
	sharedserver "github.com/pulse/achievement-service/internal/shared/server"
)

const serviceName = "achievement-service"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config error: %w", err))
	}

	logger := logging.NewLogger(serviceName, cfg.LogLevel)

	catalog, err := badge.DefaultCatalog()
	if err != nil {
		panic(fmt.Errorf("badge catalog error: %w", err))
	}

	entries, awardRepo, cleanup, err := newRepositories(ctx, cfg)
	if err != nil {
		panic(fmt.Errorf("repository init error: %w", err))
	}
	defer cleanup()

	cacheCfg := cache.DefaultConfig()
	cacheCfg.Provider = cache.Provider(cfg.Cache.Provider)
	cacheCfg.RedisURL = cfg.Cache.RedisURL
	resultCache, err := cache.New(ctx, cacheCfg, logger)
	if err != nil {
		panic(fmt.Errorf("cache init error: %w", err))
	}
	defer resultCache.Close()

	m := metrics.New(prometheus.DefaultRegisterer)

	badgeService, err := achievement.NewService(
		badge.NewEvaluator(catalog),
		entries,
		awardRepo,
		achievement.NewSystemClock(),
		achievement.NewUUIDGenerator(),
		achievement.WithCache(resultCache, cfg.Cache.TTL),
		achievement.WithMetrics(m),
		achievement.WithLogger(logger),
		achievement.WithRecomputeWorkers(cfg.RecomputeWorkers),
	)
	if err != nil {
		panic(fmt.Errorf("achievement service init error: %w", err))
	}

	verifier, err := sharedauth.NewVerifier(sharedauth.Config{
		Mode:     cfg.Auth.Mode,
		JWKSURL:  cfg.Auth.JWKSURL,
		Audience: cfg.Auth.Audience,
		Issuer:   cfg.Auth.Issuer,
	})
	if err != nil {
		panic(fmt.Errorf("auth verifier error: %w", err))
	}

	apiOpts := httpapi.Options{
		Logger:          logger,
		DefaultLocation: cfg.DefaultTimezone,
		InternalToken:   cfg.InternalToken,
	}
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.New(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst, 10*time.Minute)
		go limiter.Run(ctx, time.Minute)
		apiOpts.WriteLimiter = limiter.Middleware(httpapi.RateLimitKey, func(r *http.Request) {
			m.RateLimited(r.URL.Path)
		})
	}

	router := sharedserver.NewRouter(serviceName, sharedserver.Options{
		Metrics:        m,
		MetricsHandler: metrics.Handler(prometheus.DefaultGatherer),
	}, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(sharedauth.Middleware(verifier))

			httpapi.RegisterRoutes(r, badgeService, apiOpts)
		})

		if !httpapi.RegisterInternalRoutes(r, badgeService, apiOpts) {
			logger.Warn("INTERNAL_API_TOKEN not set; internal routes disabled")
		}
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("achievement service starting",
		"port", cfg.Port,
		"datastore", cfg.DataStore,
		"cache", cfg.Cache.Provider,
		"badges", catalog.Len(),
	)

	if err := sharedserver.Run(ctx, srv, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}

func newRepositories(ctx context.Context, cfg config.Config) (journal.Repository, awards.Repository, func(), error) {
	switch cfg.DataStore {
	case config.DataStoreFirestore:
		if cfg.Firestore.EmulatorHost != "" {
			if err := os.Setenv("FIRESTORE_EMULATOR_HOST", cfg.Firestore.EmulatorHost); err != nil {
				return nil, nil, nil, fmt.Errorf("set FIRESTORE_EMULATOR_HOST: %w", err)
			}
		}

		client, err := firestore.NewClient(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("firestore client: %w", err)
		}

		cleanup := func() {
			_ = client.Close()
		}
		return journal.NewFirestoreRepository(client), awards.NewFirestoreRepository(client), cleanup, nil
	case config.DataStorePostgres:
		pool, err := postgres.Open(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, nil, err
		}
		return journal.NewPostgresRepository(pool), awards.NewPostgresRepository(pool), pool.Close, nil
	default:
		return journal.NewMemoryRepository(), awards.NewMemoryRepository(), func() {}, nil
	}
}
