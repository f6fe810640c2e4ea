package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const connectTimeout = 10 * time.Second

// Open connects a pgx pool to url, pings it and makes sure the schema exists.
func Open(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := poolConfig(url)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func poolConfig(url string) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 25
	cfg.MinConns = 5
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute
	cfg.HealthCheckPeriod = time.Minute
	return cfg, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS journal_entries (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL,
		created_at     TIMESTAMPTZ,
		body           TEXT NOT NULL DEFAULT '',
		word_count     INTEGER NOT NULL DEFAULT 0,
		primary_mood   TEXT NOT NULL DEFAULT '',
		mood_score     DOUBLE PRECISION,
		is_voice_entry BOOLEAN NOT NULL DEFAULT FALSE,
		has_reflection BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS journal_entries_user_created_idx ON journal_entries (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS user_counters (
		user_id TEXT NOT NULL,
		counter TEXT NOT NULL,
		value   BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, counter)
	)`,
	`CREATE TABLE IF NOT EXISTS user_badges (
		user_id     TEXT NOT NULL,
		badge_id    TEXT NOT NULL,
		tier        TEXT NOT NULL,
		earned_at   TIMESTAMPTZ NOT NULL,
		approximate BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (user_id, badge_id)
	)`,
}

// EnsureSchema creates the journal, counter and badge tables when missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
