package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse/achievement-service/internal/badge"
)

const uniqueViolation = "23505"

type postgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository instantiates a PostgreSQL-backed repository.
func NewPostgresRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) ListEntries(ctx context.Context, userID string) ([]badge.Entry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, created_at, body, word_count, primary_mood, mood_score, is_voice_entry, has_reflection
		FROM journal_entries
		WHERE user_id = $1
		ORDER BY created_at NULLS LAST, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query journal entries: %w", err)
	}
	defer rows.Close()

	var entries []badge.Entry
	for rows.Next() {
		var (
			e         badge.Entry
			createdAt *time.Time
			mood      string
		)
		if err := rows.Scan(&e.ID, &createdAt, &e.Text, &e.WordCount, &mood, &e.MoodScore, &e.IsVoiceEntry, &e.HasReflection); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		if createdAt != nil {
			e.CreatedAt = *createdAt
		}
		e.PrimaryMood = badge.Mood(mood)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *postgresRepository) CreateEntry(ctx context.Context, userID string, entry badge.Entry) error {
	if err := validateEntry(userID, entry); err != nil {
		return err
	}

	var createdAt *time.Time
	if !entry.CreatedAt.IsZero() {
		t := entry.CreatedAt.UTC()
		createdAt = &t
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO journal_entries (id, user_id, created_at, body, word_count, primary_mood, mood_score, is_voice_entry, has_reflection)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID, userID, createdAt, entry.Text, entry.WordCount, string(entry.PrimaryMood),
		entry.MoodScore, entry.IsVoiceEntry, entry.HasReflection,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetCounters(ctx context.Context, userID string) (badge.Counters, error) {
	rows, err := r.db.Query(ctx, `SELECT counter, value FROM user_counters WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("query counters: %w", err)
	}

	counters, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (counterRow, error) {
		var c counterRow
		err := row.Scan(&c.name, &c.value)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan counters: %w", err)
	}

	out := make(badge.Counters, len(counters))
	for _, c := range counters {
		out[badge.Counter(c.name)] = int(c.value)
	}
	return out, nil
}

type counterRow struct {
	name  string
	value int64
}

func (r *postgresRepository) IncrementCounter(ctx context.Context, userID string, counter badge.Counter, delta int) error {
	if err := validateCounter(userID, counter, delta); err != nil {
		return err
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO user_counters (user_id, counter, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, counter) DO UPDATE SET value = user_counters.value + EXCLUDED.value`,
		userID, string(counter), delta,
	)
	if err != nil {
		return fmt.Errorf("increment counter: %w", err)
	}
	return nil
}
