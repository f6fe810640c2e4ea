package awards

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository instantiates a PostgreSQL-backed repository.
func NewPostgresRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) ListAwards(ctx context.Context, userID string) (map[string]Award, error) {
	rows, err := r.db.Query(ctx, `
		SELECT badge_id, tier, earned_at, approximate
		FROM user_badges
		WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("query awards: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Award)
	for rows.Next() {
		a := Award{UserID: userID}
		if err := rows.Scan(&a.BadgeID, &a.Tier, &a.EarnedAt, &a.Approximate); err != nil {
			return nil, fmt.Errorf("scan award: %w", err)
		}
		out[a.BadgeID] = a
	}
	return out, rows.Err()
}

func (r *postgresRepository) RecordAwards(ctx context.Context, userID string, awards []Award) ([]Award, error) {
	if err := validateAll(userID, awards); err != nil {
		return nil, err
	}
	awards = unique(awards)
	if len(awards) == 0 {
		return nil, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var created []Award
	for _, a := range awards {
		a.UserID = userID
		a.EarnedAt = a.EarnedAt.UTC()

		var badgeID string
		err := tx.QueryRow(ctx, `
			INSERT INTO user_badges (user_id, badge_id, tier, earned_at, approximate)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (user_id, badge_id) DO NOTHING
			RETURNING badge_id`,
			userID, a.BadgeID, a.Tier, a.EarnedAt, a.Approximate,
		).Scan(&badgeID)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("insert award %s: %w", a.BadgeID, err)
		}
		created = append(created, a)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit awards: %w", err)
	}
	return created, nil
}
