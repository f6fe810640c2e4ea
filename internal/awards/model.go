package awards

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Award records the first time a user earned a badge. Once stored it never changes.
type Award struct {
	UserID      string    `json:"userId"`
	BadgeID     string    `json:"badgeId"`
	Tier        string    `json:"tier"`
	EarnedAt    time.Time `json:"earnedAt"`
	Approximate bool      `json:"approximate,omitempty"`
}

// Repository stores awards write-once.
type Repository interface {
	ListAwards(ctx context.Context, userID string) (map[string]Award, error)
	// RecordAwards stores the awards that do not exist yet and returns only those. Existing
	// awards keep their original EarnedAt.
	RecordAwards(ctx context.Context, userID string, awards []Award) ([]Award, error)
}

// ErrInvalidAward indicates an award that can never be stored. Retrying will not help.
var ErrInvalidAward = errors.New("invalid award")

// ErrWriteConflict means another writer stored one of the awards first and nothing from the
// batch was written. Retrying stores the rest.
var ErrWriteConflict = errors.New("award write conflict")

func validate(userID string, a Award) error {
	switch {
	case strings.TrimSpace(userID) == "":
		return fmt.Errorf("%w: user id required", ErrInvalidAward)
	case a.UserID != "" && a.UserID != userID:
		return fmt.Errorf("%w: award for %s recorded under %s", ErrInvalidAward, a.UserID, userID)
	case strings.TrimSpace(a.BadgeID) == "":
		return fmt.Errorf("%w: badge id required", ErrInvalidAward)
	case a.EarnedAt.IsZero():
		return fmt.Errorf("%w: earned at required for %s", ErrInvalidAward, a.BadgeID)
	}
	return nil
}

func validateAll(userID string, awards []Award) error {
	for _, a := range awards {
		if err := validate(userID, a); err != nil {
			return err
		}
	}
	return nil
}

// unique drops repeated badge ids, keeping the first.
func unique(awards []Award) []Award {
	seen := make(map[string]struct{}, len(awards))
	out := make([]Award, 0, len(awards))
	for _, a := range awards {
		if _, ok := seen[a.BadgeID]; ok {
			continue
		}
		seen[a.BadgeID] = struct{}{}
		out = append(out, a)
	}
	return out
}
