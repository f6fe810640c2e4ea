package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pulse/achievement-service/internal/badge"
)

// Repository persists journal entries and the auxiliary counters the badge engine reads.
type Repository interface {
	ListEntries(ctx context.Context, userID string) ([]badge.Entry, error)
	CreateEntry(ctx context.Context, userID string, entry badge.Entry) error
	GetCounters(ctx context.Context, userID string) (badge.Counters, error)
	IncrementCounter(ctx context.Context, userID string, counter badge.Counter, delta int) error
}

// ErrConflict indicates a duplicate entry identifier.
var ErrConflict = errors.New("journal entry already exists")

// ErrInvalidInput indicates the provided data failed validation.
var ErrInvalidInput = errors.New("invalid input")

// counterFields maps counters to the profile field that stores them.
var counterFields = map[badge.Counter]string{
	badge.CounterAnalyticsViews: "analytics_view_count",
}

func validateEntry(userID string, entry badge.Entry) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	if strings.TrimSpace(entry.ID) == "" {
		return fmt.Errorf("%w: entry id required", ErrInvalidInput)
	}
	return nil
}

func validateCounter(userID string, counter badge.Counter, delta int) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	if _, ok := counterFields[counter]; !ok {
		return fmt.Errorf("%w: unknown counter %q", ErrInvalidInput, counter)
	}
	if delta <= 0 {
		return fmt.Errorf("%w: counter delta must be positive", ErrInvalidInput)
	}
	return nil
}
