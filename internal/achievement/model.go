package achievement

import (
	"context"
	"errors"
	"time"

	"github.com/pulse/achievement-service/internal/badge"
)

// Service exposes the badge catalog and per-user badge state.
type Service interface {
	ListBadges(ctx context.Context, filter ListFilter) ([]badge.Definition, error)
	GetBadge(ctx context.Context, id string) (badge.Definition, error)
	ListTiers(ctx context.Context) []badge.TierConfig
	GetTier(ctx context.Context, name string) (badge.TierConfig, error)
	GetBadgesMe(ctx context.Context, userID string, loc *time.Location) (*BadgesMeResponse, error)
	GetInProgress(ctx context.Context, userID string, loc *time.Location, limit int) ([]badge.Result, error)
	CheckBadge(ctx context.Context, userID, badgeID string, loc *time.Location) (*CheckBadgeResponse, error)
	RecordEntry(ctx context.Context, userID string, input EntryInput, loc *time.Location) (*RecordEntryResponse, error)
	RecordAnalyticsView(ctx context.Context, userID string, loc *time.Location) (*UnlockResponse, error)
	Recompute(ctx context.Context, userIDs []string, loc *time.Location) (*RecomputeResponse, error)
}

// Clock delivers the current time; extracted for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces unique identifiers for new entries.
type IDGenerator interface {
	NewID() string
}

var (
	// ErrMissingUserID indicates a call without an authenticated user.
	ErrMissingUserID = errors.New("missing user id")
	// ErrInvalidEntry indicates a journal entry that failed validation.
	ErrInvalidEntry = errors.New("invalid journal entry")
	// ErrInvalidCategory indicates an unknown badge category filter.
	ErrInvalidCategory = errors.New("invalid badge category")
	// ErrInvalidInput indicates other malformed input such as an empty recompute batch.
	ErrInvalidInput = errors.New("invalid input")
)

// ListFilter narrows ListBadges. Category and VisibleOnly combine.
type ListFilter struct {
	Category    string
	VisibleOnly bool
}

// EntryInput is a journal entry as submitted by the client. The mood fields are filled by
// the mood-analysis collaborator upstream.
type EntryInput struct {
	Text          string     `json:"text" validate:"max=50000"`
	WordCount     *int       `json:"wordCount,omitempty" validate:"omitempty,gte=0"`
	PrimaryMood   string     `json:"primaryMood,omitempty" validate:"omitempty,oneof=joyful excited calm content grateful hopeful sad angry anxious frustrated overwhelmed stressed"`
	MoodScore     *float64   `json:"moodScore,omitempty" validate:"omitempty,gte=0,lte=10"`
	IsVoiceEntry  bool       `json:"isVoiceEntry"`
	HasReflection bool       `json:"hasReflection"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
}

// BadgesMeResponse is the full badge state of one user.
type BadgesMeResponse struct {
	Badges      []badge.Result    `json:"badges"`
	EarnedCount int               `json:"earnedCount"`
	TotalCount  int               `json:"totalCount"`
	InProgress  []badge.Result    `json:"inProgress"`
	DataQuality badge.DataQuality `json:"dataQuality"`
	EvaluatedAt time.Time         `json:"evaluatedAt"`
}

// CheckBadgeResponse reports one badge and whether this call awarded it.
type CheckBadgeResponse struct {
	Badge    badge.Result `json:"badge"`
	Unlocked bool         `json:"unlocked"`
}

// UnlockResponse lists badges awarded by a write.
type UnlockResponse struct {
	Unlocked []badge.Result `json:"unlocked"`
}

// RecordEntryResponse is returned after saving a journal entry.
type RecordEntryResponse struct {
	Entry    badge.Entry    `json:"entry"`
	Unlocked []badge.Result `json:"unlocked"`
}

// RecomputeResponse summarizes a batch evaluation.
type RecomputeResponse struct {
	Users  []UserSummary `json:"users"`
	Failed int           `json:"failed"`
}

// UserSummary is the outcome of recomputing one user.
type UserSummary struct {
	UserID   string   `json:"userId"`
	Earned   int      `json:"earned"`
	Unlocked []string `json:"unlocked,omitempty"`
	Error    string   `json:"error,omitempty"`
}
