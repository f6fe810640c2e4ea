package achievement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/pulse/achievement-service/internal/awards"
	"github.com/pulse/achievement-service/internal/badge"
	"github.com/pulse/achievement-service/internal/cache"
	"github.com/pulse/achievement-service/internal/journal"
	"github.com/pulse/achievement-service/internal/shared/metrics"
)

const (
	defaultCacheTTL         = 5 * time.Minute
	defaultRecomputeWorkers = 8
	defaultInProgressLimit  = 3
	maxRecomputeBatch       = 1000
	awardRetries            = 3
)

var validate = validator.New()

// Option customizes the service.
type Option func(*service)

// WithCache caches badge results per user for ttl. Writes invalidate the cached value.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithMetrics records evaluation and unlock metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *service) { s.metrics = m }
}

// WithLogger sets the logger used for unlocks and data-quality warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecomputeWorkers bounds how many users Recompute evaluates at once.
func WithRecomputeWorkers(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.workers = n
		}
	}
}

type service struct {
	evaluator *badge.Evaluator
	entries   journal.Repository
	awardRepo awards.Repository
	clock     Clock
	ids       IDGenerator

	cache      cache.Cache
	cacheTTL   time.Duration
	metrics    *metrics.Metrics
	logger     *slog.Logger
	workers    int
	newBackOff func() backoff.BackOff
}

// NewService constructs the badge service with the provided collaborators.
func NewService(evaluator *badge.Evaluator, entries journal.Repository, awardRepo awards.Repository, clock Clock, ids IDGenerator, opts ...Option) (Service, error) {
	if evaluator == nil {
		return nil, errors.New("evaluator is required")
	}
	if entries == nil {
		return nil, errors.New("journal repository is required")
	}
	if awardRepo == nil {
		return nil, errors.New("award repository is required")
	}
	if clock == nil {
		return nil, errors.New("clock is required")
	}
	if ids == nil {
		return nil, errors.New("id generator is required")
	}

	s := &service{
		evaluator: evaluator,
		entries:   entries,
		awardRepo: awardRepo,
		clock:     clock,
		ids:       ids,
		cacheTTL:  defaultCacheTTL,
		logger:    slog.Default(),
		workers:   defaultRecomputeWorkers,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *service) ListBadges(_ context.Context, filter ListFilter) ([]badge.Definition, error) {
	catalog := s.evaluator.Catalog()

	name := strings.ToLower(strings.TrimSpace(filter.Category))
	if name == "" {
		if filter.VisibleOnly {
			return catalog.Visible(), nil
		}
		return catalog.All(), nil
	}

	category, ok := badge.ParseCategory(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCategory, filter.Category)
	}
	defs := catalog.ByCategory(category)
	if !filter.VisibleOnly {
		return defs, nil
	}
	out := defs[:0]
	for _, d := range defs {
		if !d.Hidden {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *service) GetBadge(_ context.Context, id string) (badge.Definition, error) {
	return s.evaluator.Catalog().Badge(id)
}

func (s *service) ListTiers(_ context.Context) []badge.TierConfig {
	return badge.Tiers()
}

func (s *service) GetTier(_ context.Context, name string) (badge.TierConfig, error) {
	return badge.TierConfigFor(badge.Tier(strings.ToLower(strings.TrimSpace(name))))
}

func (s *service) GetBadgesMe(ctx context.Context, userID string, loc *time.Location) (*BadgesMeResponse, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	now := s.clock.Now().In(orUTC(loc))

	if cached, ok := s.cachedResults(ctx, userID, now); ok {
		return buildBadgesMe(cached.Results, cached.Quality, cached.EvaluatedAt), nil
	}

	ev, err := s.evaluateAll(ctx, userID, now, "badges_me")
	if err != nil {
		return nil, err
	}
	s.storeResults(ctx, userID, ev)
	return buildBadgesMe(ev.results, ev.quality, ev.now), nil
}

func (s *service) GetInProgress(ctx context.Context, userID string, loc *time.Location, limit int) ([]badge.Result, error) {
	resp, err := s.GetBadgesMe(ctx, userID, loc)
	if err != nil {
		return nil, err
	}
	return orEmpty(badge.InProgress(resp.Badges, limit)), nil
}

func (s *service) CheckBadge(ctx context.Context, userID, badgeID string, loc *time.Location) (*CheckBadgeResponse, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	def, err := s.evaluator.Catalog().Badge(badgeID)
	if err != nil {
		return nil, err
	}
	loc = orUTC(loc)
	now := s.clock.Now().In(loc)

	snap, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.evaluator.EvaluateBadge(badgeID, snap.entries, snap.counters, now)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveEvaluation("check_badge", time.Since(start))

	results := []badge.Result{result}
	created, err := s.persist(ctx, userID, now, results, snap.awarded)
	if err != nil {
		return nil, err
	}
	unlocked := applyAwards(results, snap.awarded, created, loc)
	if len(unlocked) > 0 {
		s.invalidate(ctx, userID)
	}

	if def.Hidden && !results[0].Earned {
		return nil, &badge.BadgeNotFoundError{ID: badgeID}
	}
	return &CheckBadgeResponse{Badge: results[0], Unlocked: len(unlocked) > 0}, nil
}

func (s *service) RecordEntry(ctx context.Context, userID string, input EntryInput, loc *time.Location) (*RecordEntryResponse, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	input.PrimaryMood = strings.ToLower(strings.TrimSpace(input.PrimaryMood))
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEntry, err.Error())
	}

	now := s.clock.Now()
	createdAt := now
	if input.CreatedAt != nil {
		if input.CreatedAt.After(now) {
			return nil, fmt.Errorf("%w: createdAt is in the future", ErrInvalidEntry)
		}
		createdAt = *input.CreatedAt
	}

	words := badge.CountWords(input.Text)
	if input.WordCount != nil {
		words = *input.WordCount
	}

	entry := badge.Entry{
		ID:            s.ids.NewID(),
		CreatedAt:     createdAt.UTC(),
		Text:          input.Text,
		WordCount:     words,
		PrimaryMood:   badge.Mood(input.PrimaryMood),
		MoodScore:     input.MoodScore,
		IsVoiceEntry:  input.IsVoiceEntry,
		HasReflection: input.HasReflection,
	}
	if err := s.entries.CreateEntry(ctx, userID, entry); err != nil {
		return nil, fmt.Errorf("save journal entry: %w", err)
	}
	s.invalidate(ctx, userID)

	ev, err := s.evaluateAll(ctx, userID, now.In(orUTC(loc)), "record_entry")
	if err != nil {
		return nil, err
	}
	s.storeResults(ctx, userID, ev)

	return &RecordEntryResponse{Entry: entry, Unlocked: orEmpty(ev.unlocked)}, nil
}

func (s *service) RecordAnalyticsView(ctx context.Context, userID string, loc *time.Location) (*UnlockResponse, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if err := s.entries.IncrementCounter(ctx, userID, badge.CounterAnalyticsViews, 1); err != nil {
		return nil, fmt.Errorf("increment analytics views: %w", err)
	}
	s.invalidate(ctx, userID)

	ev, err := s.evaluateAll(ctx, userID, s.clock.Now().In(orUTC(loc)), "analytics_view")
	if err != nil {
		return nil, err
	}
	s.storeResults(ctx, userID, ev)

	return &UnlockResponse{Unlocked: orEmpty(ev.unlocked)}, nil
}

func (s *service) Recompute(ctx context.Context, userIDs []string, loc *time.Location) (*RecomputeResponse, error) {
	ids := uniqueIDs(userIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one user id is required", ErrInvalidInput)
	}
	if len(ids) > maxRecomputeBatch {
		return nil, fmt.Errorf("%w: at most %d users per batch", ErrInvalidInput, maxRecomputeBatch)
	}
	loc = orUTC(loc)

	summaries := make([]UserSummary, len(ids))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, userID := range ids {
		g.Go(func() error {
			summaries[i] = s.recomputeUser(ctx, userID, loc)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp := &RecomputeResponse{Users: summaries}
	for _, sum := range summaries {
		if sum.Error != "" {
			resp.Failed++
		}
	}
	s.logger.Info("badge recompute finished", "users", len(summaries), "failed", resp.Failed)
	return resp, nil
}

func (s *service) recomputeUser(ctx context.Context, userID string, loc *time.Location) UserSummary {
	sum := UserSummary{UserID: userID}
	if err := ctx.Err(); err != nil {
		sum.Error = err.Error()
		return sum
	}

	ev, err := s.evaluateAll(ctx, userID, s.clock.Now().In(loc), "recompute")
	if err != nil {
		s.logger.Error("badge recompute failed", "userId", userID, "error", err)
		sum.Error = err.Error()
		return sum
	}
	s.storeResults(ctx, userID, ev)

	sum.Earned = len(badge.Earned(ev.results))
	for _, r := range ev.unlocked {
		sum.Unlocked = append(sum.Unlocked, r.ID)
	}
	return sum
}

type snapshot struct {
	entries  []badge.Entry
	counters badge.Counters
	awarded  map[string]awards.Award
}

type evaluation struct {
	results  []badge.Result
	unlocked []badge.Result
	quality  badge.DataQuality
	now      time.Time
}

func (s *service) load(ctx context.Context, userID string) (snapshot, error) {
	var snap snapshot

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		entries, err := s.entries.ListEntries(ctx, userID)
		if err != nil {
			return fmt.Errorf("list journal entries: %w", err)
		}
		snap.entries = entries
		return nil
	})

	g.Go(func() error {
		counters, err := s.entries.GetCounters(ctx, userID)
		if err != nil {
			return fmt.Errorf("get counters: %w", err)
		}
		snap.counters = counters
		return nil
	})

	g.Go(func() error {
		awarded, err := s.awardRepo.ListAwards(ctx, userID)
		if err != nil {
			return fmt.Errorf("list awards: %w", err)
		}
		snap.awarded = awarded
		return nil
	})

	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}

// evaluateAll loads the user's history, evaluates every badge at now and persists new awards.
func (s *service) evaluateAll(ctx context.Context, userID string, now time.Time, operation string) (evaluation, error) {
	snap, err := s.load(ctx, userID)
	if err != nil {
		return evaluation{}, err
	}

	start := time.Now()
	results := s.evaluator.EvaluateAll(snap.entries, snap.counters, now)
	s.metrics.ObserveEvaluation(operation, time.Since(start))

	quality := s.inspect(userID, snap.entries, now)

	created, err := s.persist(ctx, userID, now, results, snap.awarded)
	if err != nil {
		return evaluation{}, err
	}
	unlocked := applyAwards(results, snap.awarded, created, now.Location())

	return evaluation{results: results, unlocked: unlocked, quality: quality, now: now}, nil
}

func (s *service) inspect(userID string, entries []badge.Entry, now time.Time) badge.DataQuality {
	q := badge.Inspect(entries, now)
	if q.Clean() {
		return q
	}
	s.metrics.EntriesSkipped("missing_timestamp", q.MissingTimestamp)
	s.metrics.EntriesSkipped("future_timestamp", q.FutureTimestamp)
	s.metrics.EntriesSkipped("invalid_word_count", q.InvalidWordCount)
	s.metrics.EntriesSkipped("invalid_mood_score", q.InvalidMoodScore)
	s.logger.Warn("malformed journal entries skipped",
		"userId", userID,
		"missingTimestamp", q.MissingTimestamp,
		"futureTimestamp", q.FutureTimestamp,
		"invalidWordCount", q.InvalidWordCount,
		"invalidMoodScore", q.InvalidMoodScore,
	)
	return q
}

// persist stores awards for earned badges that have none yet and returns the ones created
// by this call, keyed by badge id.
func (s *service) persist(ctx context.Context, userID string, now time.Time, results []badge.Result, awarded map[string]awards.Award) (map[string]awards.Award, error) {
	var pending []awards.Award
	for _, r := range results {
		if !r.Earned {
			continue
		}
		if _, ok := awarded[r.ID]; ok {
			continue
		}
		a := awards.Award{UserID: userID, BadgeID: r.ID, Tier: string(r.Tier), EarnedAt: now, Approximate: true}
		if r.EarnedAt != nil {
			a.EarnedAt = *r.EarnedAt
			a.Approximate = r.EarnedAtApproximate
		}
		pending = append(pending, a)
	}
	if len(pending) == 0 {
		return nil, nil
	}

	created, err := s.recordAwards(ctx, userID, pending)
	if err != nil {
		return nil, err
	}

	out := make(map[string]awards.Award, len(created))
	for _, a := range created {
		out[a.BadgeID] = a
		s.metrics.BadgeUnlocked(a.Tier)
		s.logger.Info("badge unlocked", "userId", userID, "badgeId", a.BadgeID, "tier", a.Tier)
	}
	return out, nil
}

func (s *service) recordAwards(ctx context.Context, userID string, pending []awards.Award) ([]awards.Award, error) {
	var created []awards.Award
	op := func() error {
		out, err := s.awardRepo.RecordAwards(ctx, userID, pending)
		if errors.Is(err, awards.ErrInvalidAward) {
			return backoff.Permanent(err)
		}
		if err != nil {
			return err
		}
		created = out
		return nil
	}
	notify := func(err error, wait time.Duration) {
		s.logger.Warn("record awards failed, retrying", "userId", userID, "error", err, "retryIn", wait)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), awardRetries), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return nil, fmt.Errorf("record awards: %w", err)
	}
	return created, nil
}

// applyAwards marks every badge with a stored award as earned at the stored time and returns
// the results awarded by this call. Awards are permanent even when the history no longer
// satisfies the badge.
func applyAwards(results []badge.Result, stored, created map[string]awards.Award, loc *time.Location) []badge.Result {
	var unlocked []badge.Result
	for i := range results {
		r := &results[i]
		if a, ok := created[r.ID]; ok {
			stamp(r, a, loc)
			unlocked = append(unlocked, *r)
			continue
		}
		if a, ok := stored[r.ID]; ok {
			stamp(r, a, loc)
		}
	}
	return unlocked
}

func stamp(r *badge.Result, a awards.Award, loc *time.Location) {
	at := a.EarnedAt.In(loc)
	r.Earned = true
	r.Progress = 1
	r.EarnedAt = &at
	r.EarnedAtApproximate = a.Approximate
}

func buildBadgesMe(results []badge.Result, quality badge.DataQuality, at time.Time) *BadgesMeResponse {
	visible := orEmpty(badge.VisibleOrDiscovered(results))
	return &BadgesMeResponse{
		Badges:      visible,
		EarnedCount: len(badge.Earned(visible)),
		TotalCount:  len(visible),
		InProgress:  orEmpty(badge.InProgress(visible, defaultInProgressLimit)),
		DataQuality: quality,
		EvaluatedAt: at,
	}
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

func orEmpty(results []badge.Result) []badge.Result {
	if results == nil {
		return []badge.Result{}
	}
	return results
}
