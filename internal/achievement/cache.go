package achievement

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pulse/achievement-service/internal/badge"
)

// cachedBadges is only valid for the calendar day and location it was computed for.
type cachedBadges struct {
	Day         string            `json:"day"`
	Location    string            `json:"location"`
	Results     []badge.Result    `json:"results"`
	Quality     badge.DataQuality `json:"quality"`
	EvaluatedAt time.Time         `json:"evaluatedAt"`
}

func cacheKey(userID string) string {
	return "badges:" + userID
}

func (s *service) cachedResults(ctx context.Context, userID string, now time.Time) (cachedBadges, bool) {
	if s.cache == nil {
		return cachedBadges{}, false
	}

	raw, ok, err := s.cache.Get(ctx, cacheKey(userID))
	if err != nil {
		s.logger.Warn("badge cache read failed", "userId", userID, "error", err)
	}
	if err != nil || !ok {
		s.metrics.CacheLookup(false)
		return cachedBadges{}, false
	}

	var cached cachedBadges
	if err := json.Unmarshal(raw, &cached); err != nil {
		s.logger.Warn("badge cache payload invalid", "userId", userID, "error", err)
		s.metrics.CacheLookup(false)
		return cachedBadges{}, false
	}
	if cached.Day != now.Format(time.DateOnly) || cached.Location != now.Location().String() {
		s.metrics.CacheLookup(false)
		return cachedBadges{}, false
	}

	s.metrics.CacheLookup(true)
	return cached, true
}

func (s *service) storeResults(ctx context.Context, userID string, ev evaluation) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}

	payload, err := json.Marshal(cachedBadges{
		Day:         ev.now.Format(time.DateOnly),
		Location:    ev.now.Location().String(),
		Results:     ev.results,
		Quality:     ev.quality,
		EvaluatedAt: ev.now,
	})
	if err != nil {
		s.logger.Warn("badge cache encode failed", "userId", userID, "error", err)
		return
	}
	if err := s.cache.Set(ctx, cacheKey(userID), payload, s.cacheTTL); err != nil {
		s.logger.Warn("badge cache write failed", "userId", userID, "error", err)
	}
}

func (s *service) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(userID)); err != nil {
		s.logger.Warn("badge cache invalidation failed", "userId", userID, "error", err)
	}
}
