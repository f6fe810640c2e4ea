package journal

import (
	"context"
	"sync"

	"github.com/pulse/achievement-service/internal/badge"
)

type memoryRepository struct {
	mu       sync.RWMutex
	entries  map[string][]badge.Entry // userID -> entries in insertion order
	ids      map[string]map[string]struct{}
	counters map[string]badge.Counters
}

// NewMemoryRepository returns an in-memory repository intended for local development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		entries:  make(map[string][]badge.Entry),
		ids:      make(map[string]map[string]struct{}),
		counters: make(map[string]badge.Counters),
	}
}

func (r *memoryRepository) ListEntries(_ context.Context, userID string) ([]badge.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.entries[userID]
	out := make([]badge.Entry, len(stored))
	for i, e := range stored {
		out[i] = cloneEntry(e)
	}
	return out, nil
}

func (r *memoryRepository) CreateEntry(_ context.Context, userID string, entry badge.Entry) error {
	if err := validateEntry(userID, entry); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ids, ok := r.ids[userID]
	if !ok {
		ids = make(map[string]struct{})
		r.ids[userID] = ids
	}
	if _, exists := ids[entry.ID]; exists {
		return ErrConflict
	}

	ids[entry.ID] = struct{}{}
	r.entries[userID] = append(r.entries[userID], cloneEntry(entry))
	return nil
}

func (r *memoryRepository) GetCounters(_ context.Context, userID string) (badge.Counters, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(badge.Counters, len(r.counters[userID]))
	for k, v := range r.counters[userID] {
		out[k] = v
	}
	return out, nil
}

func (r *memoryRepository) IncrementCounter(_ context.Context, userID string, counter badge.Counter, delta int) error {
	if err := validateCounter(userID, counter, delta); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.counters[userID]
	if !ok {
		c = make(badge.Counters)
		r.counters[userID] = c
	}
	c[counter] += delta
	return nil
}

func cloneEntry(e badge.Entry) badge.Entry {
	if e.MoodScore != nil {
		score := *e.MoodScore
		e.MoodScore = &score
	}
	return e
}
