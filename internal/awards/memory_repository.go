package awards

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	store map[string]map[string]Award // userID -> badgeID -> Award
}

// NewMemoryRepository returns an in-memory repository intended for local development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{store: make(map[string]map[string]Award)}
}

func (r *memoryRepository) ListAwards(_ context.Context, userID string) (map[string]Award, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Award, len(r.store[userID]))
	for id, a := range r.store[userID] {
		out[id] = a
	}
	return out, nil
}

func (r *memoryRepository) RecordAwards(_ context.Context, userID string, awards []Award) ([]Award, error) {
	if err := validateAll(userID, awards); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	userStore, ok := r.store[userID]
	if !ok {
		userStore = make(map[string]Award)
		r.store[userID] = userStore
	}

	var created []Award
	for _, a := range awards {
		if _, exists := userStore[a.BadgeID]; exists {
			continue
		}
		a.UserID = userID
		a.EarnedAt = a.EarnedAt.UTC()
		userStore[a.BadgeID] = a
		created = append(created, a)
	}
	return created, nil
}
