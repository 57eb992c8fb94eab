package streaks

import (
	"context"
	"sync"
)

// inMemoryRepository implements Repository using in-memory storage
type inMemoryRepository struct {
	mu     sync.RWMutex
	counts map[string]int
}

// NewInMemoryRepository creates a new in-memory streak repository
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		counts: make(map[string]int),
	}
}

func (r *inMemoryRepository) Get(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.counts[userID], nil
}

func (r *inMemoryRepository) Set(ctx context.Context, userID string, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counts[userID] = count
	return nil
}
