package pomodoros

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/calmhive/pomodoro-bot-discord/internal/entities"
	apperrors "github.com/calmhive/pomodoro-bot-discord/internal/errors"
)

// inMemoryRepository implements Repository over raw stored values so
// tests can seed malformed records the way a real store could hold them
type inMemoryRepository struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewInMemoryRepository creates a new in-memory pomodoro record repository
func NewInMemoryRepository() *inMemoryRepository {
	return &inMemoryRepository{
		values: make(map[string][]byte),
	}
}

// SeedRaw stores a raw value without validation, for tests
func (r *inMemoryRepository) SeedRaw(key string, value []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[key] = value
}

func (r *inMemoryRepository) ListKeys(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.values))
	for key := range r.values {
		keys = append(keys, key)
	}
	return keys, nil
}

func (r *inMemoryRepository) Get(ctx context.Context, key string) (*entities.PomodoroRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, exists := r.values[key]
	if !exists {
		return nil, apperrors.NotFoundf("pomodoro record not found: %s", key)
	}

	var record entities.PomodoroRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pomodoro record %s: %w", key, err)
	}

	return &record, nil
}

func (r *inMemoryRepository) Put(ctx context.Context, key string, record *entities.PomodoroRecord) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal pomodoro record: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[key] = data
	return nil
}
