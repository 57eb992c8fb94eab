package playersessions

import (
	"context"
	"errors"
	"sync"

	"github.com/calmhive/pomodoro-bot-discord/internal/entities"
	apperrors "github.com/calmhive/pomodoro-bot-discord/internal/errors"
)

// inMemoryRepository implements Repository using in-memory storage
type inMemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*entities.SessionRecord
}

// NewInMemoryRepository creates a new in-memory session repository
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		records: make(map[string]*entities.SessionRecord),
	}
}

func (r *inMemoryRepository) Set(ctx context.Context, record *entities.SessionRecord) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}
	if record.GuildID == "" {
		return errors.New("record guild ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Copy to avoid external modifications
	recordCopy := *record
	r.records[record.GuildID] = &recordCopy

	return nil
}

func (r *inMemoryRepository) Get(ctx context.Context, guildID string) (*entities.SessionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.records[guildID]
	if !exists {
		return nil, apperrors.NotFoundf("no session record for guild %s", guildID)
	}

	recordCopy := *record
	return &recordCopy, nil
}

func (r *inMemoryRepository) Delete(ctx context.Context, guildID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, guildID)
	return nil
}
