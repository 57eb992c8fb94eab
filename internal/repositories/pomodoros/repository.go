package pomodoros

import (
	"context"

	"github.com/calmhive/pomodoro-bot-discord/internal/entities"
)

// Repository defines the interface for persisted pomodoro records.
// Records are created by the external session creator; this side only
// enumerates and rewrites them during the expiry sweep.
type Repository interface {
	// ListKeys enumerates every pomodoro record key
	ListKeys(ctx context.Context) ([]string, error)

	// Get retrieves and decodes one record by its full key. A stored
	// value that does not decode is an error for that record only.
	Get(ctx context.Context, key string) (*entities.PomodoroRecord, error)

	// Put stores a record under its full key, replacing any existing value
	Put(ctx context.Context, key string, record *entities.PomodoroRecord) error
}
