package playersessions

import (
	"context"

	"github.com/calmhive/pomodoro-bot-discord/internal/entities"
)

// Repository defines the interface for playback session storage.
//
// All writes are unconditional overwrites keyed by guild ID: the
// backing store is shared across instances with no locking, so
// last-writer-wins is the contract and callers must not assume
// read-modify-write is safe.
type Repository interface {
	// Set stores a session record, replacing any existing record for the guild
	Set(ctx context.Context, record *entities.SessionRecord) error

	// Get retrieves the session record for a guild
	Get(ctx context.Context, guildID string) (*entities.SessionRecord, error)

	// Delete removes the session record for a guild. Deleting a
	// missing record is not an error.
	Delete(ctx context.Context, guildID string) error
}
