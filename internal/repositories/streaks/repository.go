package streaks

import "context"

// Repository defines the interface for per-user streak counters
type Repository interface {
	// Get returns the current streak for a user. A missing or
	// unparseable counter reads as 0.
	Get(ctx context.Context, userID string) (int, error)

	// Set stores the streak for a user, replacing any existing value
	Set(ctx context.Context, userID string, count int) error
}
