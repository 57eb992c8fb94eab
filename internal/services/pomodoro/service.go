package pomodoro

import (
	"context"
	"log"

	"github.com/calmhive/pomodoro-bot-discord/internal/repositories/streaks"
)

// Durations of the pomodoro technique, in minutes
const (
	WorkDuration             = 25
	ShortBreak               = 5
	LongBreak                = 30
	PomodorosBeforeLongBreak = 4
)

// Service tracks per-user completion streaks. Storage failures are
// absorbed here: the caller gets a zero count and the user sees
// "streak not tracked" rather than a failed command.
type Service interface {
	// RecordCompletion increments and returns the user's streak.
	// Reaching the long-break threshold resets the stored streak to
	// zero; the returned count is still the threshold value so the
	// caller can celebrate it.
	RecordCompletion(ctx context.Context, userID string) int

	// ResetStreak sets the user's streak back to zero
	ResetStreak(ctx context.Context, userID string)
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Repository streaks.Repository // Required
}

type service struct {
	repository streaks.Repository
}

// NewService creates a new pomodoro service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Repository == nil {
		panic("repository is required")
	}

	return &service{repository: cfg.Repository}
}

// RecordCompletion increments and returns the user's streak
func (s *service) RecordCompletion(ctx context.Context, userID string) int {
	current, err := s.repository.Get(ctx, userID)
	if err != nil {
		log.Printf("Failed to read streak for user %s: %v", userID, err)
		return 0
	}

	count := current + 1
	if count >= PomodorosBeforeLongBreak {
		// The threshold completion earns the long break and starts
		// the next cycle from zero
		if err := s.repository.Set(ctx, userID, 0); err != nil {
			log.Printf("Failed to reset streak for user %s: %v", userID, err)
		}
		return count
	}

	if err := s.repository.Set(ctx, userID, count); err != nil {
		log.Printf("Failed to update streak for user %s: %v", userID, err)
		return 0
	}

	return count
}

// ResetStreak sets the user's streak back to zero
func (s *service) ResetStreak(ctx context.Context, userID string) {
	if err := s.repository.Set(ctx, userID, 0); err != nil {
		log.Printf("Failed to reset streak for user %s: %v", userID, err)
	}
}
