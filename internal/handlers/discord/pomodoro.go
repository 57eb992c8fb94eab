package discord

import (
	"context"
	"fmt"
	"math/rand"

	pomodoroService "github.com/calmhive/pomodoro-bot-discord/internal/services/pomodoro"
)

// Pomodoro command action values
const (
	PomodoroActionHelp  = "help"
	PomodoroActionStart = "start"
	PomodoroActionStop  = "stop"
	PomodoroActionJoin  = "join"
)

var congratsMessages = []string{
	"Great work! 🎉",
	"You crushed it! 💪",
	"Keep up the momentum! 🚀",
	"Fantastic progress! ⭐",
}

// PomodoroHandler runs the pomodoro timer commands
type PomodoroHandler struct {
	pomodoro pomodoroService.Service
}

// PomodoroHandlerConfig holds configuration for the pomodoro handler
type PomodoroHandlerConfig struct {
	PomodoroService pomodoroService.Service // Required
}

// NewPomodoroHandler creates a new pomodoro command handler
func NewPomodoroHandler(cfg *PomodoroHandlerConfig) *PomodoroHandler {
	if cfg.PomodoroService == nil {
		panic("pomodoro service is required")
	}

	return &PomodoroHandler{pomodoro: cfg.PomodoroService}
}

// Handle executes one pomodoro action
func (h *PomodoroHandler) Handle(ctx context.Context, req *Request) (*Response, error) {
	if req.Action == "" {
		return &Response{Message: "Invalid action", Ephemeral: true}, nil
	}

	if req.Action == PomodoroActionHelp {
		return &Response{
			Message: fmt.Sprintf(`**Pomodoro Technique Guide:**
1. Create a list of tasks ordered by importance
2. Set a timer to %d minutes
3. Work on a task for the duration of the timer
4. Take a %d minute break
5. After %d pomodoros, take a %d minutes break

Use `+"`/pomodoro start`"+` to begin!`,
				pomodoroService.WorkDuration,
				pomodoroService.ShortBreak,
				pomodoroService.PomodorosBeforeLongBreak,
				pomodoroService.LongBreak),
			Ephemeral: true,
		}, nil
	}

	if req.UserID == "" {
		return &Response{Message: "Invalid user", Ephemeral: true}, nil
	}

	switch req.Action {
	case PomodoroActionStop:
		h.pomodoro.ResetStreak(ctx, req.UserID)
		return &Response{Message: "Pomodoro timer stopped. Your streak has been reset."}, nil

	case PomodoroActionStart, PomodoroActionJoin:
		streak := h.pomodoro.RecordCompletion(ctx, req.UserID)

		if streak >= pomodoroService.PomodorosBeforeLongBreak {
			return &Response{
				Message: fmt.Sprintf("🏆 AMAZING! You've completed %d pomodoros! Time for a well-deserved %d minute break!\nhttps://giphy.com/gifs/studiosoriginals-3oz8xAFtqoOUUrsh7W",
					pomodoroService.PomodorosBeforeLongBreak, pomodoroService.LongBreak),
			}, nil
		}

		congrats := congratsMessages[rand.Intn(len(congratsMessages))]
		return &Response{
			Message: fmt.Sprintf("%s Time for a %d minute break.", congrats, pomodoroService.ShortBreak),
		}, nil

	default:
		return &Response{Message: "Invalid action", Ephemeral: true}, nil
	}
}
