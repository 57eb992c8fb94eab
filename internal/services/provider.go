package services

import (
	"time"

	"github.com/calmhive/pomodoro-bot-discord/internal/repositories/playersessions"
	"github.com/calmhive/pomodoro-bot-discord/internal/repositories/streaks"
	"github.com/calmhive/pomodoro-bot-discord/internal/services/assets"
	playerService "github.com/calmhive/pomodoro-bot-discord/internal/services/player"
	pomodoroService "github.com/calmhive/pomodoro-bot-discord/internal/services/pomodoro"
	"github.com/calmhive/pomodoro-bot-discord/internal/voice"
)

// Provider holds all service instances
type Provider struct {
	AssetService    assets.Service
	PomodoroService pomodoroService.Service

	// PlayerService is only set when a voice connector is available
	// (the gateway deployment); the webhook deployment runs without it
	PlayerService playerService.Service
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	AssetService      assets.Service // Required
	SessionRepository playersessions.Repository
	StreakRepository  streaks.Repository
	Connector         voice.Connector // Optional, gateway deployment only
	TrackKey          string
	ReconnectWait     time.Duration
}

// NewProvider creates a new service provider with all services initialized
func NewProvider(cfg *ProviderConfig) *Provider {
	// Use in-memory repositories if none provided
	sessionRepo := cfg.SessionRepository
	if sessionRepo == nil {
		sessionRepo = playersessions.NewInMemoryRepository()
	}

	streakRepo := cfg.StreakRepository
	if streakRepo == nil {
		streakRepo = streaks.NewInMemoryRepository()
	}

	provider := &Provider{
		AssetService: cfg.AssetService,
		PomodoroService: pomodoroService.NewService(&pomodoroService.ServiceConfig{
			Repository: streakRepo,
		}),
	}

	if cfg.Connector != nil {
		provider.PlayerService = playerService.NewService(&playerService.ServiceConfig{
			Repository:    sessionRepo,
			Assets:        cfg.AssetService,
			Connector:     cfg.Connector,
			TrackKey:      cfg.TrackKey,
			ReconnectWait: cfg.ReconnectWait,
		})
	}

	return provider
}
