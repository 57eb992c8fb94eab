package discord

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/calmhive/pomodoro-bot-discord/internal/errors"
	playerService "github.com/calmhive/pomodoro-bot-discord/internal/services/player"
)

// Player command action values
const (
	PlayerActionPlay  = "play"
	PlayerActionPause = "pause"
	PlayerActionStop  = "stop"
	PlayerActionList  = "list"
)

// PlayerHandler drives the playback session for a guild
type PlayerHandler struct {
	player playerService.Service
}

// PlayerHandlerConfig holds configuration for the player handler
type PlayerHandlerConfig struct {
	// PlayerService may be nil: the webhook deployment has no voice
	// transport and answers every voice action with an availability notice
	PlayerService playerService.Service
}

// NewPlayerHandler creates a new player command handler
func NewPlayerHandler(cfg *PlayerHandlerConfig) *PlayerHandler {
	return &PlayerHandler{player: cfg.PlayerService}
}

// Handle executes one player action
func (h *PlayerHandler) Handle(ctx context.Context, req *Request) (*Response, error) {
	if req.Action == "" {
		return &Response{Message: "Invalid action", Ephemeral: true}, nil
	}

	if req.Action == PlayerActionPlay && req.VoiceChannelID == "" {
		return &Response{Message: "You need to be in a voice channel first!", Ephemeral: true}, nil
	}

	if h.player == nil {
		return &Response{Message: "Voice features are currently unavailable in this deployment."}, nil
	}

	switch req.Action {
	case PlayerActionPlay:
		return h.play(ctx, req)
	case PlayerActionPause:
		return h.pause(ctx, req)
	case PlayerActionStop:
		return h.stop(ctx, req)
	case PlayerActionList:
		return h.list(ctx)
	default:
		return &Response{Message: "Invalid action", Ephemeral: true}, nil
	}
}

func (h *PlayerHandler) play(ctx context.Context, req *Request) (*Response, error) {
	out, err := h.player.Play(ctx, &playerService.PlayInput{
		GuildID:   req.GuildID,
		UserID:    req.UserID,
		ChannelID: req.VoiceChannelID,
	})
	if err != nil {
		switch {
		case apperrors.IsValidation(err):
			return &Response{Message: "You need to be in a voice channel first!", Ephemeral: true}, nil
		case apperrors.IsUnavailable(err), apperrors.IsNotFound(err):
			return &Response{Message: "Failed to fetch audio file", Ephemeral: true}, nil
		default:
			return nil, err
		}
	}

	return &Response{Message: fmt.Sprintf("▶️ Now playing: %s", out.TrackKey)}, nil
}

func (h *PlayerHandler) pause(ctx context.Context, req *Request) (*Response, error) {
	if err := h.player.Pause(ctx, req.GuildID); err != nil {
		if apperrors.IsNotFound(err) {
			return &Response{Message: "No active playback in this voice channel", Ephemeral: true}, nil
		}
		return nil, err
	}

	return &Response{Message: "⏸️ Playback paused"}, nil
}

func (h *PlayerHandler) stop(ctx context.Context, req *Request) (*Response, error) {
	if err := h.player.Stop(ctx, req.GuildID); err != nil {
		return nil, err
	}

	return &Response{Message: "⏹️ Playback stopped"}, nil
}

func (h *PlayerHandler) list(ctx context.Context) (*Response, error) {
	tracks, err := h.player.ListTracks(ctx)
	if err != nil {
		return nil, err
	}

	if len(tracks) == 0 {
		return &Response{Message: "No audio tracks found", Ephemeral: true}, nil
	}

	return &Response{Message: "Available tracks: " + strings.Join(tracks, ", ")}, nil
}
