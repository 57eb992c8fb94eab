package cleanup

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/calmhive/pomodoro-bot-discord/internal/entities"
	"github.com/calmhive/pomodoro-bot-discord/internal/repositories/pomodoros"
	"github.com/calmhive/pomodoro-bot-discord/internal/services/player"
	"github.com/calmhive/pomodoro-bot-discord/internal/voice"
)

const expirySweepConcurrency = 8

// Service reclaims abandoned sessions. Two independent duties: a
// live-session sweep over ephemeral voice occupancy, and an expiry
// sweep over persisted pomodoro records. Both tolerate individual
// failures; neither is allowed to kill the process.
type Service struct {
	player    player.Service
	state     voice.StateReader
	pomodoros pomodoros.Repository

	sweepInterval  time.Duration
	expiryInterval time.Duration
	solitudeDelay  time.Duration

	now func() time.Time
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	// Player and State drive the live-session duties; the webhook
	// deployment leaves them nil and runs the expiry sweep only
	Player    player.Service
	State     voice.StateReader
	Pomodoros pomodoros.Repository // Required for the expiry sweep

	SweepInterval  time.Duration // Optional, defaults to 1m
	ExpiryInterval time.Duration // Optional, defaults to 1m
	SolitudeDelay  time.Duration // Optional, defaults to 2m

	// Now allows tests to pin the clock
	Now func() time.Time
}

// NewService creates a new cleanup service
func NewService(cfg *ServiceConfig) *Service {
	if cfg.Player == nil && cfg.Pomodoros == nil {
		panic("a player service or a pomodoro repository is required")
	}

	svc := &Service{
		player:         cfg.Player,
		state:          cfg.State,
		pomodoros:      cfg.Pomodoros,
		sweepInterval:  cfg.SweepInterval,
		expiryInterval: cfg.ExpiryInterval,
		solitudeDelay:  cfg.SolitudeDelay,
		now:            cfg.Now,
	}
	if svc.sweepInterval == 0 {
		svc.sweepInterval = time.Minute
	}
	if svc.expiryInterval == 0 {
		svc.expiryInterval = time.Minute
	}
	if svc.solitudeDelay == 0 {
		svc.solitudeDelay = 2 * time.Minute
	}
	if svc.now == nil {
		svc.now = time.Now
	}

	return svc
}

// StartLiveSweep runs the live-session sweep until the context ends
func (s *Service) StartLiveSweep(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Println("Running scheduled session cleanup")
			s.SweepIdleSessions(ctx)
		}
	}
}

// StartExpirySweep runs the record expiry sweep until the context ends
func (s *Service) StartExpirySweep(ctx context.Context) {
	ticker := time.NewTicker(s.expiryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunExpiredRecordSweep(ctx); err != nil {
				log.Printf("Expiry sweep failed: %v", err)
			}
		}
	}
}

// SweepIdleSessions releases the live handle of every guild where the
// bot is the only remaining occupant. Operates purely on ephemeral
// membership state, never on persisted records.
func (s *Service) SweepIdleSessions(ctx context.Context) {
	if s.player == nil || s.state == nil {
		return
	}

	for guildID, channelID := range s.player.LiveSessions() {
		alone, err := s.botAlone(guildID, channelID)
		if err != nil {
			log.Printf("Skipping occupancy check for guild %s: %v", guildID, err)
			continue
		}

		if alone {
			log.Printf("Cleaning up inactive session in guild %s", guildID)
			s.player.Evict(guildID)
		}
	}
}

// RunExpiredRecordSweep marks every overdue active pomodoro record as
// completed. One bad record never aborts the rest.
func (s *Service) RunExpiredRecordSweep(ctx context.Context) error {
	if s.pomodoros == nil {
		return nil
	}

	keys, err := s.pomodoros.ListKeys(ctx)
	if err != nil {
		return err
	}

	nowMillis := s.now().UnixMilli()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(expirySweepConcurrency)

	for _, key := range keys {
		key := key
		g.Go(func() error {
			record, err := s.pomodoros.Get(ctx, key)
			if err != nil {
				log.Printf("Skipping pomodoro record %s: %v", key, err)
				return nil
			}

			if record.Status != entities.PomodoroStatusActive || !record.Expired(nowMillis) {
				return nil
			}

			record.Status = entities.PomodoroStatusCompleted
			if err := s.pomodoros.Put(ctx, key, record); err != nil {
				log.Printf("Failed to update expired record %s: %v", key, err)
				return nil
			}

			log.Printf("Updated expired session: %s", key)
			return nil
		})
	}

	return g.Wait()
}

// HandleVoiceStateUpdate reacts to gateway voice-state changes: the
// bot's own disconnects and reconnects settle the player's recovery
// race, and anyone leaving a channel the bot occupies may start a
// solitude countdown.
func (s *Service) HandleVoiceStateUpdate(userID, guildID, channelID string) {
	if s.player == nil || s.state == nil {
		return
	}

	if userID == s.state.BotUserID() {
		if channelID == "" {
			s.player.HandleDisconnect(guildID)
		} else {
			s.player.HandleReconnect(guildID)
		}
		return
	}

	botChannel, ok := s.player.LiveSessions()[guildID]
	if !ok {
		return
	}

	alone, err := s.botAlone(guildID, botChannel)
	if err != nil {
		log.Printf("Failed occupancy check for guild %s: %v", guildID, err)
		return
	}
	if !alone {
		return
	}

	log.Printf("Bot is alone in channel %s, scheduling disconnect", botChannel)
	s.scheduleSolitudeCheck(guildID, botChannel)
}

// scheduleSolitudeCheck re-checks occupancy after the configured
// delay. The timer is never cancelled: it revalidates at fire time,
// so a repopulated channel naturally supersedes it.
func (s *Service) scheduleSolitudeCheck(guildID, channelID string) {
	time.AfterFunc(s.solitudeDelay, func() {
		current, ok := s.player.LiveSessions()[guildID]
		if !ok || current != channelID {
			return
		}

		alone, err := s.botAlone(guildID, channelID)
		if err != nil {
			log.Printf("Failed solitude re-check for guild %s: %v", guildID, err)
			return
		}
		if !alone {
			return
		}

		log.Printf("Disconnecting from empty voice channel %s", channelID)
		s.player.Evict(guildID)
	})
}

func (s *Service) botAlone(guildID, channelID string) (bool, error) {
	members, err := s.state.ChannelMembers(guildID, channelID)
	if err != nil {
		return false, err
	}

	return len(members) == 1 && members[0] == s.state.BotUserID(), nil
}
