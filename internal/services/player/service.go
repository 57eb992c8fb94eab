package player

//go:generate mockgen -destination=mock/mock_service.go -package=mockplayer -source=service.go

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/calmhive/pomodoro-bot-discord/internal/entities"
	apperrors "github.com/calmhive/pomodoro-bot-discord/internal/errors"
	"github.com/calmhive/pomodoro-bot-discord/internal/repositories/playersessions"
	"github.com/calmhive/pomodoro-bot-discord/internal/services/assets"
	"github.com/calmhive/pomodoro-bot-discord/internal/uuid"
	"github.com/calmhive/pomodoro-bot-discord/internal/voice"
)

// Service owns the playback session lifecycle for every guild: the
// persisted records, the live voice handles, and the transitions
// between them. All live-handle mutation funnels through here, under
// a per-guild lock, so two racing commands cannot both hold a handle
// for the same guild.
type Service interface {
	// Play starts (or restarts) playback of the configured track in
	// the caller's voice channel
	Play(ctx context.Context, input *PlayInput) (*PlayOutput, error)

	// Pause suspends playback. Fails if the guild has no session.
	Pause(ctx context.Context, guildID string) error

	// Stop ends playback and deletes the session. Idempotent:
	// stopping a guild with no session succeeds.
	Stop(ctx context.Context, guildID string) error

	// ListTracks enumerates locally cached tracks
	ListTracks(ctx context.Context) ([]string, error)

	// Reconcile resolves live handles against persisted records: a
	// handle whose record is gone or inactive is released. The record
	// stays authoritative for user-facing status; the handle only for
	// whether resources are held.
	Reconcile(ctx context.Context) error

	// HandleDisconnect reacts to the bot losing its voice connection
	// for a guild: a bounded wait races recovery against a timeout,
	// and on timeout the session is torn down
	HandleDisconnect(guildID string)

	// HandleReconnect signals that the guild's voice connection recovered
	HandleReconnect(guildID string)

	// LiveSessions snapshots guild ID -> channel ID for every live handle
	LiveSessions() map[string]string

	// Evict releases a guild's live handle without touching the
	// persisted record (used by occupancy-driven cleanup)
	Evict(guildID string)
}

// PlayInput contains data for starting playback
type PlayInput struct {
	GuildID   string
	UserID    string
	ChannelID string // Caller's voice channel
}

// PlayOutput describes what started playing
type PlayOutput struct {
	TrackKey  string
	ChannelID string
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Repository    playersessions.Repository // Required
	Assets        assets.Service            // Required
	Connector     voice.Connector           // Required
	TrackKey      string                    // Required
	ReconnectWait time.Duration             // Optional, defaults to 5s
	IDGenerator   uuid.Generator            // Optional, defaults to Google UUID
}

// liveSession holds the non-persistable handles for one guild
type liveSession struct {
	channelID string
	conn      voice.Conn
	player    *voice.Player

	// reconnect is non-nil while a disconnect wait is in flight;
	// closing it settles the race in favor of recovery
	reconnect chan struct{}
}

type service struct {
	repository    playersessions.Repository
	assets        assets.Service
	connector     voice.Connector
	trackKey      string
	reconnectWait time.Duration
	idGen         uuid.Generator

	mu    sync.Mutex
	live  map[string]*liveSession
	locks map[string]*sync.Mutex
}

// NewService creates a new player service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Repository == nil {
		panic("repository is required")
	}
	if cfg.Assets == nil {
		panic("assets service is required")
	}
	if cfg.Connector == nil {
		panic("voice connector is required")
	}
	if cfg.TrackKey == "" {
		panic("track key is required")
	}

	wait := cfg.ReconnectWait
	if wait == 0 {
		wait = 5 * time.Second
	}

	idGen := cfg.IDGenerator
	if idGen == nil {
		idGen = uuid.NewGoogleUUIDGenerator()
	}

	return &service{
		repository:    cfg.Repository,
		assets:        cfg.Assets,
		connector:     cfg.Connector,
		trackKey:      cfg.TrackKey,
		reconnectWait: wait,
		idGen:         idGen,
		live:          make(map[string]*liveSession),
		locks:         make(map[string]*sync.Mutex),
	}
}

// guildLock returns the mutex serializing live-handle mutation for a guild
func (s *service) guildLock(guildID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, exists := s.locks[guildID]
	if !exists {
		lock = &sync.Mutex{}
		s.locks[guildID] = lock
	}
	return lock
}

func (s *service) getLive(guildID string) *liveSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live[guildID]
}

func (s *service) setLive(guildID string, ls *liveSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live[guildID] = ls
}

func (s *service) dropLive(guildID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, guildID)
}

// Play starts (or restarts) playback in the caller's voice channel
func (s *service) Play(ctx context.Context, input *PlayInput) (*PlayOutput, error) {
	if input == nil || input.GuildID == "" {
		return nil, apperrors.InvalidArgument("guild ID is required")
	}
	if input.ChannelID == "" {
		return nil, apperrors.Validation("you need to be in a voice channel first")
	}

	// Resolve before touching any session state: a missing asset
	// must not create a session
	src, err := s.assets.Resolve(ctx, s.trackKey)
	if err != nil {
		return nil, apperrors.WrapWithCode(err, apperrors.CodeUnavailable, "failed to fetch audio file")
	}

	lock := s.guildLock(input.GuildID)
	lock.Lock()
	defer lock.Unlock()

	ls := s.getLive(input.GuildID)
	if ls != nil {
		// Re-triggering the track reuses the connection but always
		// replaces the player; the old one is released first so it
		// cannot leak
		ls.player.Stop()
	} else {
		conn, joinErr := s.connector.Join(input.GuildID, input.ChannelID)
		if joinErr != nil {
			src.Close()
			return nil, apperrors.WrapWithCode(joinErr, apperrors.CodeUnavailable, "failed to join voice channel")
		}
		ls = &liveSession{conn: conn}
	}
	ls.channelID = input.ChannelID

	ls.player = voice.NewPlayer()
	if err := ls.player.Play(src, ls.conn); err != nil {
		src.Close()
		return nil, apperrors.Wrap(err, "failed to start playback")
	}
	s.setLive(input.GuildID, ls)

	record := &entities.SessionRecord{
		ID:        s.idGen.New(),
		GuildID:   input.GuildID,
		OwnerID:   input.UserID,
		ChannelID: input.ChannelID,
		TrackKey:  s.trackKey,
		Status:    entities.SessionStatusPlaying,
		StartTime: time.Now().UTC(),
	}
	if err := s.repository.Set(ctx, record); err != nil {
		// The handle is live but the record write failed; release the
		// handle rather than leave an untracked connection
		s.teardownLocked(input.GuildID, ls)
		return nil, err
	}

	log.Printf("Now playing %s in guild %s channel %s", s.trackKey, input.GuildID, input.ChannelID)

	return &PlayOutput{
		TrackKey:  s.trackKey,
		ChannelID: input.ChannelID,
	}, nil
}

// Pause suspends playback
func (s *service) Pause(ctx context.Context, guildID string) error {
	if guildID == "" {
		return apperrors.InvalidArgument("guild ID is required")
	}

	lock := s.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	record, err := s.repository.Get(ctx, guildID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NotFound("no active playback in this voice channel")
		}
		return err
	}

	record.Status = entities.SessionStatusPaused
	if err := s.repository.Set(ctx, record); err != nil {
		return err
	}

	if ls := s.getLive(guildID); ls != nil {
		ls.player.Pause()
	}

	return nil
}

// Stop ends playback and deletes the session
func (s *service) Stop(ctx context.Context, guildID string) error {
	if guildID == "" {
		return apperrors.InvalidArgument("guild ID is required")
	}

	lock := s.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	if ls := s.getLive(guildID); ls != nil {
		s.teardownLocked(guildID, ls)
	}

	return s.repository.Delete(ctx, guildID)
}

// ListTracks enumerates locally cached tracks
func (s *service) ListTracks(ctx context.Context) ([]string, error) {
	return s.assets.List(ctx)
}

// Reconcile resolves live handles against persisted records
func (s *service) Reconcile(ctx context.Context) error {
	for guildID := range s.LiveSessions() {
		lock := s.guildLock(guildID)
		lock.Lock()

		ls := s.getLive(guildID)
		if ls == nil {
			lock.Unlock()
			continue
		}

		record, err := s.repository.Get(ctx, guildID)
		switch {
		case err != nil && apperrors.IsNotFound(err):
			log.Printf("Releasing orphaned voice handle for guild %s", guildID)
			s.teardownLocked(guildID, ls)
		case err != nil:
			log.Printf("Skipping reconciliation for guild %s: %v", guildID, err)
		case !record.IsActive():
			log.Printf("Releasing voice handle for inactive session in guild %s", guildID)
			s.teardownLocked(guildID, ls)
		}

		lock.Unlock()
	}

	return nil
}

// HandleDisconnect races a bounded recovery wait against teardown
func (s *service) HandleDisconnect(guildID string) {
	lock := s.guildLock(guildID)
	lock.Lock()

	ls := s.getLive(guildID)
	if ls == nil {
		lock.Unlock()
		return
	}
	if ls.reconnect != nil {
		// A wait is already in flight for this drop
		lock.Unlock()
		return
	}

	reconnect := make(chan struct{})
	ls.reconnect = reconnect
	lock.Unlock()

	log.Printf("Voice connection lost for guild %s, waiting %s for recovery", guildID, s.reconnectWait)

	go func() {
		timer := time.NewTimer(s.reconnectWait)
		defer timer.Stop()

		select {
		case <-reconnect:
			// Closed either by recovery or by a teardown that
			// supersedes the wait; both make this goroutine inert
			if s.getLive(guildID) != nil {
				log.Printf("Voice connection recovered for guild %s", guildID)
			}
		case <-timer.C:
			lock.Lock()
			defer lock.Unlock()

			current := s.getLive(guildID)
			if current == nil || current.reconnect != reconnect {
				// Settled some other way while the timer ran
				return
			}

			log.Printf("Voice connection for guild %s did not recover, tearing down", guildID)
			s.teardownLocked(guildID, current)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.repository.Delete(ctx, guildID); err != nil {
				log.Printf("Failed to delete session record for guild %s: %v", guildID, err)
			}
		}
	}()
}

// HandleReconnect settles a pending disconnect wait in favor of recovery
func (s *service) HandleReconnect(guildID string) {
	lock := s.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	ls := s.getLive(guildID)
	if ls == nil || ls.reconnect == nil {
		return
	}

	close(ls.reconnect)
	ls.reconnect = nil
}

// LiveSessions snapshots guild ID -> channel ID for every live handle
func (s *service) LiveSessions() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[string]string, len(s.live))
	for guildID, ls := range s.live {
		snapshot[guildID] = ls.channelID
	}
	return snapshot
}

// Evict releases a guild's live handle without touching the persisted record
func (s *service) Evict(guildID string) {
	lock := s.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	if ls := s.getLive(guildID); ls != nil {
		s.teardownLocked(guildID, ls)
	}
}

// teardownLocked releases a live session's resources. Callers hold
// the guild lock.
func (s *service) teardownLocked(guildID string, ls *liveSession) {
	ls.player.Stop()
	if err := ls.conn.Disconnect(); err != nil {
		log.Printf("Failed to disconnect voice for guild %s: %v", guildID, err)
	}
	if ls.reconnect != nil {
		close(ls.reconnect)
		ls.reconnect = nil
	}
	s.dropLive(guildID)
}
