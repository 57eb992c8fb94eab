package discord

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	apperrors "github.com/calmhive/pomodoro-bot-discord/internal/errors"
	playerService "github.com/calmhive/pomodoro-bot-discord/internal/services/player"
)

type stubPlayerService struct {
	playOut *playerService.PlayOutput
	playErr error

	pauseErr error
	stopErr  error
	tracks   []string

	playCalls  int
	pauseCalls int
	stopCalls  int
}

func (s *stubPlayerService) Play(_ context.Context, _ *playerService.PlayInput) (*playerService.PlayOutput, error) {
	s.playCalls++
	return s.playOut, s.playErr
}

func (s *stubPlayerService) Pause(_ context.Context, _ string) error {
	s.pauseCalls++
	return s.pauseErr
}

func (s *stubPlayerService) Stop(_ context.Context, _ string) error {
	s.stopCalls++
	return s.stopErr
}

func (s *stubPlayerService) ListTracks(_ context.Context) ([]string, error) {
	return s.tracks, nil
}

func (s *stubPlayerService) Reconcile(_ context.Context) error { return nil }

func (s *stubPlayerService) HandleDisconnect(_ string) {}

func (s *stubPlayerService) HandleReconnect(_ string) {}

func (s *stubPlayerService) LiveSessions() map[string]string { return nil }

func (s *stubPlayerService) Evict(_ string) {}

type playerHandlerTestSuite struct {
	suite.Suite
	service *stubPlayerService
	handler *PlayerHandler
}

func (s *playerHandlerTestSuite) SetupTest() {
	s.service = &stubPlayerService{}
	s.handler = NewPlayerHandler(&PlayerHandlerConfig{PlayerService: s.service})
}

func (s *playerHandlerTestSuite) request(action string) *Request {
	return &Request{
		Command:        "player",
		Action:         action,
		GuildID:        "guild-1",
		UserID:         "user-1",
		VoiceChannelID: "voice-1",
	}
}

func (s *playerHandlerTestSuite) TestPlay() {
	s.service.playOut = &playerService.PlayOutput{TrackKey: "jazz.mp3", ChannelID: "voice-1"}

	resp, err := s.handler.Handle(context.Background(), s.request(PlayerActionPlay))

	s.Require().NoError(err)
	s.Equal("▶️ Now playing: jazz.mp3", resp.Message)
	s.False(resp.Ephemeral)
	s.Equal(1, s.service.playCalls)
}

func (s *playerHandlerTestSuite) TestPlayOutsideVoiceChannel() {
	req := s.request(PlayerActionPlay)
	req.VoiceChannelID = ""

	resp, err := s.handler.Handle(context.Background(), req)

	s.Require().NoError(err)
	s.Equal("You need to be in a voice channel first!", resp.Message)
	s.True(resp.Ephemeral)
	s.Equal(0, s.service.playCalls)
}

func (s *playerHandlerTestSuite) TestPlayAssetUnavailable() {
	s.service.playErr = apperrors.Unavailable("object store down")

	resp, err := s.handler.Handle(context.Background(), s.request(PlayerActionPlay))

	s.Require().NoError(err)
	s.Equal("Failed to fetch audio file", resp.Message)
	s.True(resp.Ephemeral)
}

func (s *playerHandlerTestSuite) TestPauseWithoutSession() {
	s.service.pauseErr = apperrors.NotFound("no active playback")

	resp, err := s.handler.Handle(context.Background(), s.request(PlayerActionPause))

	s.Require().NoError(err)
	s.Equal("No active playback in this voice channel", resp.Message)
	s.True(resp.Ephemeral)
}

func (s *playerHandlerTestSuite) TestPauseOutsideVoiceChannel() {
	// Only play needs the caller in a voice channel
	req := s.request(PlayerActionPause)
	req.VoiceChannelID = ""

	resp, err := s.handler.Handle(context.Background(), req)

	s.Require().NoError(err)
	s.Equal("⏸️ Playback paused", resp.Message)
	s.Equal(1, s.service.pauseCalls)
}

func (s *playerHandlerTestSuite) TestStop() {
	resp, err := s.handler.Handle(context.Background(), s.request(PlayerActionStop))

	s.Require().NoError(err)
	s.Equal("⏹️ Playback stopped", resp.Message)
	s.Equal(1, s.service.stopCalls)
}

func (s *playerHandlerTestSuite) TestListTracks() {
	s.service.tracks = []string{"a.mp3", "b.mp3"}

	resp, err := s.handler.Handle(context.Background(), s.request(PlayerActionList))

	s.Require().NoError(err)
	s.Equal("Available tracks: a.mp3, b.mp3", resp.Message)
}

func (s *playerHandlerTestSuite) TestListNoTracks() {
	resp, err := s.handler.Handle(context.Background(), s.request(PlayerActionList))

	s.Require().NoError(err)
	s.Equal("No audio tracks found", resp.Message)
	s.True(resp.Ephemeral)
}

func (s *playerHandlerTestSuite) TestInvalidAction() {
	resp, err := s.handler.Handle(context.Background(), s.request("rewind"))

	s.Require().NoError(err)
	s.Equal("Invalid action", resp.Message)
	s.True(resp.Ephemeral)
}

func (s *playerHandlerTestSuite) TestMissingAction() {
	resp, err := s.handler.Handle(context.Background(), s.request(""))

	s.Require().NoError(err)
	s.Equal("Invalid action", resp.Message)
	s.True(resp.Ephemeral)
}

func (s *playerHandlerTestSuite) TestNilServiceAnswersWithNotice() {
	handler := NewPlayerHandler(&PlayerHandlerConfig{})

	resp, err := handler.Handle(context.Background(), s.request(PlayerActionPlay))

	s.Require().NoError(err)
	s.Equal("Voice features are currently unavailable in this deployment.", resp.Message)
}

func TestPlayerHandlerSuite(t *testing.T) {
	suite.Run(t, new(playerHandlerTestSuite))
}
