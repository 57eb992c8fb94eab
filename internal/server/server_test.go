package server

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/suite"

	apperrors "github.com/calmhive/pomodoro-bot-discord/internal/errors"
	discordHandler "github.com/calmhive/pomodoro-bot-discord/internal/handlers/discord"
)

type stubAssets struct {
	objects map[string]string
}

func (s *stubAssets) Resolve(_ context.Context, trackKey string) (io.ReadCloser, error) {
	body, ok := s.objects[trackKey]
	if !ok {
		return nil, apperrors.NotFoundf("object not found: %s", trackKey)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (s *stubAssets) List(_ context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *stubAssets) ListRemote(_ context.Context) ([]string, error) {
	return s.List(context.Background())
}

type serverTestSuite struct {
	suite.Suite
	publicKey  ed25519.PublicKey
	privateKey ed25519.PrivateKey
	assets     *stubAssets
	router     http.Handler
}

func (s *serverTestSuite) SetupTest() {
	pub, priv, err := ed25519.GenerateKey(nil)
	s.Require().NoError(err)
	s.publicKey = pub
	s.privateKey = priv

	s.assets = &stubAssets{objects: map[string]string{
		"jazz.mp3": "mp3-bytes",
	}}

	dispatcher := discordHandler.NewDispatcher()
	s.Require().NoError(dispatcher.Register("pomodoro", func(_ context.Context, req *discordHandler.Request) (*discordHandler.Response, error) {
		return &discordHandler.Response{
			Message: fmt.Sprintf("action=%s user=%s", req.Action, req.UserID),
		}, nil
	}))
	s.Require().NoError(dispatcher.Register("broken", func(_ context.Context, _ *discordHandler.Request) (*discordHandler.Response, error) {
		return nil, apperrors.Internal("boom")
	}))

	srv := New(&Config{
		Dispatcher: dispatcher,
		Assets:     s.assets,
		PublicKey:  s.publicKey,
	})
	s.router = srv.Router()
}

// signedInteraction builds a POST /interactions request signed the way
// Discord signs webhook deliveries
func (s *serverTestSuite) signedInteraction(body []byte) *http.Request {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	sig := ed25519.Sign(s.privateKey, append([]byte(timestamp), body...))

	req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader(body))
	req.Header.Set("X-Signature-Ed25519", hex.EncodeToString(sig))
	req.Header.Set("X-Signature-Timestamp", timestamp)
	return req
}

func (s *serverTestSuite) TestHealth() {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("OK", rec.Body.String())
}

func (s *serverTestSuite) TestAssetServed() {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/jazz.mp3", nil))

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("mp3-bytes", rec.Body.String())
	s.Equal("audio/mpeg", rec.Header().Get("Content-Type"))
	s.Equal("public, max-age=31536000", rec.Header().Get("Cache-Control"))
}

func (s *serverTestSuite) TestAssetNotFound() {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/missing.mp3", nil))

	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *serverTestSuite) TestPingPong() {
	body, err := json.Marshal(map[string]any{"type": discordgo.InteractionPing})
	s.Require().NoError(err)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, s.signedInteraction(body))

	s.Equal(http.StatusOK, rec.Code)

	var resp discordgo.InteractionResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(discordgo.InteractionResponsePong, resp.Type)
}

func (s *serverTestSuite) TestCommandDispatch() {
	body := commandPayload("pomodoro", "start", "user-1")

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, s.signedInteraction(body))

	s.Equal(http.StatusOK, rec.Code)

	var resp discordgo.InteractionResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(discordgo.InteractionResponseChannelMessageWithSource, resp.Type)
	s.Equal("action=start user=user-1", resp.Data.Content)
}

func (s *serverTestSuite) TestUnknownCommand() {
	body := commandPayload("nope", "start", "user-1")

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, s.signedInteraction(body))

	s.Equal(http.StatusOK, rec.Code)

	var resp discordgo.InteractionResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("Command not found", resp.Data.Content)
	s.Equal(discordgo.MessageFlagsEphemeral, resp.Data.Flags)
}

func (s *serverTestSuite) TestCommandErrorAnswersGenerically() {
	body := commandPayload("broken", "start", "user-1")

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, s.signedInteraction(body))

	s.Equal(http.StatusOK, rec.Code)

	var resp discordgo.InteractionResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("There was an error executing this command!", resp.Data.Content)
}

func (s *serverTestSuite) TestInvalidSignatureRejected() {
	body := commandPayload("pomodoro", "start", "user-1")
	req := s.signedInteraction(body)
	req.Header.Set("X-Signature-Ed25519", hex.EncodeToString(make([]byte, ed25519.SignatureSize)))

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *serverTestSuite) TestMissingSignatureHeadersRejected() {
	body := commandPayload("pomodoro", "start", "user-1")

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader(body)))

	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *serverTestSuite) TestInteractionsRouteAbsentWithoutKey() {
	srv := New(&Config{
		Dispatcher: discordHandler.NewDispatcher(),
		Assets:     s.assets,
	})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader([]byte("{}"))))

	s.Equal(http.StatusNotFound, rec.Code)
}

func commandPayload(name, action, userID string) []byte {
	payload := map[string]any{
		"type":     discordgo.InteractionApplicationCommand,
		"guild_id": "guild-1",
		"member": map[string]any{
			"user": map[string]any{"id": userID},
		},
		"data": map[string]any{
			"name": name,
			"options": []map[string]any{
				{"name": "action", "type": discordgo.ApplicationCommandOptionString, "value": action},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return body
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(serverTestSuite))
}
