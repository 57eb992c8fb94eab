package server

import (
	"crypto/ed25519"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/calmhive/pomodoro-bot-discord/internal/errors"
	discordHandler "github.com/calmhive/pomodoro-bot-discord/internal/handlers/discord"
	"github.com/calmhive/pomodoro-bot-discord/internal/services/assets"
)

// Server answers Discord webhook interactions and serves cached audio
// assets over HTTP
type Server struct {
	dispatcher *discordHandler.Dispatcher
	assets     assets.Service
	publicKey  ed25519.PublicKey
}

// Config holds configuration for the HTTP server
type Config struct {
	Dispatcher *discordHandler.Dispatcher // Required
	Assets     assets.Service             // Required

	// PublicKey verifies interaction signatures. When absent the
	// /interactions route is not served; the gateway deployment runs
	// the sidecar with health and assets only.
	PublicKey ed25519.PublicKey
}

// New creates a new HTTP server
func New(cfg *Config) *Server {
	if cfg.Dispatcher == nil {
		panic("dispatcher is required")
	}
	if cfg.Assets == nil {
		panic("asset service is required")
	}
	if len(cfg.PublicKey) != 0 && len(cfg.PublicKey) != ed25519.PublicKeySize {
		panic("public key must be a valid ed25519 key")
	}

	return &Server{
		dispatcher: cfg.Dispatcher,
		assets:     cfg.Assets,
		publicKey:  cfg.PublicKey,
	}
}

// Router builds the HTTP routing table
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/assets/{name}", s.handleAsset)
	if len(s.publicKey) == ed25519.PublicKeySize {
		r.Post("/interactions", s.handleInteraction)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleAsset streams one cached track, fetching it from the object
// store on a cache miss
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rc, err := s.assets.Resolve(r.Context(), name)
	if err != nil {
		if apperrors.IsNotFound(err) {
			http.Error(w, "asset not found", http.StatusNotFound)
			return
		}
		log.Printf("Error resolving asset %s: %v", name, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := rc.Close(); err != nil {
			log.Printf("Error closing asset %s: %v", name, err)
		}
	}()

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	if _, err := io.Copy(w, rc); err != nil {
		log.Printf("Error streaming asset %s: %v", name, err)
	}
}

// handleInteraction verifies the request signature and routes the
// interaction to a command
func (s *Server) handleInteraction(w http.ResponseWriter, r *http.Request) {
	if !discordgo.VerifyInteraction(r, s.publicKey) {
		http.Error(w, "invalid request signature", http.StatusUnauthorized)
		return
	}

	var interaction discordgo.Interaction
	if err := json.NewDecoder(r.Body).Decode(&interaction); err != nil {
		http.Error(w, "invalid interaction payload", http.StatusBadRequest)
		return
	}

	switch interaction.Type {
	case discordgo.InteractionPing:
		writeInteractionResponse(w, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponsePong,
		})

	case discordgo.InteractionApplicationCommand:
		writeInteractionResponse(w, s.dispatchCommand(r, &interaction))

	default:
		http.Error(w, "unknown interaction type", http.StatusBadRequest)
	}
}

func (s *Server) dispatchCommand(r *http.Request, interaction *discordgo.Interaction) *discordgo.InteractionResponse {
	data := interaction.ApplicationCommandData()

	req := &discordHandler.Request{
		Command: data.Name,
		GuildID: interaction.GuildID,
	}
	if interaction.Member != nil && interaction.Member.User != nil {
		req.UserID = interaction.Member.User.ID
	} else if interaction.User != nil {
		req.UserID = interaction.User.ID
	}
	for _, opt := range data.Options {
		if opt.Name == "action" {
			req.Action = opt.StringValue()
			break
		}
	}

	resp, err := s.dispatcher.Dispatch(r.Context(), req)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return ephemeralMessage("Command not found")
		}
		log.Printf("Error executing /%s command: %v", req.Command, err)
		return ephemeralMessage("There was an error executing this command!")
	}

	responseData := &discordgo.InteractionResponseData{
		Content: resp.Message,
		Embeds:  resp.Embeds,
	}
	if resp.Ephemeral {
		responseData.Flags = discordgo.MessageFlagsEphemeral
	}

	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: responseData,
	}
}

func ephemeralMessage(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
}

func writeInteractionResponse(w http.ResponseWriter, resp *discordgo.InteractionResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding interaction response: %v", err)
	}
}
