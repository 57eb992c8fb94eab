package discord

import (
	"context"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/calmhive/pomodoro-bot-discord/internal/services"
)

// Handler handles all Discord interactions
type Handler struct {
	ServiceProvider *services.Provider

	dispatcher *Dispatcher
}

// HandlerConfig holds configuration for the Discord handler
type HandlerConfig struct {
	ServiceProvider *services.Provider
}

// NewHandler creates a new Discord handler with every command registered
func NewHandler(cfg *HandlerConfig) *Handler {
	pomodoroHandler := NewPomodoroHandler(&PomodoroHandlerConfig{
		PomodoroService: cfg.ServiceProvider.PomodoroService,
	})
	playerHandler := NewPlayerHandler(&PlayerHandlerConfig{
		PlayerService: cfg.ServiceProvider.PlayerService,
	})
	helpHandler := NewHelpHandler()

	dispatcher := NewDispatcher()
	mustRegister(dispatcher, "pomodoro", pomodoroHandler.Handle)
	mustRegister(dispatcher, "player", playerHandler.Handle)
	mustRegister(dispatcher, "help", helpHandler.Handle)

	return &Handler{
		ServiceProvider: cfg.ServiceProvider,
		dispatcher:      dispatcher,
	}
}

func mustRegister(d *Dispatcher, name string, fn CommandFunc) {
	if err := d.Register(name, fn); err != nil {
		panic(err)
	}
}

// Dispatcher exposes the command table for transports that parse
// interactions themselves (the webhook server)
func (h *Handler) Dispatcher() *Dispatcher {
	return h.dispatcher
}

// RegisterCommands registers all slash commands with Discord
func (h *Handler) RegisterCommands(s *discordgo.Session, guildID string) error {
	for _, cmd := range Commands() {
		_, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, cmd)
		if err != nil {
			return err
		}
		log.Printf("Registered command: %s", cmd.Name)
	}

	return nil
}

// Commands returns the slash command definitions for this bot
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "pomodoro",
			Description: "Start a Pomodoro timer",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "action",
					Description: "What action to perform",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "help", Value: PomodoroActionHelp},
						{Name: "start", Value: PomodoroActionStart},
						{Name: "stop", Value: PomodoroActionStop},
						{Name: "join", Value: PomodoroActionJoin},
					},
				},
			},
		},
		{
			Name:        "player",
			Description: "Control music playback",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "action",
					Description: "What action to perform",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Play/Resume", Value: PlayerActionPlay},
						{Name: "Pause", Value: PlayerActionPause},
						{Name: "Stop", Value: PlayerActionStop},
						{Name: "List tracks", Value: PlayerActionList},
					},
				},
			},
		},
		{
			Name:        "help",
			Description: "Show all available commands and their descriptions",
		},
	}
}

// HandleInteraction handles all Discord interactions
func (h *Handler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	req := parseRequest(s, i)

	resp, err := h.dispatcher.Dispatch(context.Background(), req)
	if err != nil {
		log.Printf("Error handling /%s command: %v", req.Command, err)
		resp = &Response{Message: "There was an error executing this command!", Ephemeral: true}
	}

	if err := respond(s, i, resp); err != nil {
		log.Printf("Error responding to /%s command: %v", req.Command, err)
	}
}

// parseRequest turns a gateway interaction into a command request,
// resolving the caller's voice channel from session state
func parseRequest(s *discordgo.Session, i *discordgo.InteractionCreate) *Request {
	data := i.ApplicationCommandData()

	req := &Request{
		Command: data.Name,
		GuildID: i.GuildID,
	}

	if i.Member != nil && i.Member.User != nil {
		req.UserID = i.Member.User.ID
	} else if i.User != nil {
		req.UserID = i.User.ID
	}

	for _, opt := range data.Options {
		if opt.Name == "action" {
			req.Action = opt.StringValue()
			break
		}
	}

	if req.GuildID != "" && req.UserID != "" {
		if vs, err := s.State.VoiceState(req.GuildID, req.UserID); err == nil && vs != nil {
			req.VoiceChannelID = vs.ChannelID
		}
	}

	return req
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, resp *Response) error {
	data := &discordgo.InteractionResponseData{
		Content: resp.Message,
		Embeds:  resp.Embeds,
	}
	if resp.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}
