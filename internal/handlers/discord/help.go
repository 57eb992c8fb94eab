package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// HelpHandler lists the available commands
type HelpHandler struct{}

// NewHelpHandler creates a new help command handler
func NewHelpHandler() *HelpHandler {
	return &HelpHandler{}
}

// Handle returns the command overview
func (h *HelpHandler) Handle(_ context.Context, _ *Request) (*Response, error) {
	embed := &discordgo.MessageEmbed{
		Title: "Available Commands",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "/pomodoro - Start a Pomodoro timer",
				Value: "• `start` - Begin a new Pomodoro session\n" +
					"• `stop` - Stop the current timer\n" +
					"• `join` - Join an existing Pomodoro session\n" +
					"• `help` - Show Pomodoro technique guide",
			},
			{
				Name: "/player - Control music playback",
				Value: "• `play` - Play or resume music\n" +
					"• `pause` - Pause current playback\n" +
					"• `stop` - Stop playback\n" +
					"• `list` - List available audio tracks",
			},
			{
				Name:  "/help",
				Value: "Show this help message",
			},
		},
	}

	return &Response{Embeds: []*discordgo.MessageEmbed{embed}, Ephemeral: true}, nil
}
