package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	apperrors "github.com/calmhive/pomodoro-bot-discord/internal/errors"
)

// Request is one parsed command invocation, independent of how it
// arrived (gateway event or signed webhook)
type Request struct {
	Command string
	Action  string
	GuildID string
	UserID  string

	// VoiceChannelID is the caller's current voice channel, when the
	// transport can know it (gateway only)
	VoiceChannelID string
}

// Response is the structured reply a command hands back to the transport
type Response struct {
	Message   string
	Ephemeral bool
	Embeds    []*discordgo.MessageEmbed
}

// CommandFunc executes one named command
type CommandFunc func(ctx context.Context, req *Request) (*Response, error)

// Dispatcher routes interactions to named commands. The table is
// fixed at startup: registration validates names, dispatch only looks
// them up.
type Dispatcher struct {
	commands map[string]CommandFunc
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{commands: make(map[string]CommandFunc)}
}

// Register adds a command to the table. Empty names, nil handlers and
// duplicates are rejected so a bad table fails at startup, not at
// dispatch time.
func (d *Dispatcher) Register(name string, fn CommandFunc) error {
	if name == "" {
		return apperrors.InvalidArgument("command name cannot be empty")
	}
	if fn == nil {
		return apperrors.InvalidArgumentf("command %s has no handler", name)
	}
	if _, exists := d.commands[name]; exists {
		return apperrors.InvalidArgumentf("command %s already registered", name)
	}

	d.commands[name] = fn
	return nil
}

// Dispatch routes a request to its command
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) (*Response, error) {
	fn, exists := d.commands[req.Command]
	if !exists {
		return nil, apperrors.NotFoundf("command not found: %s", req.Command)
	}

	return fn(ctx, req)
}
