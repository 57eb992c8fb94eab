package voice

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// DiscordConnector implements Connector and StateReader over a
// discordgo gateway session
type DiscordConnector struct {
	session *discordgo.Session
}

// NewDiscordConnector creates a connector over an open gateway session
func NewDiscordConnector(session *discordgo.Session) *DiscordConnector {
	return &DiscordConnector{session: session}
}

// Join connects to a voice channel, unmuted and deafened
func (c *DiscordConnector) Join(guildID, channelID string) (Conn, error) {
	vc, err := c.session.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel %s: %w", channelID, err)
	}

	return &discordConn{vc: vc}, nil
}

// BotUserID returns the bot's own user ID
func (c *DiscordConnector) BotUserID() string {
	if c.session.State == nil || c.session.State.User == nil {
		return ""
	}
	return c.session.State.User.ID
}

// ChannelMembers returns the user IDs currently in a voice channel
func (c *DiscordConnector) ChannelMembers(guildID, channelID string) ([]string, error) {
	guild, err := c.session.State.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to read guild state %s: %w", guildID, err)
	}

	var members []string
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID == channelID {
			members = append(members, vs.UserID)
		}
	}

	return members, nil
}

type discordConn struct {
	vc *discordgo.VoiceConnection
}

func (c *discordConn) Speaking(on bool) error {
	return c.vc.Speaking(on)
}

func (c *discordConn) OpusSend() chan<- []byte {
	return c.vc.OpusSend
}

func (c *discordConn) Disconnect() error {
	return c.vc.Disconnect()
}
