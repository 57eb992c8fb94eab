// Package voice abstracts the gateway's voice transport so the player
// service can be exercised without a live Discord connection. Codec
// work stays out of scope: the engine only moves pre-encoded opus
// frames in DCA framing (little-endian int16 length prefix per frame).
package voice

//go:generate mockgen -destination=mock/mock_voice.go -package=mockvoice -source=voice.go

// Conn is one live voice connection for a guild
type Conn interface {
	// Speaking toggles the speaking indicator
	Speaking(on bool) error

	// OpusSend is the channel opus frames are written to
	OpusSend() chan<- []byte

	// Disconnect tears the connection down
	Disconnect() error
}

// Connector joins voice channels
type Connector interface {
	Join(guildID, channelID string) (Conn, error)
}

// StateReader answers occupancy questions from gateway state
type StateReader interface {
	// BotUserID returns the bot's own user ID
	BotUserID() string

	// ChannelMembers returns the user IDs currently in a voice channel
	ChannelMembers(guildID, channelID string) ([]string, error)
}
