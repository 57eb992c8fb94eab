package entities

import "time"

// SessionStatus represents the lifecycle state of a playback session
type SessionStatus string

const (
	SessionStatusPlaying SessionStatus = "playing"
	SessionStatusPaused  SessionStatus = "paused"
	SessionStatusStopped SessionStatus = "stopped"
)

// SessionRecord is the persisted state of a guild's playback session.
// At most one record exists per guild; the guild ID is the store key.
type SessionRecord struct {
	ID        string        `json:"id"`
	GuildID   string        `json:"guild_id"`
	OwnerID   string        `json:"owner_id"`
	ChannelID string        `json:"channel_id"`
	TrackKey  string        `json:"track_key"`
	Status    SessionStatus `json:"status"`
	StartTime time.Time     `json:"start_time"`
	EndTime   *time.Time    `json:"end_time,omitempty"`
}

// IsActive returns true while the session holds (or should hold) live resources
func (r *SessionRecord) IsActive() bool {
	return r.Status == SessionStatusPlaying || r.Status == SessionStatusPaused
}
