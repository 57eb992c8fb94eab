package entities

// Pomodoro record statuses as written by the external session creator
const (
	PomodoroStatusActive    = "active"
	PomodoroStatusCompleted = "completed"
)

// PomodoroRecord is a persisted pomodoro session written by the
// external session creator and rewritten by the expiry sweep. EndTime
// is milliseconds since the Unix epoch, matching the writer's format.
type PomodoroRecord struct {
	Status  string `json:"status"`
	EndTime int64  `json:"endTime,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

// Expired reports whether the record's end time has passed at the
// given instant (also in Unix milliseconds)
func (p *PomodoroRecord) Expired(nowMillis int64) bool {
	return p.EndTime != 0 && p.EndTime < nowMillis
}
