package domain

import "time"

type PauseMode string

const (
	PauseModeDuration PauseMode = "duration"
	PauseModeNextDay  PauseMode = "next_day"
)

// PauseState is the global notification gate.
type PauseState struct {
	Active   bool      `json:"active"`
	ResumeAt time.Time `json:"resume_at,omitzero"`
	Mode     PauseMode `json:"mode,omitempty"`
}

// Expired reports whether an active pause has reached its resume time.
func (p PauseState) Expired(now time.Time) bool {
	return p.Active && !p.ResumeAt.IsZero() && !now.Before(p.ResumeAt)
}
