package domain

import "time"

// TrackedTaskState is the notification state kept for a task id across polls.
type TrackedTaskState struct {
	TaskID               string    `json:"task_id"`
	Category             Category  `json:"category"`
	NotifiedCategory     Category  `json:"notified_category,omitempty"`
	LastNotified         time.Time `json:"last_notified,omitzero"`
	SnoozeUntil          time.Time `json:"snooze_until,omitzero"`
	Acknowledged         bool      `json:"acknowledged"`
	AcknowledgedCategory Category  `json:"acknowledged_category,omitempty"`
	Pinned               bool      `json:"pinned"`
	DismissCount         int       `json:"dismiss_count"`
	LastDismissed        time.Time `json:"last_dismissed,omitzero"`
	FirstSeen            time.Time `json:"first_seen"`
	LastSeen             time.Time `json:"last_seen"`
}

func NewTrackedTaskState(taskID string, category Category, now time.Time) *TrackedTaskState {
	return &TrackedTaskState{
		TaskID:    taskID,
		Category:  category,
		FirstSeen: now,
		LastSeen:  now,
	}
}

func (s *TrackedTaskState) WasNotified() bool {
	return !s.LastNotified.IsZero()
}

func (s *TrackedTaskState) HasSnooze() bool {
	return !s.SnoozeUntil.IsZero()
}

func (s *TrackedTaskState) IsSnoozed(now time.Time) bool {
	return s.HasSnooze() && now.Before(s.SnoozeUntil)
}

// LastShownOrDismissed is the reference point for the re-notify interval.
func (s *TrackedTaskState) LastShownOrDismissed() time.Time {
	if s.LastDismissed.After(s.LastNotified) {
		return s.LastDismissed
	}
	return s.LastNotified
}

// Escalated reports whether the category became more urgent since the last
// notification. A task that was never notified has not escalated.
func (s *TrackedTaskState) Escalated() bool {
	if !s.WasNotified() {
		return false
	}
	return s.Category.EscalatedFrom(s.NotifiedCategory)
}

// Normalize repairs states that violate tracker invariants and reports
// whether anything changed. Acknowledged wins over an active snooze.
func (s *TrackedTaskState) Normalize() bool {
	if s.Acknowledged && s.HasSnooze() {
		s.SnoozeUntil = time.Time{}
		return true
	}
	return false
}

// TrackerStats summarizes tracker state for diagnostics.
type TrackerStats struct {
	Tracked       int `json:"tracked"`
	Snoozed       int `json:"snoozed"`
	ExpiredSnooze int `json:"expired_snooze"`
	Acknowledged  int `json:"acknowledged"`
	Pinned        int `json:"pinned"`
	Dismissed     int `json:"dismissed"`
}

// TrackerView is a read view over tracker state, valid only inside a commit.
type TrackerView interface {
	IsPinned(taskID string) bool
	IsEligible(taskID string, now time.Time) bool
}
