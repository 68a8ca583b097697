package domain

import (
	"time"
)

// Role is the relation of the configured user to a task.
type Role string

const (
	RoleAssignee Role = "assignee"
	RoleAssigner Role = "assigner"
	RoleAuditor  Role = "auditor"
)

func (r Role) String() string {
	return string(r)
}

// Task is a snapshot of one remote task as returned by a TaskSource.
type Task struct {
	ID           string
	Title        string
	Due          time.Time
	DueHasTime   bool
	Priority     bool
	OverdueFlag  bool
	Roles        []Role
	Status       string
	Assignees    []string
	LastModified time.Time
	Category     Category
}

func (t *Task) HasDue() bool {
	return !t.Due.IsZero()
}

// DueAt returns the instant the task becomes overdue. A date-only due is
// treated as the end of that day in the due value's location.
func (t *Task) DueAt() time.Time {
	if t.Due.IsZero() || t.DueHasTime {
		return t.Due
	}
	y, m, d := t.Due.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Due.Location()).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func (t *Task) HasRole(role Role) bool {
	for _, r := range t.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (t *Task) Validate() error {
	if t.ID == "" {
		return ErrInvalidTask
	}
	return nil
}
