package domain

import "fmt"

type Sound string

const (
	SoundNone     Sound = "none"
	SoundWarning  Sound = "warning"
	SoundCritical Sound = "critical"
)

// Action is a user response to a presented notification.
type Action string

const (
	ActionOpen     Action = "open"
	ActionSnooze15 Action = "snooze15"
	ActionSnooze60 Action = "snooze60"
	ActionDone     Action = "done"
	ActionDismiss  Action = "dismiss"
	ActionPin      Action = "pin"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionOpen, ActionSnooze15, ActionSnooze60, ActionDone, ActionDismiss, ActionPin:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// ActionsFor returns the action set offered for a category.
func ActionsFor(category Category) []Action {
	if category.AllowsSnooze() {
		return []Action{ActionOpen, ActionSnooze15, ActionSnooze60, ActionDone, ActionDismiss, ActionPin}
	}
	return []Action{ActionOpen, ActionDone, ActionDismiss, ActionPin}
}

// NotificationIntent is one notification chosen for presentation in a cycle.
type NotificationIntent struct {
	Task     Task     `json:"task"`
	Category Category `json:"category"`
	Sound    Sound    `json:"sound"`
	Pinned   bool     `json:"pinned"`
	Actions  []Action `json:"actions"`
}

func NewNotificationIntent(task Task, pinned bool) NotificationIntent {
	return NotificationIntent{
		Task:     task,
		Category: task.Category,
		Sound:    task.Category.Sound(),
		Pinned:   pinned,
		Actions:  ActionsFor(task.Category),
	}
}

func (i NotificationIntent) Offers(action Action) bool {
	for _, a := range i.Actions {
		if a == action {
			return true
		}
	}
	return false
}
