package domain

// Category is the urgency tier a task is classified into on each poll.
type Category string

const (
	CategoryOverdue Category = "overdue"
	CategoryUrgent  Category = "urgent"
	CategoryCurrent Category = "current"
)

// Categories lists every category in emission order, most urgent first.
var Categories = []Category{CategoryOverdue, CategoryUrgent, CategoryCurrent}

func (c Category) String() string {
	return string(c)
}

func (c Category) Valid() bool {
	return c == CategoryOverdue || c == CategoryUrgent || c == CategoryCurrent
}

// Rank orders categories by urgency: current < urgent < overdue.
// Unknown categories rank below current.
func (c Category) Rank() int {
	switch c {
	case CategoryOverdue:
		return 3
	case CategoryUrgent:
		return 2
	case CategoryCurrent:
		return 1
	default:
		return 0
	}
}

// EscalatedFrom reports whether c is more urgent than prev.
func (c Category) EscalatedFrom(prev Category) bool {
	return c.Rank() > prev.Rank()
}

// AllowsSnooze reports whether snooze actions are offered for the category.
func (c Category) AllowsSnooze() bool {
	return c == CategoryOverdue || c == CategoryUrgent
}

func (c Category) Sound() Sound {
	switch c {
	case CategoryOverdue:
		return SoundCritical
	case CategoryUrgent:
		return SoundWarning
	default:
		return SoundNone
	}
}
