package category

import (
	"time"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

const (
	// DefaultLookaheadDays covers today and tomorrow.
	DefaultLookaheadDays = 1
)

type Classifier struct {
	lookaheadDays int
}

func NewClassifier(lookaheadDays int) *Classifier {
	if lookaheadDays < 0 {
		lookaheadDays = DefaultLookaheadDays
	}
	return &Classifier{lookaheadDays: lookaheadDays}
}

func (c *Classifier) LookaheadDays() int {
	return c.lookaheadDays
}

// Classify assigns the urgency tier of a task at now.
func (c *Classifier) Classify(task domain.Task, now time.Time) domain.Category {
	if task.OverdueFlag {
		return domain.CategoryOverdue
	}

	if task.HasDue() {
		due := task.DueAt()
		if due.Before(now) {
			return domain.CategoryOverdue
		}
		if due.Before(c.windowEnd(now)) {
			return domain.CategoryUrgent
		}
	}

	if task.Priority {
		return domain.CategoryUrgent
	}

	return domain.CategoryCurrent
}

// ClassifyAll fills Category on each task in place and returns per-category counts.
func (c *Classifier) ClassifyAll(tasks []domain.Task, now time.Time) map[domain.Category]int {
	counts := make(map[domain.Category]int, len(domain.Categories))
	for _, cat := range domain.Categories {
		counts[cat] = 0
	}

	for i := range tasks {
		cat := c.Classify(tasks[i], now)
		tasks[i].Category = cat
		counts[cat]++
	}

	return counts
}

// windowEnd is local midnight after the last lookahead day.
func (c *Classifier) windowEnd(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, c.lookaheadDays+1)
}
