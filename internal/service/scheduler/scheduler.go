package scheduler

import (
	"container/heap"
	"log/slog"
	"sync"
	"time"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

// Limits caps the notifications emitted per cycle. A value <= 0 disables
// the corresponding cap.
type Limits struct {
	MaxPerCategory int
	MaxTotal       int
}

// StateStore is the tracker's atomic select-and-mark entry point.
type StateStore interface {
	Commit(now time.Time, choose func(view domain.TrackerView) []string) []string
}

type PauseGate interface {
	IsPaused(now time.Time) bool
}

type Scheduler struct {
	mu     sync.RWMutex
	limits Limits
	pause  PauseGate
}

func NewScheduler(limits Limits, pause PauseGate) *Scheduler {
	return &Scheduler{
		limits: limits,
		pause:  pause,
	}
}

func (s *Scheduler) SetLimits(limits Limits) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limits = limits
}

func (s *Scheduler) Limits() Limits {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limits
}

// Schedule selects the notifications to present at now and marks them as
// notified in store within the same critical section. While paused it
// returns an empty list and leaves store untouched.
func (s *Scheduler) Schedule(eligible []domain.Task, store StateStore, now time.Time) []domain.NotificationIntent {
	paused := s.pause != nil && s.pause.IsPaused(now)
	return s.ScheduleGated(eligible, store, now, paused)
}

// ScheduleGated is Schedule with the pause decision made by the caller, so a
// cycle that has already read the gate acts on that same reading.
func (s *Scheduler) ScheduleGated(eligible []domain.Task, store StateStore, now time.Time, paused bool) []domain.NotificationIntent {
	if paused {
		slog.Debug("schedule short-circuited by pause",
			slog.Int("eligible_count", len(eligible)),
		)
		return []domain.NotificationIntent{}
	}

	if len(eligible) == 0 {
		return []domain.NotificationIntent{}
	}

	limits := s.Limits()

	var intents []domain.NotificationIntent
	store.Commit(now, func(view domain.TrackerView) []string {
		intents = Select(eligible, view, now, limits)

		ids := make([]string, len(intents))
		for i, intent := range intents {
			ids[i] = intent.Task.ID
		}
		return ids
	})

	if intents == nil {
		intents = []domain.NotificationIntent{}
	}

	return intents
}

// Select applies ordering and caps to the candidates that view still
// considers eligible. It does not mutate state.
func Select(candidates []domain.Task, view domain.TrackerView, now time.Time, limits Limits) []domain.NotificationIntent {
	queues := make(map[domain.Category]*PriorityQueue, len(domain.Categories))
	for _, cat := range domain.Categories {
		queues[cat] = NewPriorityQueue(cat)
	}

	seen := make(map[string]struct{}, len(candidates))
	for _, task := range candidates {
		if _, dup := seen[task.ID]; dup {
			continue
		}
		q, ok := queues[task.Category]
		if !ok || !view.IsEligible(task.ID, now) {
			continue
		}
		seen[task.ID] = struct{}{}
		heap.Push(q, NewPriorityItem(task, view.IsPinned(task.ID)))
	}

	combined := make([]*PriorityItem, 0, len(seen))
	for _, cat := range domain.Categories {
		combined = append(combined, capCategory(queues[cat].Drain(), limits.MaxPerCategory)...)
	}

	combined = truncateTotal(combined, limits.MaxTotal)

	intents := make([]domain.NotificationIntent, len(combined))
	for i, item := range combined {
		intents[i] = domain.NewNotificationIntent(item.Task, item.Pinned)
	}

	return intents
}

// capCategory keeps every pinned item plus the highest-priority unpinned
// items that fit under limit, preserving priority order.
func capCategory(ordered []*PriorityItem, limit int) []*PriorityItem {
	if limit <= 0 || len(ordered) <= limit {
		return ordered
	}

	pinned := 0
	for _, item := range ordered {
		if item.Pinned {
			pinned++
		}
	}

	room := limit - pinned
	kept := make([]*PriorityItem, 0, max(limit, pinned))
	for _, item := range ordered {
		if item.Pinned {
			kept = append(kept, item)
			continue
		}
		if room > 0 {
			kept = append(kept, item)
			room--
		}
	}

	return kept
}

// truncateTotal drops the lowest-priority unpinned items until the list fits
// under limit or only pinned items remain.
func truncateTotal(items []*PriorityItem, limit int) []*PriorityItem {
	if limit <= 0 || len(items) <= limit {
		return items
	}

	excess := len(items) - limit
	drop := make([]bool, len(items))
	for i := len(items) - 1; i >= 0 && excess > 0; i-- {
		if !items[i].Pinned {
			drop[i] = true
			excess--
		}
	}

	kept := make([]*PriorityItem, 0, limit)
	for i, item := range items {
		if !drop[i] {
			kept = append(kept, item)
		}
	}

	return kept
}
