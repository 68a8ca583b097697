package tracker

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

const (
	SnoozeShort = 15 * time.Minute
	SnoozeLong  = 60 * time.Minute
)

// Intervals holds the minimum re-notify interval per category.
type Intervals struct {
	Default  time.Duration
	Category map[domain.Category]time.Duration
}

func (i Intervals) For(category domain.Category) time.Duration {
	if d, ok := i.Category[category]; ok && d > 0 {
		return d
	}
	return i.Default
}

func (i Intervals) Validate() error {
	if i.Default <= 0 {
		return fmt.Errorf("%w: default %s", ErrInvalidInterval, i.Default)
	}
	for cat, d := range i.Category {
		if d < 0 {
			return fmt.Errorf("%w: %s %s", ErrInvalidInterval, cat, d)
		}
	}
	return nil
}

// Tracker owns per-task notification state. Every read and write goes
// through mu.
type Tracker struct {
	mu        sync.Mutex
	states    map[string]*domain.TrackedTaskState
	intervals Intervals
}

func NewTracker(intervals Intervals) (*Tracker, error) {
	if err := intervals.Validate(); err != nil {
		return nil, err
	}
	return &Tracker{
		states:    make(map[string]*domain.TrackedTaskState),
		intervals: cloneIntervals(intervals),
	}, nil
}

func (t *Tracker) SetIntervals(intervals Intervals) error {
	if err := intervals.Validate(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.intervals = cloneIntervals(intervals)
	return nil
}

func (t *Tracker) Intervals() Intervals {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneIntervals(t.intervals)
}

// Merge folds a classified snapshot into tracker state and returns the
// sorted ids eligible for notification at now. Tracked ids missing from the
// snapshot are purged. Records without an id are ignored, and a snapshot
// with no usable record is treated as no change.
func (t *Tracker) Merge(snapshot []domain.Task, now time.Time) []string {
	seen := make(map[string]struct{}, len(snapshot))
	for i := range snapshot {
		if id := snapshot[i].ID; id != "" {
			seen[id] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range snapshot {
		task := &snapshot[i]
		if task.ID == "" {
			continue
		}

		st, ok := t.states[task.ID]
		if !ok {
			t.states[task.ID] = domain.NewTrackedTaskState(task.ID, task.Category, now)
			continue
		}

		if st.Acknowledged && task.Category != st.AcknowledgedCategory {
			slog.Info("acknowledgement cleared by category change",
				slog.String("event", "acknowledgement_cleared"),
				slog.String("task_id", task.ID),
				slog.String("from", st.AcknowledgedCategory.String()),
				slog.String("to", task.Category.String()),
			)
			st.Acknowledged = false
			st.AcknowledgedCategory = ""
		}
		st.Category = task.Category
		st.LastSeen = now

		t.normalize(st)
	}

	purged := 0
	for id := range t.states {
		if _, ok := seen[id]; !ok {
			delete(t.states, id)
			purged++
		}
	}
	if purged > 0 {
		slog.Debug("purged tasks absent from snapshot",
			slog.Int("purged_count", purged),
		)
	}

	eligible := make([]string, 0, len(seen))
	for id := range seen {
		if t.eligible(t.states[id], now) {
			eligible = append(eligible, id)
		}
	}
	sort.Strings(eligible)

	return eligible
}

// RecordAction applies a user action to a tracked task.
func (t *Tracker) RecordAction(taskID string, action domain.Action, now time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.states[taskID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTaskNotTracked, taskID)
	}

	switch action {
	case domain.ActionOpen:
		markNotified(st, now)
	case domain.ActionSnooze15:
		snooze(st, now.Add(SnoozeShort))
	case domain.ActionSnooze60:
		snooze(st, now.Add(SnoozeLong))
	case domain.ActionDone:
		st.Acknowledged = true
		st.AcknowledgedCategory = st.Category
		st.SnoozeUntil = time.Time{}
	case domain.ActionDismiss:
		st.DismissCount++
		st.LastDismissed = now
		if st.HasSnooze() && !st.IsSnoozed(now) {
			st.SnoozeUntil = time.Time{}
		}
	case domain.ActionPin:
		st.Pinned = !st.Pinned
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownAction, action)
	}

	slog.Debug("recorded user action",
		slog.String("task_id", taskID),
		slog.String("action", string(action)),
	)

	return nil
}

// Commit runs choose against a consistent view of tracker state and marks
// every returned id as notified before the lock is released. Ids that are
// no longer tracked are ignored. It returns the ids actually marked.
func (t *Tracker) Commit(now time.Time, choose func(view domain.TrackerView) []string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	chosen := choose(lockedView{t: t})

	marked := make([]string, 0, len(chosen))
	for _, id := range chosen {
		st, ok := t.states[id]
		if !ok {
			continue
		}
		markNotified(st, now)
		marked = append(marked, id)
	}

	return marked
}

// ForceEligible resets the interval and snooze of the given tracked ids so
// they are offered on this cycle. Acknowledged tasks stay retired. It returns
// the sorted ids that are now eligible.
func (t *Tracker) ForceEligible(ids []string, now time.Time) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	eligible := make([]string, 0, len(ids))
	for _, id := range ids {
		st, ok := t.states[id]
		if !ok || st.Acknowledged {
			continue
		}
		st.SnoozeUntil = time.Time{}
		st.LastNotified = time.Time{}
		st.LastDismissed = time.Time{}
		eligible = append(eligible, id)
	}
	sort.Strings(eligible)

	return eligible
}

// Prune drops entries that have not been seen within maxAge and dismissed
// entries that have been idle for maxAge. Pinned or acknowledged entries that
// are still being seen are kept.
func (t *Tracker) Prune(now time.Time, maxAge time.Duration) int {
	if maxAge <= 0 {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := now.Add(-maxAge)
	removed := 0
	for id, st := range t.states {
		stale := st.LastSeen.Before(cutoff)
		idleDismissed := st.DismissCount > 0 &&
			!st.Pinned &&
			!st.Acknowledged &&
			!st.IsSnoozed(now) &&
			st.LastShownOrDismissed().Before(cutoff)
		if stale || idleDismissed {
			delete(t.states, id)
			removed++
		}
	}

	if removed > 0 {
		slog.Info("pruned stale tracker entries",
			slog.String("event", "tracker_pruned"),
			slog.Int("removed_count", removed),
			slog.Int("remaining_count", len(t.states)),
		)
	}

	return removed
}

func (t *Tracker) Stats(now time.Time) domain.TrackerStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := domain.TrackerStats{Tracked: len(t.states)}
	for _, st := range t.states {
		if st.HasSnooze() {
			if st.IsSnoozed(now) {
				stats.Snoozed++
			} else {
				stats.ExpiredSnooze++
			}
		}
		if st.Acknowledged {
			stats.Acknowledged++
		}
		if st.Pinned {
			stats.Pinned++
		}
		if st.DismissCount > 0 {
			stats.Dismissed++
		}
	}

	return stats
}

func (t *Tracker) Get(taskID string) (domain.TrackedTaskState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.states[taskID]
	if !ok {
		return domain.TrackedTaskState{}, false
	}
	return *st, true
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.states)
}

// Snapshot returns a copy of every tracked state ordered by task id.
func (t *Tracker) Snapshot() []domain.TrackedTaskState {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.TrackedTaskState, 0, len(t.states))
	for _, st := range t.states {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TaskID < out[j].TaskID
	})

	return out
}

// Restore replaces tracker state with previously captured states.
func (t *Tracker) Restore(states []domain.TrackedTaskState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.states = make(map[string]*domain.TrackedTaskState, len(states))
	for i := range states {
		if states[i].TaskID == "" {
			continue
		}
		st := states[i]
		t.normalize(&st)
		t.states[st.TaskID] = &st
	}
}

func (t *Tracker) eligible(st *domain.TrackedTaskState, now time.Time) bool {
	if st == nil || st.Acknowledged {
		return false
	}

	if st.HasSnooze() {
		// an expired snooze is its own re-notify boundary
		return !now.Before(st.SnoozeUntil)
	}

	if !st.WasNotified() && st.LastDismissed.IsZero() {
		return true
	}

	if st.Escalated() {
		return true
	}

	return now.Sub(st.LastShownOrDismissed()) >= t.intervals.For(st.Category)
}

func (t *Tracker) normalize(st *domain.TrackedTaskState) {
	if st.Normalize() {
		slog.Warn("tracker state normalized",
			slog.String("event", "state_corruption"),
			slog.String("task_id", st.TaskID),
			slog.String("reason", "acknowledged task had an active snooze"),
		)
	}
}

func markNotified(st *domain.TrackedTaskState, now time.Time) {
	st.LastNotified = now
	st.NotifiedCategory = st.Category
	st.SnoozeUntil = time.Time{}
}

func snooze(st *domain.TrackedTaskState, until time.Time) {
	st.SnoozeUntil = until
	st.Acknowledged = false
	st.AcknowledgedCategory = ""
}

func cloneIntervals(in Intervals) Intervals {
	out := Intervals{
		Default:  in.Default,
		Category: make(map[domain.Category]time.Duration, len(in.Category)),
	}
	for k, v := range in.Category {
		out.Category[k] = v
	}
	return out
}

type lockedView struct {
	t *Tracker
}

func (v lockedView) IsPinned(taskID string) bool {
	st, ok := v.t.states[taskID]
	return ok && st.Pinned
}

func (v lockedView) IsEligible(taskID string, now time.Time) bool {
	return v.t.eligible(v.t.states[taskID], now)
}
