package tracker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

const pollInterval = 5 * time.Minute

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	tr, err := NewTracker(Intervals{Default: pollInterval})
	require.NoError(t, err)
	return tr
}

func task(id string, cat domain.Category) domain.Task {
	return domain.Task{ID: id, Title: "task " + id, Category: cat}
}

func commitAll(tr *Tracker, now time.Time, ids []string) {
	tr.Commit(now, func(domain.TrackerView) []string { return ids })
}

func TestNewTracker_InvalidInterval(t *testing.T) {
	_, err := NewTracker(Intervals{})
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = NewTracker(Intervals{Default: time.Minute, Category: map[domain.Category]time.Duration{domain.CategoryUrgent: -time.Second}})
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestMerge_NewTasksAreEligible(t *testing.T) {
	tr := newTestTracker(t)

	got := tr.Merge([]domain.Task{task("b", domain.CategoryCurrent), task("a", domain.CategoryOverdue)}, t0)

	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 2, tr.Len())
}

func TestMerge_Idempotent(t *testing.T) {
	tr := newTestTracker(t)
	snapshot := []domain.Task{task("a", domain.CategoryUrgent), task("b", domain.CategoryCurrent)}

	first := tr.Merge(snapshot, t0)
	second := tr.Merge(snapshot, t0)

	assert.Subset(t, first, second)
	assert.Len(t, second, len(first))
}

func TestMerge_EmptySnapshotIsNoChange(t *testing.T) {
	tr := newTestTracker(t)
	tr.Merge([]domain.Task{task("a", domain.CategoryUrgent)}, t0)

	got := tr.Merge(nil, t0.Add(time.Minute))

	assert.Nil(t, got)
	_, ok := tr.Get("a")
	assert.True(t, ok, "empty snapshot must not purge state")
}

func TestMerge_OnlyInvalidRecordsIsNoChange(t *testing.T) {
	tr := newTestTracker(t)
	tr.Merge([]domain.Task{task("a", domain.CategoryUrgent), task("b", domain.CategoryCurrent)}, t0)
	require.NoError(t, tr.RecordAction("a", domain.ActionDone, t0))

	got := tr.Merge([]domain.Task{{Title: "malformed"}}, t0.Add(time.Minute))

	assert.Nil(t, got)
	assert.Equal(t, 2, tr.Len())
	st, ok := tr.Get("a")
	require.True(t, ok)
	assert.True(t, st.Acknowledged)
}

func TestMerge_SkipsRecordsWithoutID(t *testing.T) {
	tr := newTestTracker(t)

	got := tr.Merge([]domain.Task{task("", domain.CategoryUrgent), task("a", domain.CategoryUrgent)}, t0)

	assert.Equal(t, []string{"a"}, got)
	assert.Equal(t, 1, tr.Len())
}

func TestDedup(t *testing.T) {
	tr := newTestTracker(t)
	snapshot := []domain.Task{task("a", domain.CategoryUrgent)}

	ids := tr.Merge(snapshot, t0)
	require.Equal(t, []string{"a"}, ids)
	commitAll(tr, t0, ids)

	assert.Empty(t, tr.Merge(snapshot, t0.Add(pollInterval-time.Second)))
	assert.Equal(t, []string{"a"}, tr.Merge(snapshot, t0.Add(pollInterval)))
}

func TestEscalationBypassesInterval(t *testing.T) {
	tr := newTestTracker(t)

	ids := tr.Merge([]domain.Task{task("a", domain.CategoryCurrent)}, t0)
	commitAll(tr, t0, ids)

	got := tr.Merge([]domain.Task{task("a", domain.CategoryOverdue)}, t0.Add(time.Second))

	assert.Equal(t, []string{"a"}, got)
}

func TestDeescalationWaitsForInterval(t *testing.T) {
	tr := newTestTracker(t)

	ids := tr.Merge([]domain.Task{task("a", domain.CategoryOverdue)}, t0)
	commitAll(tr, t0, ids)

	assert.Empty(t, tr.Merge([]domain.Task{task("a", domain.CategoryCurrent)}, t0.Add(time.Minute)))
}

func TestEscalationDoesNotOverrideSnooze(t *testing.T) {
	tr := newTestTracker(t)

	ids := tr.Merge([]domain.Task{task("a", domain.CategoryUrgent)}, t0)
	commitAll(tr, t0, ids)
	require.NoError(t, tr.RecordAction("a", domain.ActionSnooze60, t0))

	assert.Empty(t, tr.Merge([]domain.Task{task("a", domain.CategoryOverdue)}, t0.Add(time.Minute)))
}

func TestSnoozeBoundaryInclusive(t *testing.T) {
	tests := []struct {
		name   string
		action domain.Action
		length time.Duration
	}{
		{name: "snooze15", action: domain.ActionSnooze15, length: 15 * time.Minute},
		{name: "snooze60", action: domain.ActionSnooze60, length: 60 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestTracker(t)
			snapshot := []domain.Task{task("a", domain.CategoryUrgent)}

			commitAll(tr, t0, tr.Merge(snapshot, t0))
			if err := tr.RecordAction("a", tt.action, t0); err != nil {
				t.Fatalf("RecordAction() error = %v", err)
			}

			for _, offset := range []time.Duration{0, time.Minute, tt.length - time.Nanosecond} {
				if got := tr.Merge(snapshot, t0.Add(offset)); len(got) != 0 {
					t.Errorf("Merge() at +%s = %v, want none", offset, got)
				}
			}
			if got := tr.Merge(snapshot, t0.Add(tt.length)); len(got) != 1 || got[0] != "a" {
				t.Errorf("Merge() at +%s = %v, want [a]", tt.length, got)
			}
		})
	}
}

func TestExpiredSnoozeIgnoresInterval(t *testing.T) {
	tr, err := NewTracker(Intervals{Default: 2 * time.Hour})
	require.NoError(t, err)
	snapshot := []domain.Task{task("a", domain.CategoryOverdue)}

	commitAll(tr, t0, tr.Merge(snapshot, t0))
	require.NoError(t, tr.RecordAction("a", domain.ActionSnooze15, t0))

	ids := tr.Merge(snapshot, t0.Add(15*time.Minute))
	require.Equal(t, []string{"a"}, ids)

	commitAll(tr, t0.Add(15*time.Minute), ids)
	st, _ := tr.Get("a")
	assert.True(t, st.SnoozeUntil.IsZero(), "snooze is cleared once notified again")
	assert.Empty(t, tr.Merge(snapshot, t0.Add(20*time.Minute)))
}

func TestDonePermanence(t *testing.T) {
	tr := newTestTracker(t)
	snapshot := []domain.Task{task("a", domain.CategoryUrgent)}

	commitAll(tr, t0, tr.Merge(snapshot, t0))
	require.NoError(t, tr.RecordAction("a", domain.ActionDone, t0))

	for i := 1; i <= 50; i++ {
		assert.Empty(t, tr.Merge(snapshot, t0.Add(time.Duration(i)*time.Hour)))
	}
}

func TestDoneClearedByCategoryChange(t *testing.T) {
	tr := newTestTracker(t)

	commitAll(tr, t0, tr.Merge([]domain.Task{task("a", domain.CategoryCurrent)}, t0))
	require.NoError(t, tr.RecordAction("a", domain.ActionDone, t0))

	got := tr.Merge([]domain.Task{task("a", domain.CategoryUrgent)}, t0.Add(time.Minute))

	assert.Equal(t, []string{"a"}, got)
	st, _ := tr.Get("a")
	assert.False(t, st.Acknowledged)
}

func TestDoneClearsSnoozeAndSnoozeClearsDone(t *testing.T) {
	tr := newTestTracker(t)
	tr.Merge([]domain.Task{task("a", domain.CategoryUrgent)}, t0)

	require.NoError(t, tr.RecordAction("a", domain.ActionSnooze15, t0))
	require.NoError(t, tr.RecordAction("a", domain.ActionDone, t0))
	st, _ := tr.Get("a")
	assert.True(t, st.Acknowledged)
	assert.True(t, st.SnoozeUntil.IsZero())

	require.NoError(t, tr.RecordAction("a", domain.ActionSnooze15, t0))
	st, _ = tr.Get("a")
	assert.False(t, st.Acknowledged)
	assert.Equal(t, t0.Add(SnoozeShort), st.SnoozeUntil)
}

func TestPurgeOnDisappearance(t *testing.T) {
	tr := newTestTracker(t)

	commitAll(tr, t0, tr.Merge([]domain.Task{task("a", domain.CategoryUrgent), task("b", domain.CategoryUrgent)}, t0))
	require.NoError(t, tr.RecordAction("a", domain.ActionDone, t0))

	tr.Merge([]domain.Task{task("b", domain.CategoryUrgent)}, t0.Add(time.Second))
	_, ok := tr.Get("a")
	assert.False(t, ok)

	got := tr.Merge([]domain.Task{task("a", domain.CategoryUrgent), task("b", domain.CategoryUrgent)}, t0.Add(2*time.Second))
	assert.Equal(t, []string{"a"}, got, "reintroduced id is fresh")
	st, _ := tr.Get("a")
	assert.False(t, st.Acknowledged)
}

func TestDismissReappearsAfterInterval(t *testing.T) {
	tr := newTestTracker(t)
	snapshot := []domain.Task{task("a", domain.CategoryUrgent)}

	commitAll(tr, t0, tr.Merge(snapshot, t0))
	dismissedAt := t0.Add(2 * time.Minute)
	require.NoError(t, tr.RecordAction("a", domain.ActionDismiss, dismissedAt))

	assert.Empty(t, tr.Merge(snapshot, dismissedAt.Add(pollInterval-time.Second)))
	assert.Equal(t, []string{"a"}, tr.Merge(snapshot, dismissedAt.Add(pollInterval)))

	st, _ := tr.Get("a")
	assert.Equal(t, 1, st.DismissCount)
}

func TestDismissHonorsEscalation(t *testing.T) {
	tr := newTestTracker(t)

	commitAll(tr, t0, tr.Merge([]domain.Task{task("a", domain.CategoryUrgent)}, t0))
	require.NoError(t, tr.RecordAction("a", domain.ActionDismiss, t0))

	assert.Equal(t, []string{"a"}, tr.Merge([]domain.Task{task("a", domain.CategoryOverdue)}, t0.Add(time.Second)))
}

func TestPerCategoryIntervals(t *testing.T) {
	tr, err := NewTracker(Intervals{
		Default: 30 * time.Minute,
		Category: map[domain.Category]time.Duration{
			domain.CategoryOverdue: 5 * time.Minute,
		},
	})
	require.NoError(t, err)
	snapshot := []domain.Task{task("o", domain.CategoryOverdue), task("c", domain.CategoryCurrent)}

	commitAll(tr, t0, tr.Merge(snapshot, t0))

	assert.Equal(t, []string{"o"}, tr.Merge(snapshot, t0.Add(5*time.Minute)))
	assert.Equal(t, []string{"c", "o"}, tr.Merge(snapshot, t0.Add(30*time.Minute)))
}

func TestRecordAction_Errors(t *testing.T) {
	tr := newTestTracker(t)
	tr.Merge([]domain.Task{task("a", domain.CategoryUrgent)}, t0)

	assert.ErrorIs(t, tr.RecordAction("missing", domain.ActionDone, t0), domain.ErrTaskNotTracked)
	assert.ErrorIs(t, tr.RecordAction("a", domain.Action("explode"), t0), domain.ErrUnknownAction)
}

func TestRecordAction_OpenMarksNotified(t *testing.T) {
	tr := newTestTracker(t)
	snapshot := []domain.Task{task("a", domain.CategoryUrgent)}
	tr.Merge(snapshot, t0)

	require.NoError(t, tr.RecordAction("a", domain.ActionOpen, t0))

	assert.Empty(t, tr.Merge(snapshot, t0.Add(time.Minute)))
}

func TestRecordAction_PinToggles(t *testing.T) {
	tr := newTestTracker(t)
	tr.Merge([]domain.Task{task("a", domain.CategoryCurrent)}, t0)

	require.NoError(t, tr.RecordAction("a", domain.ActionPin, t0))
	st, _ := tr.Get("a")
	assert.True(t, st.Pinned)

	require.NoError(t, tr.RecordAction("a", domain.ActionPin, t0))
	st, _ = tr.Get("a")
	assert.False(t, st.Pinned)
}

func TestCommit_ViewReflectsState(t *testing.T) {
	tr := newTestTracker(t)
	tr.Merge([]domain.Task{task("a", domain.CategoryUrgent), task("b", domain.CategoryUrgent)}, t0)
	require.NoError(t, tr.RecordAction("a", domain.ActionPin, t0))
	require.NoError(t, tr.RecordAction("b", domain.ActionDone, t0))

	var pinnedA, eligibleB bool
	marked := tr.Commit(t0, func(view domain.TrackerView) []string {
		pinnedA = view.IsPinned("a")
		eligibleB = view.IsEligible("b", t0)
		return []string{"a", "ghost"}
	})

	assert.True(t, pinnedA)
	assert.False(t, eligibleB)
	assert.Equal(t, []string{"a"}, marked)
	st, _ := tr.Get("a")
	assert.Equal(t, t0, st.LastNotified)
	assert.Equal(t, domain.CategoryUrgent, st.NotifiedCategory)
}

func TestForceEligible(t *testing.T) {
	tr := newTestTracker(t)
	snapshot := []domain.Task{task("a", domain.CategoryUrgent), task("b", domain.CategoryUrgent), task("c", domain.CategoryUrgent)}

	commitAll(tr, t0, tr.Merge(snapshot, t0))
	require.NoError(t, tr.RecordAction("a", domain.ActionSnooze60, t0))
	require.NoError(t, tr.RecordAction("b", domain.ActionDone, t0))

	got := tr.ForceEligible([]string{"a", "b", "c", "missing"}, t0.Add(time.Minute))

	assert.Equal(t, []string{"a", "c"}, got)
	assert.Equal(t, []string{"a", "c"}, tr.Merge(snapshot, t0.Add(time.Minute)))
}

func TestRestore_NormalizesCorruptState(t *testing.T) {
	tr := newTestTracker(t)

	tr.Restore([]domain.TrackedTaskState{
		{TaskID: "a", Category: domain.CategoryUrgent, Acknowledged: true, AcknowledgedCategory: domain.CategoryUrgent, SnoozeUntil: t0.Add(time.Hour)},
		{TaskID: ""},
	})

	require.Equal(t, 1, tr.Len())
	st, _ := tr.Get("a")
	assert.True(t, st.Acknowledged)
	assert.True(t, st.SnoozeUntil.IsZero())
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	tr := newTestTracker(t)
	commitAll(tr, t0, tr.Merge([]domain.Task{task("b", domain.CategoryUrgent), task("a", domain.CategoryOverdue)}, t0))
	require.NoError(t, tr.RecordAction("a", domain.ActionPin, t0))

	states := tr.Snapshot()
	require.Len(t, states, 2)
	assert.Equal(t, "a", states[0].TaskID)

	restored := newTestTracker(t)
	restored.Restore(states)

	assert.Equal(t, states, restored.Snapshot())
	assert.Empty(t, restored.Merge([]domain.Task{task("b", domain.CategoryUrgent), task("a", domain.CategoryOverdue)}, t0.Add(time.Minute)))
}

func TestPrune(t *testing.T) {
	tr := newTestTracker(t)
	later := t0.Add(25 * time.Hour)
	tr.Restore([]domain.TrackedTaskState{
		{TaskID: "stale", Category: domain.CategoryCurrent, FirstSeen: t0, LastSeen: t0},
		{TaskID: "dismissed", Category: domain.CategoryCurrent, NotifiedCategory: domain.CategoryCurrent, LastNotified: t0, DismissCount: 1, LastDismissed: t0, FirstSeen: t0, LastSeen: later},
		{TaskID: "pinned", Category: domain.CategoryCurrent, Pinned: true, DismissCount: 1, LastDismissed: t0, FirstSeen: t0, LastSeen: later},
		{TaskID: "fresh", Category: domain.CategoryCurrent, NotifiedCategory: domain.CategoryCurrent, LastNotified: t0, FirstSeen: t0, LastSeen: later},
	})

	removed := tr.Prune(later, 24*time.Hour)

	assert.Equal(t, 2, removed)
	for _, id := range []string{"pinned", "fresh"} {
		_, ok := tr.Get(id)
		assert.True(t, ok, id)
	}
	assert.Equal(t, 0, tr.Prune(later, 0))
}

func TestStats(t *testing.T) {
	tr := newTestTracker(t)
	snapshot := []domain.Task{
		task("a", domain.CategoryUrgent),
		task("b", domain.CategoryUrgent),
		task("c", domain.CategoryUrgent),
		task("d", domain.CategoryUrgent),
	}
	tr.Merge(snapshot, t0)
	require.NoError(t, tr.RecordAction("a", domain.ActionSnooze15, t0))
	require.NoError(t, tr.RecordAction("b", domain.ActionSnooze60, t0))
	require.NoError(t, tr.RecordAction("c", domain.ActionDone, t0))
	require.NoError(t, tr.RecordAction("c", domain.ActionPin, t0))
	require.NoError(t, tr.RecordAction("d", domain.ActionDismiss, t0))

	stats := tr.Stats(t0.Add(30 * time.Minute))

	assert.Equal(t, domain.TrackerStats{
		Tracked:       4,
		Snoozed:       1,
		ExpiredSnooze: 1,
		Acknowledged:  1,
		Pinned:        1,
		Dismissed:     1,
	}, stats)
}

func TestConcurrentMergeAndActions(t *testing.T) {
	tr := newTestTracker(t)
	snapshot := make([]domain.Task, 0, 5)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		snapshot = append(snapshot, task(id, domain.CategoryUrgent))
	}
	tr.Merge(snapshot, t0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			now := t0.Add(time.Duration(i) * time.Minute)
			ids := tr.Merge(snapshot, now)
			commitAll(tr, now, ids)
		}(i)
		go func(i int) {
			defer wg.Done()
			actions := []domain.Action{domain.ActionSnooze15, domain.ActionDone, domain.ActionDismiss, domain.ActionPin}
			_ = tr.RecordAction(snapshot[i%len(snapshot)].ID, actions[i%len(actions)], t0)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, len(snapshot), tr.Len())
	for _, st := range tr.Snapshot() {
		assert.False(t, st.Acknowledged && !st.SnoozeUntil.IsZero(), "task %s has both ack and snooze", st.TaskID)
	}
}
