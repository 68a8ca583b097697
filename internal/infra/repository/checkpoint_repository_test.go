package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
	"github.com/KasumiMercury/primind-task-reminder/internal/testutil"
)

func TestLoadCheckpointNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, cleanup := testutil.SetupRedisContainer(ctx, t)
	defer cleanup()

	repo := NewCheckpointRepository(client, "1", time.Hour)

	_, err := repo.LoadCheckpoint(ctx)
	if !errors.Is(err, domain.ErrCheckpointNotFound) {
		t.Fatalf("expected ErrCheckpointNotFound, got %v", err)
	}
}

func TestSaveAndLoadCheckpoint(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, cleanup := testutil.SetupRedisContainer(ctx, t)
	defer cleanup()

	repo := NewCheckpointRepository(client, "1", time.Hour)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		checkpoint *domain.TrackerCheckpoint
		wantStates map[string]domain.TrackedTaskState
		wantPause  domain.PauseState
	}{
		{
			name: "states and pause",
			checkpoint: &domain.TrackerCheckpoint{
				States: []domain.TrackedTaskState{
					{
						TaskID:           "1",
						Category:         domain.CategoryUrgent,
						NotifiedCategory: domain.CategoryCurrent,
						LastNotified:     now,
						SnoozeUntil:      now.Add(15 * time.Minute),
						FirstSeen:        now,
						LastSeen:         now,
					},
					{
						TaskID:               "2",
						Category:             domain.CategoryCurrent,
						Acknowledged:         true,
						AcknowledgedCategory: domain.CategoryCurrent,
						Pinned:               true,
						DismissCount:         3,
						FirstSeen:            now,
						LastSeen:             now,
					},
				},
				Pause: domain.PauseState{
					Active:   true,
					ResumeAt: now.Add(time.Hour),
					Mode:     domain.PauseModeDuration,
				},
			},
			wantPause: domain.PauseState{
				Active:   true,
				ResumeAt: now.Add(time.Hour),
				Mode:     domain.PauseModeDuration,
			},
		},
		{
			name: "overwrite drops stale states",
			checkpoint: &domain.TrackerCheckpoint{
				States: []domain.TrackedTaskState{
					{TaskID: "3", Category: domain.CategoryOverdue, FirstSeen: now, LastSeen: now},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := repo.SaveCheckpoint(ctx, tt.checkpoint); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got, err := repo.LoadCheckpoint(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(got.States) != len(tt.checkpoint.States) {
				t.Fatalf("expected %d states, got %d", len(tt.checkpoint.States), len(got.States))
			}

			byID := make(map[string]domain.TrackedTaskState, len(got.States))
			for _, s := range got.States {
				byID[s.TaskID] = s
			}
			for _, want := range tt.checkpoint.States {
				s, ok := byID[want.TaskID]
				if !ok {
					t.Fatalf("state %s missing", want.TaskID)
				}
				if s.Category != want.Category || s.Acknowledged != want.Acknowledged ||
					s.Pinned != want.Pinned || s.DismissCount != want.DismissCount {
					t.Errorf("state %s mismatch: got %+v want %+v", want.TaskID, s, want)
				}
				if !s.LastNotified.Equal(want.LastNotified) || !s.SnoozeUntil.Equal(want.SnoozeUntil) {
					t.Errorf("state %s timestamps mismatch: got %+v want %+v", want.TaskID, s, want)
				}
			}

			if got.Pause.Active != tt.wantPause.Active || !got.Pause.ResumeAt.Equal(tt.wantPause.ResumeAt) ||
				got.Pause.Mode != tt.wantPause.Mode {
				t.Errorf("pause mismatch: got %+v want %+v", got.Pause, tt.wantPause)
			}
		})
	}
}

func TestSaveCheckpointNil(t *testing.T) {
	repo := NewCheckpointRepository(nil, "1", 0)

	if err := repo.SaveCheckpoint(context.Background(), nil); !errors.Is(err, ErrInvalidCheckpointData) {
		t.Fatalf("expected ErrInvalidCheckpointData, got %v", err)
	}
}

func TestDeleteCheckpoint(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, cleanup := testutil.SetupRedisContainer(ctx, t)
	defer cleanup()

	repo := NewCheckpointRepository(client, "1", time.Hour)

	err := repo.SaveCheckpoint(ctx, &domain.TrackerCheckpoint{
		States: []domain.TrackedTaskState{{TaskID: "1", Category: domain.CategoryCurrent}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := repo.DeleteCheckpoint(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := repo.LoadCheckpoint(ctx); !errors.Is(err, domain.ErrCheckpointNotFound) {
		t.Fatalf("expected ErrCheckpointNotFound after delete, got %v", err)
	}
}

func TestCheckpointsAreScopedByUser(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, cleanup := testutil.SetupRedisContainer(ctx, t)
	defer cleanup()

	first := NewCheckpointRepository(client, "1", time.Hour)
	second := NewCheckpointRepository(client, "2", time.Hour)

	err := first.SaveCheckpoint(ctx, &domain.TrackerCheckpoint{
		States: []domain.TrackedTaskState{{TaskID: "1", Category: domain.CategoryCurrent}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := second.LoadCheckpoint(ctx); !errors.Is(err, domain.ErrCheckpointNotFound) {
		t.Fatalf("expected other user to have no checkpoint, got %v", err)
	}
}
