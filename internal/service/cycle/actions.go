package cycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
	"github.com/KasumiMercury/primind-task-reminder/internal/service/pause"
)

// ActionResult is returned to the caller of HandleAction.
type ActionResult struct {
	TaskID string                  `json:"task_id"`
	Action domain.Action           `json:"action"`
	State  domain.TrackedTaskState `json:"state"`
	URL    string                  `json:"url,omitempty"`
}

// HandleAction applies a user response to a presented notification.
func (s *Service) HandleAction(ctx context.Context, taskID, rawAction string) (ActionResult, error) {
	action, err := domain.ParseAction(rawAction)
	if err != nil {
		s.recordAction(ctx, rawAction, "invalid")
		return ActionResult{}, err
	}

	st, ok := s.tracker.Get(taskID)
	if !ok {
		s.recordAction(ctx, string(action), "not_tracked")
		return ActionResult{}, fmt.Errorf("%w: %s", domain.ErrTaskNotTracked, taskID)
	}
	if !slices.Contains(domain.ActionsFor(st.Category), action) {
		s.recordAction(ctx, string(action), "not_offered")
		return ActionResult{}, fmt.Errorf("%w: %s for %s", ErrActionNotOffered, action, st.Category)
	}

	if err := s.tracker.RecordAction(taskID, action, s.now()); err != nil {
		outcome := "error"
		if errors.Is(err, domain.ErrTaskNotTracked) {
			outcome = "not_tracked"
		}
		s.recordAction(ctx, string(action), outcome)
		return ActionResult{}, err
	}
	s.recordAction(ctx, string(action), "applied")

	s.updateLatest(taskID, action)
	s.saveCheckpoint(ctx)

	updated, _ := s.tracker.Get(taskID)
	result := ActionResult{
		TaskID: taskID,
		Action: action,
		State:  updated,
	}
	if action == domain.ActionOpen && s.taskURL != nil {
		result.URL = s.taskURL(taskID)
	}

	slog.InfoContext(ctx, "user action applied",
		slog.String("event", "user_action"),
		slog.String("task_id", taskID),
		slog.String("action", string(action)),
	)

	return result, nil
}

// updateLatest keeps the list of open popups in sync with an action. Every
// action except pin closes the popup.
func (s *Service) updateLatest(taskID string, action domain.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if action == domain.ActionPin {
		for i := range s.latest {
			if s.latest[i].Task.ID == taskID {
				s.latest[i].Pinned = !s.latest[i].Pinned
			}
		}
		return
	}

	s.latest = slices.DeleteFunc(slices.Clone(s.latest), func(i domain.NotificationIntent) bool {
		return i.Task.ID == taskID
	})
}

func (s *Service) recordAction(ctx context.Context, action, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordUserAction(ctx, action, outcome)
	}
}

func (s *Service) Pause(ctx context.Context, sel pause.Selector) (domain.PauseState, error) {
	state, err := s.pause.Pause(sel, s.now())
	if err != nil {
		return state, err
	}
	s.saveCheckpoint(ctx)
	return state, nil
}

func (s *Service) Resume(ctx context.Context) domain.PauseState {
	s.pause.Resume()
	s.saveCheckpoint(ctx)
	return s.pause.State()
}

func (s *Service) IsPaused() bool {
	return s.pause.IsPaused(s.now())
}
