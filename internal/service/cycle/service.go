package cycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
	"github.com/KasumiMercury/primind-task-reminder/internal/observability/logging"
	"github.com/KasumiMercury/primind-task-reminder/internal/observability/metrics"
	"github.com/KasumiMercury/primind-task-reminder/internal/observability/tracing"
	"github.com/KasumiMercury/primind-task-reminder/internal/service/category"
	"github.com/KasumiMercury/primind-task-reminder/internal/service/pause"
	"github.com/KasumiMercury/primind-task-reminder/internal/service/scheduler"
	"github.com/KasumiMercury/primind-task-reminder/internal/service/tracker"
)

const (
	OutcomeOK                = "ok"
	OutcomeSourceUnavailable = "source_unavailable"
	OutcomeEmptySnapshot     = "empty_snapshot"
	OutcomePaused            = "paused"
)

// Option configures optional collaborators of a Service.
type Option func(*Service)

func WithCheckpoints(repo domain.CheckpointRepository) Option {
	return func(s *Service) { s.checkpoints = repo }
}

func WithRecorder(rec domain.CycleResultRecorder) Option {
	return func(s *Service) { s.recorder = rec }
}

func WithMetrics(m *metrics.ReminderMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTaskURL sets the resolver used for the open action.
func WithTaskURL(resolve func(taskID string) string) Option {
	return func(s *Service) { s.taskURL = resolve }
}

// Service runs poll cycles and applies user actions. Tracker state is only
// mutated through the tracker's own lock, so cycles and actions may arrive
// from different goroutines.
type Service struct {
	source     domain.TaskSource
	presenter  domain.Presenter
	classifier *category.Classifier
	tracker    *tracker.Tracker
	scheduler  *scheduler.Scheduler
	pause      *pause.Controller

	checkpoints domain.CheckpointRepository
	recorder    domain.CycleResultRecorder
	metrics     *metrics.ReminderMetrics
	taskURL     func(taskID string) string
	now         func() time.Time

	// saveMu orders snapshot and save so a newer checkpoint is never
	// overwritten by an older one.
	saveMu sync.Mutex

	mu         sync.RWMutex
	settings   Settings
	latest     []domain.NotificationIntent
	lastCycle  domain.CycleRecord
	categories map[domain.Category]int
	cycles     int
}

func NewService(
	source domain.TaskSource,
	presenter domain.Presenter,
	classifier *category.Classifier,
	tr *tracker.Tracker,
	sched *scheduler.Scheduler,
	pauseCtl *pause.Controller,
	settings Settings,
	opts ...Option,
) (*Service, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	s := &Service{
		source:     source,
		presenter:  presenter,
		classifier: classifier,
		tracker:    tr,
		scheduler:  sched,
		pause:      pauseCtl,
		now:        time.Now,
		settings:   settings.clone(),
		latest:     []domain.NotificationIntent{},
		categories: map[domain.Category]int{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.tracker.SetIntervals(settings.Intervals); err != nil {
		return nil, err
	}
	s.scheduler.SetLimits(settings.Limits)

	return s, nil
}

// RunCycle performs one fetch, classify, merge, schedule and present pass.
// A source failure leaves tracker state untouched and is returned wrapped in
// domain.ErrSourceUnavailable. force clears intervals and snoozes for every
// fetched task that is not acknowledged.
func (s *Service) RunCycle(ctx context.Context, force bool) (domain.CycleRecord, error) {
	started := s.now()
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)

	ctx, span := tracing.StartCycleSpan(ctx, runID, force)
	defer span.End()

	record := domain.CycleRecord{
		RunID:          runID,
		StartedAt:      started,
		Forced:         force,
		CategoryCounts: map[domain.Category]int{},
	}

	fetchStart := time.Now()
	tasks, err := s.source.FetchTasks(ctx)
	if s.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		s.metrics.RecordSourceFetchDuration(ctx, outcome, time.Since(fetchStart))
	}
	if err != nil {
		slog.WarnContext(ctx, "task source unavailable, cycle treated as no change",
			slog.String("event", "source_unavailable"),
			slog.String("error", err.Error()),
		)
		record.Outcome = OutcomeSourceUnavailable
		s.finish(ctx, &record, err)
		tracing.RecordCycleResult(span, 0, 0, 0, false, err)
		if !errors.Is(err, domain.ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
		}
		return record, err
	}

	settings := s.Settings()
	record.Fetched = len(tasks)

	valid := s.validTasks(ctx, tasks, &record)
	valid = filterByRole(valid, settings.Roles)

	if len(valid) == 0 {
		slog.InfoContext(ctx, "empty task snapshot, cycle treated as no change",
			slog.String("event", "empty_snapshot"),
			slog.Int("fetched_count", len(tasks)),
		)
		record.Outcome = OutcomeEmptySnapshot
		s.finish(ctx, &record, nil)
		tracing.RecordCycleResult(span, len(tasks), 0, 0, false, nil)
		return record, nil
	}

	now := s.now()
	counts := s.classifier.ClassifyAll(valid, now)
	record.CategoryCounts = counts
	if s.metrics != nil {
		for _, c := range domain.Categories {
			s.metrics.RecordTasksClassified(ctx, c.String(), counts[c])
		}
	}

	eligibleIDs := s.tracker.Merge(valid, now)

	paused := s.pause.IsPaused(now)
	record.Paused = paused

	if force && !paused {
		ids := make([]string, 0, len(valid))
		for _, t := range valid {
			ids = append(ids, t.ID)
		}
		eligibleIDs = s.tracker.ForceEligible(ids, now)
	}

	eligible, muted := pickEligible(valid, eligibleIDs, settings)
	record.Eligible = len(eligible)
	if muted > 0 {
		s.recordSuppressed(ctx, "category_disabled", muted)
	}

	intents := s.scheduler.ScheduleGated(eligible, s.tracker, now, paused)
	record.Presented = len(intents)

	switch {
	case paused:
		record.Outcome = OutcomePaused
		s.recordSuppressed(ctx, "paused", len(eligible))
	default:
		record.Outcome = OutcomeOK
		s.recordSuppressed(ctx, "cap", len(eligible)-len(intents))
	}

	if len(intents) > 0 {
		if err := s.presenter.Present(ctx, intents); err != nil {
			slog.WarnContext(ctx, "failed to present notifications",
				slog.String("error", err.Error()),
				slog.Int("intent_count", len(intents)),
			)
		}
		if s.metrics != nil {
			for _, intent := range intents {
				s.metrics.RecordNotificationPresented(ctx, intent.Category.String(), intent.Pinned)
			}
		}
	}

	s.mu.Lock()
	s.cycles++
	cycles := s.cycles
	if !paused {
		s.latest = intents
	}
	s.categories = counts
	s.mu.Unlock()

	if settings.PruneEvery > 0 && cycles%settings.PruneEvery == 0 {
		s.tracker.Prune(now, settings.PruneMaxAge)
	}

	s.saveCheckpoint(ctx)
	s.finish(ctx, &record, nil)
	tracing.RecordCycleResult(span, record.Fetched, record.Eligible, record.Presented, paused, nil)

	slog.InfoContext(ctx, "cycle completed",
		slog.String("event", "cycle_completed"),
		slog.Int("fetched_count", record.Fetched),
		slog.Int("eligible_count", record.Eligible),
		slog.Int("presented_count", record.Presented),
		slog.Bool("paused", paused),
		slog.Bool("forced", force),
	)

	return record, nil
}

func (s *Service) validTasks(ctx context.Context, tasks []domain.Task, record *domain.CycleRecord) []domain.Task {
	valid := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			record.Invalid++
			slog.WarnContext(ctx, "dropping invalid task record",
				slog.String("event", "invalid_task"),
				slog.String("title", t.Title),
				slog.String("error", err.Error()),
			)
			continue
		}
		valid = append(valid, t)
	}

	if record.Invalid > 0 && s.metrics != nil {
		s.metrics.RecordInvalidTasks(ctx, record.Invalid)
	}

	return valid
}

func (s *Service) finish(ctx context.Context, record *domain.CycleRecord, err error) {
	record.Duration = s.now().Sub(record.StartedAt)

	s.mu.Lock()
	s.lastCycle = *record
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordCycle(ctx, record.Outcome, record.Forced, record.Duration)
	}

	if s.recorder != nil {
		if recErr := s.recorder.RecordCycle(ctx, *record); recErr != nil {
			slog.WarnContext(ctx, "failed to record cycle result",
				slog.String("error", recErr.Error()),
			)
		}
	}
}

func (s *Service) recordSuppressed(ctx context.Context, reason string, count int) {
	if count <= 0 || s.metrics == nil {
		return
	}
	s.metrics.RecordSuppressed(ctx, reason, count)
}

func (s *Service) saveCheckpoint(ctx context.Context) {
	if s.checkpoints == nil {
		return
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	checkpoint := &domain.TrackerCheckpoint{
		States: s.tracker.Snapshot(),
		Pause:  s.pause.State(),
	}
	if err := s.checkpoints.SaveCheckpoint(ctx, checkpoint); err != nil {
		slog.WarnContext(ctx, "failed to save tracker checkpoint",
			slog.String("error", err.Error()),
		)
	}
}

// Restore loads tracker and pause state saved by a previous process. A
// missing checkpoint is not an error.
func (s *Service) Restore(ctx context.Context) error {
	if s.checkpoints == nil {
		return nil
	}

	checkpoint, err := s.checkpoints.LoadCheckpoint(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrCheckpointNotFound) {
			slog.InfoContext(ctx, "no tracker checkpoint found, starting fresh")
			return nil
		}
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}

	s.tracker.Restore(checkpoint.States)
	s.pause.Restore(checkpoint.Pause)

	slog.InfoContext(ctx, "tracker checkpoint restored",
		slog.String("event", "checkpoint_restored"),
		slog.Int("state_count", len(checkpoint.States)),
		slog.Bool("paused", checkpoint.Pause.Active),
	)

	return nil
}

func filterByRole(tasks []domain.Task, roles []domain.Role) []domain.Task {
	if len(roles) == 0 {
		return tasks
	}

	kept := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if len(t.Roles) == 0 || slices.ContainsFunc(roles, t.HasRole) {
			kept = append(kept, t)
		}
	}
	return kept
}

// pickEligible returns the tasks named by ids whose category has popups
// enabled, along with the number muted by the toggles.
func pickEligible(tasks []domain.Task, ids []string, settings Settings) ([]domain.Task, int) {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	eligible := make([]domain.Task, 0, len(ids))
	muted := 0
	for _, t := range tasks {
		if _, ok := wanted[t.ID]; !ok {
			continue
		}
		if !settings.Notifies(t.Category) {
			muted++
			continue
		}
		eligible = append(eligible, t)
	}
	return eligible, muted
}
