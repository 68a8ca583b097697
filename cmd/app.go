package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-task-reminder/internal/config"
	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
	"github.com/KasumiMercury/primind-task-reminder/internal/infra/cyclerecorder"
	"github.com/KasumiMercury/primind-task-reminder/internal/infra/planfix"
	"github.com/KasumiMercury/primind-task-reminder/internal/infra/repository"
	"github.com/KasumiMercury/primind-task-reminder/internal/observability/metrics"
	"github.com/KasumiMercury/primind-task-reminder/internal/service/category"
	"github.com/KasumiMercury/primind-task-reminder/internal/service/cycle"
	"github.com/KasumiMercury/primind-task-reminder/internal/service/pause"
	"github.com/KasumiMercury/primind-task-reminder/internal/service/scheduler"
	"github.com/KasumiMercury/primind-task-reminder/internal/service/tracker"
)

// app holds the wired components shared by the run and check commands.
type app struct {
	cfg         *config.Config
	source      *planfix.Client
	redisClient *redis.Client
	service     *cycle.Service
	runner      *cycle.Runner
	pause       *pause.Controller
	metrics     *metrics.ReminderMetrics
	closers     []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("cleanup error", slog.String("error", err.Error()))
		}
	}
}

func newPlanfixClient(cfg *config.Config) (*planfix.Client, error) {
	return planfix.NewClient(planfix.Config{
		AccountURL:      cfg.Planfix.AccountURL,
		APIToken:        cfg.Planfix.APIToken,
		FilterID:        cfg.Planfix.FilterID,
		UserID:          cfg.Planfix.UserID,
		IncludeAssignee: cfg.Roles.IncludeAssignee,
		IncludeAssigner: cfg.Roles.IncludeAssigner,
		IncludeAuditor:  cfg.Roles.IncludeAuditor,
		Timeout:         cfg.Planfix.HTTPTimeout,
	})
}

func buildApp(ctx context.Context, cfg *config.Config, presenter domain.Presenter) (*app, error) {
	a := &app{cfg: cfg}

	source, err := newPlanfixClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create planfix client: %w", err)
	}
	a.source = source

	reminderMetrics, err := metrics.NewReminderMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize reminder metrics: %w", err)
	}
	a.metrics = reminderMetrics

	recorder, err := cyclerecorder.NewRecorder(ctx, cyclerecorder.LoadConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cycle recorder: %w", err)
	}
	a.closers = append(a.closers, func() error {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return errors.Join(recorder.Flush(flushCtx), recorder.Close())
	})

	opts := []cycle.Option{
		cycle.WithRecorder(recorder),
		cycle.WithMetrics(reminderMetrics),
		cycle.WithTaskURL(func(taskID string) string {
			return cfg.Planfix.WebURL() + "/task/" + taskID + "/"
		}),
	}

	if cfg.Redis.Enabled() {
		redisClient, err := connectRedis(ctx, cfg.Redis)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.redisClient = redisClient
		a.closers = append(a.closers, redisClient.Close)
		opts = append(opts, cycle.WithCheckpoints(
			repository.NewCheckpointRepository(redisClient, cfg.Planfix.UserID, cfg.Redis.CheckpointTTL),
		))
	} else {
		slog.InfoContext(ctx, "redis not configured, tracker state will not survive restarts")
	}

	settings := settingsFromConfig(cfg)

	tr, err := tracker.NewTracker(settings.Intervals)
	if err != nil {
		a.Close()
		return nil, err
	}
	pauseCtl, err := pause.NewController(cfg.Pause.ResumeHour)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.pause = pauseCtl
	sched := scheduler.NewScheduler(settings.Limits, pauseCtl)

	svc, err := cycle.NewService(
		source,
		presenter,
		category.NewClassifier(cfg.Settings.LookaheadDays),
		tr,
		sched,
		pauseCtl,
		settings,
		opts...,
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.service = svc
	a.runner = cycle.NewRunner(svc, cfg.Settings.CheckInterval, reminderMetrics)

	if err := svc.Restore(ctx); err != nil {
		slog.WarnContext(ctx, "failed to restore tracker checkpoint, starting fresh",
			slog.String("error", err.Error()),
		)
	}

	return a, nil
}

func connectRedis(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	redisClient := redis.NewClient(cfg.Options())

	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		slog.Error("failed to instrument redis tracing",
			slog.String("event", "redis.otel.tracing.fail"),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		slog.Error("failed to instrument redis metrics",
			slog.String("event", "redis.otel.metrics.fail"),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect redis",
			slog.String("event", "redis.connect.fail"),
			slog.String("error", err.Error()),
		)
		_ = redisClient.Close()
		return nil, fmt.Errorf("%w: %w", repository.ErrRedisConnection, err)
	}

	slog.Info("redis connected",
		slog.String("addr", cfg.Addr),
	)

	return redisClient, nil
}

func settingsFromConfig(cfg *config.Config) cycle.Settings {
	interval := cfg.Settings.CheckInterval

	var roles []domain.Role
	if cfg.Planfix.FilterID == "" {
		if cfg.Roles.IncludeAssignee {
			roles = append(roles, domain.RoleAssignee)
		}
		if cfg.Roles.IncludeAssigner {
			roles = append(roles, domain.RoleAssigner)
		}
		if cfg.Roles.IncludeAuditor {
			roles = append(roles, domain.RoleAuditor)
		}
	}

	return cycle.Settings{
		Notify: map[domain.Category]bool{
			domain.CategoryOverdue: cfg.Settings.NotifyOverdue,
			domain.CategoryUrgent:  cfg.Settings.NotifyUrgent,
			domain.CategoryCurrent: cfg.Settings.NotifyCurrent,
		},
		Limits: scheduler.Limits{
			MaxPerCategory: cfg.Settings.MaxWindowsPerCategory,
			MaxTotal:       cfg.Settings.MaxTotalWindows,
		},
		Intervals: tracker.Intervals{
			Default: interval,
			Category: map[domain.Category]time.Duration{
				domain.CategoryOverdue: cfg.Tracker.RenotifyOverdue,
				domain.CategoryUrgent:  cfg.Tracker.RenotifyUrgent,
				domain.CategoryCurrent: cfg.Tracker.RenotifyCurrent,
			},
		},
		Roles:       roles,
		PruneEvery:  cfg.Tracker.PruneEvery,
		PruneMaxAge: cfg.Tracker.PruneMaxAge,
	}
}
