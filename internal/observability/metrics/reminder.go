package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	reminderMeterName = "reminder.service"
)

type ReminderMetrics struct {
	cycles              metric.Int64Counter
	tasksClassified     metric.Int64Counter
	intentsPresented    metric.Int64Counter
	suppressions        metric.Int64Counter
	invalidTasks        metric.Int64Counter
	skippedTicks        metric.Int64Counter
	userActions         metric.Int64Counter
	cycleDuration       metric.Float64Histogram
	sourceFetchDuration metric.Float64Histogram
}

func NewReminderMetrics() (*ReminderMetrics, error) {
	meter := otel.Meter(reminderMeterName)

	cycles, err := meter.Int64Counter(
		"reminder_cycles_total",
		metric.WithDescription("Total number of poll cycles by outcome"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return nil, err
	}

	tasksClassified, err := meter.Int64Counter(
		"reminder_tasks_classified_total",
		metric.WithDescription("Tasks classified per category"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, err
	}

	intentsPresented, err := meter.Int64Counter(
		"reminder_notifications_total",
		metric.WithDescription("Notifications presented per category"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, err
	}

	suppressions, err := meter.Int64Counter(
		"reminder_suppressed_total",
		metric.WithDescription("Eligible tasks that were not presented, by reason"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, err
	}

	invalidTasks, err := meter.Int64Counter(
		"reminder_invalid_tasks_total",
		metric.WithDescription("Task records dropped as malformed"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, err
	}

	skippedTicks, err := meter.Int64Counter(
		"reminder_skipped_ticks_total",
		metric.WithDescription("Timer ticks skipped because a cycle was still running"),
		metric.WithUnit("{tick}"),
	)
	if err != nil {
		return nil, err
	}

	userActions, err := meter.Int64Counter(
		"reminder_user_actions_total",
		metric.WithDescription("User actions applied to notifications"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return nil, err
	}

	cycleDuration, err := meter.Float64Histogram(
		"reminder_cycle_duration_seconds",
		metric.WithDescription("Poll cycle duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
		),
	)
	if err != nil {
		return nil, err
	}

	sourceFetchDuration, err := meter.Float64Histogram(
		"reminder_source_fetch_duration_seconds",
		metric.WithDescription("Time spent fetching tasks from the task source"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
		),
	)
	if err != nil {
		return nil, err
	}

	return &ReminderMetrics{
		cycles:              cycles,
		tasksClassified:     tasksClassified,
		intentsPresented:    intentsPresented,
		suppressions:        suppressions,
		invalidTasks:        invalidTasks,
		skippedTicks:        skippedTicks,
		userActions:         userActions,
		cycleDuration:       cycleDuration,
		sourceFetchDuration: sourceFetchDuration,
	}, nil
}

func (m *ReminderMetrics) RecordCycle(ctx context.Context, outcome string, forced bool, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.Bool("forced", forced),
	)
	m.cycles.Add(ctx, 1, attrs)
	m.cycleDuration.Record(ctx, duration.Seconds(), attrs)
}

func (m *ReminderMetrics) RecordTasksClassified(ctx context.Context, category string, count int) {
	if count == 0 {
		return
	}
	m.tasksClassified.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("category", category),
	))
}

func (m *ReminderMetrics) RecordNotificationPresented(ctx context.Context, category string, pinned bool) {
	m.intentsPresented.Add(ctx, 1, metric.WithAttributes(
		attribute.String("category", category),
		attribute.Bool("pinned", pinned),
	))
}

func (m *ReminderMetrics) RecordSuppressed(ctx context.Context, reason string, count int) {
	if count == 0 {
		return
	}
	m.suppressions.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

func (m *ReminderMetrics) RecordInvalidTasks(ctx context.Context, count int) {
	if count == 0 {
		return
	}
	m.invalidTasks.Add(ctx, int64(count))
}

func (m *ReminderMetrics) RecordSkippedTick(ctx context.Context) {
	m.skippedTicks.Add(ctx, 1)
}

func (m *ReminderMetrics) RecordUserAction(ctx context.Context, action, outcome string) {
	m.userActions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("outcome", outcome),
	))
}

func (m *ReminderMetrics) RecordSourceFetchDuration(ctx context.Context, outcome string, duration time.Duration) {
	m.sourceFetchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}
