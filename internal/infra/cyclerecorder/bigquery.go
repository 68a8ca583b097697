//go:build gcloud

package cyclerecorder

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

type bigQueryRecord struct {
	RecordedAt   time.Time `bigquery:"recorded_at"`
	StartedAt    time.Time `bigquery:"started_at"`
	RunID        string    `bigquery:"run_id"`
	Outcome      string    `bigquery:"outcome"`
	Forced       bool      `bigquery:"forced"`
	Paused       bool      `bigquery:"paused"`
	DurationMS   int64     `bigquery:"duration_ms"`
	Fetched      int64     `bigquery:"fetched"`
	Invalid      int64     `bigquery:"invalid"`
	Eligible     int64     `bigquery:"eligible"`
	Presented    int64     `bigquery:"presented"`
	OverdueCount int64     `bigquery:"overdue_count"`
	UrgentCount  int64     `bigquery:"urgent_count"`
	CurrentCount int64     `bigquery:"current_count"`
}

type bigQueryRecorder struct {
	client   *bigquery.Client
	inserter *bigquery.Inserter
	dataset  string
	table    string
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.CycleResultRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "cycle result recording disabled")
		return Discard, nil
	}

	if cfg.BigQuery.ProjectID == "" {
		slog.WarnContext(ctx, "BigQuery project ID not configured, cycle result recording disabled")
		return Discard, nil
	}

	client, err := bigquery.NewClient(ctx, cfg.BigQuery.ProjectID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create BigQuery client, cycle result recording disabled",
			slog.String("error", err.Error()),
			slog.String("project_id", cfg.BigQuery.ProjectID),
		)
		return Discard, nil
	}

	table := client.Dataset(cfg.BigQuery.Dataset).Table(cfg.BigQuery.Table)

	slog.InfoContext(ctx, "cycle result recorder initialized",
		slog.String("type", "bigquery"),
		slog.String("project_id", cfg.BigQuery.ProjectID),
		slog.String("dataset", cfg.BigQuery.Dataset),
		slog.String("table", cfg.BigQuery.Table),
	)

	return &bigQueryRecorder{
		client:   client,
		inserter: table.Inserter(),
		dataset:  cfg.BigQuery.Dataset,
		table:    cfg.BigQuery.Table,
	}, nil
}

func (r *bigQueryRecorder) RecordCycle(ctx context.Context, record domain.CycleRecord) error {
	row := &bigQueryRecord{
		RecordedAt:   time.Now(),
		StartedAt:    record.StartedAt,
		RunID:        record.RunID,
		Outcome:      record.Outcome,
		Forced:       record.Forced,
		Paused:       record.Paused,
		DurationMS:   record.Duration.Milliseconds(),
		Fetched:      int64(record.Fetched),
		Invalid:      int64(record.Invalid),
		Eligible:     int64(record.Eligible),
		Presented:    int64(record.Presented),
		OverdueCount: int64(record.CategoryCounts[domain.CategoryOverdue]),
		UrgentCount:  int64(record.CategoryCounts[domain.CategoryUrgent]),
		CurrentCount: int64(record.CategoryCounts[domain.CategoryCurrent]),
	}

	if err := r.inserter.Put(ctx, row); err != nil {
		slog.WarnContext(ctx, "failed to insert cycle result to BigQuery",
			slog.String("error", err.Error()),
			slog.String("run_id", record.RunID),
		)
	}

	return nil
}

func (r *bigQueryRecorder) Flush(ctx context.Context) error {
	return nil
}

func (r *bigQueryRecorder) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
