package domain

import "context"

//go:generate mockgen -source=task_source.go -destination=task_source_mock.go -package=domain

// TaskSource returns the pending tasks visible to the configured user.
// Transport failures are reported wrapped in ErrSourceUnavailable.
type TaskSource interface {
	FetchTasks(ctx context.Context) ([]Task, error)
	Ping(ctx context.Context) error
}
