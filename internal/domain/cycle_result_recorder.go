package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=cycle_result_recorder.go -destination=cycle_result_recorder_mock.go -package=domain

// CycleRecord summarizes one poll cycle for time-series storage.
type CycleRecord struct {
	RunID          string
	StartedAt      time.Time
	Duration       time.Duration
	Outcome        string
	Forced         bool
	Paused         bool
	Fetched        int
	Invalid        int
	Eligible       int
	Presented      int
	CategoryCounts map[Category]int
}

type CycleResultRecorder interface {
	RecordCycle(ctx context.Context, record CycleRecord) error
	Flush(ctx context.Context) error
	Close() error
}
