package domain

import "context"

//go:generate mockgen -source=checkpoint_repository.go -destination=checkpoint_repository_mock.go -package=domain

// TrackerCheckpoint is the persisted form of tracker and pause state.
type TrackerCheckpoint struct {
	States []TrackedTaskState `json:"states"`
	Pause  PauseState         `json:"pause"`
}

type CheckpointRepository interface {
	SaveCheckpoint(ctx context.Context, checkpoint *TrackerCheckpoint) error
	LoadCheckpoint(ctx context.Context) (*TrackerCheckpoint, error)
	DeleteCheckpoint(ctx context.Context) error
}
