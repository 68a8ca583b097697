package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
	"github.com/KasumiMercury/primind-task-reminder/internal/observability/tracing"
)

const (
	trackerKeyPrefix = "reminder:tracker:"
	pauseKeyPrefix   = "reminder:pause:"

	DefaultCheckpointTTL = 7 * 24 * time.Hour
)

type checkpointRepository struct {
	client *redis.Client
	userID string
	ttl    time.Duration
}

// NewCheckpointRepository stores tracker state as one hash field per task
// and pause state as a single JSON value, both scoped to userID.
func NewCheckpointRepository(client *redis.Client, userID string, ttl time.Duration) domain.CheckpointRepository {
	if ttl <= 0 {
		ttl = DefaultCheckpointTTL
	}
	return &checkpointRepository{
		client: client,
		userID: userID,
		ttl:    ttl,
	}
}

func (r *checkpointRepository) trackerKey() string {
	return trackerKeyPrefix + r.userID
}

func (r *checkpointRepository) pauseKey() string {
	return pauseKeyPrefix + r.userID
}

func (r *checkpointRepository) SaveCheckpoint(ctx context.Context, checkpoint *domain.TrackerCheckpoint) error {
	if checkpoint == nil {
		return ErrInvalidCheckpointData
	}

	ctx, span := tracing.StartRedisOperationSpan(ctx, "save_checkpoint", r.trackerKey())
	defer span.End()

	fields := make(map[string]any, len(checkpoint.States))
	for _, state := range checkpoint.States {
		if state.TaskID == "" {
			continue
		}
		data, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidCheckpointData, err)
		}
		fields[state.TaskID] = data
	}

	pauseData, err := json.Marshal(checkpoint.Pause)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCheckpointData, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.trackerKey())
	if len(fields) > 0 {
		pipe.HSet(ctx, r.trackerKey(), fields)
		pipe.Expire(ctx, r.trackerKey(), r.ttl)
	}
	pipe.Set(ctx, r.pauseKey(), pauseData, r.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		tracing.RecordError(span, err)
		return fmt.Errorf("%w: %w", ErrRedisConnection, err)
	}

	return nil
}

func (r *checkpointRepository) LoadCheckpoint(ctx context.Context) (*domain.TrackerCheckpoint, error) {
	ctx, span := tracing.StartRedisOperationSpan(ctx, "load_checkpoint", r.trackerKey())
	defer span.End()

	pipe := r.client.Pipeline()
	statesCmd := pipe.HGetAll(ctx, r.trackerKey())
	pauseCmd := pipe.Get(ctx, r.pauseKey())
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("%w: %w", ErrRedisConnection, err)
	}

	raw := statesCmd.Val()
	pauseData, pauseErr := pauseCmd.Bytes()
	if len(raw) == 0 && errors.Is(pauseErr, redis.Nil) {
		return nil, domain.ErrCheckpointNotFound
	}

	checkpoint := &domain.TrackerCheckpoint{
		States: make([]domain.TrackedTaskState, 0, len(raw)),
	}

	for taskID, data := range raw {
		var state domain.TrackedTaskState
		if err := json.Unmarshal([]byte(data), &state); err != nil {
			slog.WarnContext(ctx, "dropping unreadable tracker state",
				slog.String("event", "state_corruption"),
				slog.String("task_id", taskID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if state.TaskID == "" {
			state.TaskID = taskID
		}
		checkpoint.States = append(checkpoint.States, state)
	}

	if pauseErr == nil {
		if err := json.Unmarshal(pauseData, &checkpoint.Pause); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCheckpointData, err)
		}
	}

	return checkpoint, nil
}

func (r *checkpointRepository) DeleteCheckpoint(ctx context.Context) error {
	if err := r.client.Del(ctx, r.trackerKey(), r.pauseKey()).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrRedisConnection, err)
	}
	return nil
}
