package presenter

import (
	"context"
	"log/slog"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

// Log writes intents to the structured log instead of the desktop. Used for
// headless runs and the one-shot check command.
type Log struct{}

var _ domain.Presenter = Log{}

func (Log) Present(ctx context.Context, intents []domain.NotificationIntent) error {
	for _, intent := range intents {
		msg := Format(intent)
		slog.InfoContext(ctx, msg.Title,
			slog.String("event", "notification_presented"),
			slog.String("task_id", intent.Task.ID),
			slog.String("category", intent.Category.String()),
			slog.String("sound", string(intent.Sound)),
			slog.Bool("pinned", intent.Pinned),
		)
	}
	return nil
}
