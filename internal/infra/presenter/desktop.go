package presenter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gen2brain/beeep"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

type notifyFunc func(title, message string, icon any) error

// Desktop shows intents as OS notifications. Intents with a sound use the
// alerting variant.
type Desktop struct {
	icon   string
	notify notifyFunc
	alert  notifyFunc
}

var _ domain.Presenter = (*Desktop)(nil)

func NewDesktop(appName, icon string) *Desktop {
	if appName != "" {
		beeep.AppName = appName
	}
	return &Desktop{
		icon:   icon,
		notify: beeep.Notify,
		alert:  beeep.Alert,
	}
}

func (d *Desktop) Present(ctx context.Context, intents []domain.NotificationIntent) error {
	var errs []error

	for _, intent := range intents {
		msg := Format(intent)

		show := d.notify
		if intent.Sound != domain.SoundNone {
			show = d.alert
		}

		if err := show(msg.Title, msg.Body, d.icon); err != nil {
			slog.WarnContext(ctx, "failed to show desktop notification",
				slog.String("task_id", intent.Task.ID),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Errorf("task %s: %w", intent.Task.ID, err))
			continue
		}

		slog.DebugContext(ctx, "desktop notification shown",
			slog.String("event", "notification_presented"),
			slog.String("task_id", intent.Task.ID),
			slog.String("category", intent.Category.String()),
			slog.Bool("pinned", intent.Pinned),
		)
	}

	return errors.Join(errs...)
}
