//go:build !gcloud

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
	"github.com/KasumiMercury/primind-task-reminder/internal/infra/presenter"
	"github.com/KasumiMercury/primind-task-reminder/internal/observability"
	"github.com/KasumiMercury/primind-task-reminder/internal/observability/logging"
)

const appName = "Planfix Reminder"

func newPresenter(headless bool) domain.Presenter {
	if headless {
		return presenter.Log{}
	}
	return presenter.NewDesktop(appName, "")
}

func initObservability(ctx context.Context, level slog.Level) (*observability.Resources, error) {
	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "task-reminder"
	}

	env := logging.EnvDev
	if e := os.Getenv("ENV"); e != "" {
		env = logging.Environment(e)
	}

	obs, err := observability.Init(ctx, observability.Config{
		ServiceInfo: logging.ServiceInfo{
			Name:     serviceName,
			Version:  Version,
			Revision: "",
		},
		Environment:   env,
		GCPProjectID:  "",
		SamplingRate:  1.0,
		DefaultModule: logging.Module("task-reminder"),
		LogLevel:      level,
	})
	if err != nil {
		return nil, err
	}

	return obs, nil
}
