package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-task-reminder/internal/config"
	"github.com/KasumiMercury/primind-task-reminder/internal/handler"
	"github.com/KasumiMercury/primind-task-reminder/internal/health"
	"github.com/KasumiMercury/primind-task-reminder/internal/observability/logging"
	"github.com/KasumiMercury/primind-task-reminder/internal/observability/metrics"
	"github.com/KasumiMercury/primind-task-reminder/internal/observability/middleware"
)

// serve runs the poll loop and the local control API until a signal arrives.
func serve(parent context.Context, configPath string, headless bool) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader, cfg, shutdown, err := setup(ctx, configPath)
	if err != nil {
		return err
	}
	defer shutdown()

	if err := config.ValidateForRun(cfg); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return err
	}

	httpMetrics, err := metrics.NewHTTPMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP metrics: %w", err)
	}

	a, err := buildApp(ctx, cfg, newPresenter(headless))
	if err != nil {
		return err
	}
	defer a.Close()

	loader.Watch(func(updated *config.Config, err error) {
		if err != nil {
			slog.Warn("ignoring invalid config change",
				slog.String("event", "config.reload.fail"),
				slog.String("error", err.Error()),
			)
			return
		}
		if err := a.service.ApplySettings(settingsFromConfig(updated)); err != nil {
			slog.Warn("failed to apply reloaded settings", slog.String("error", err.Error()))
			return
		}
		a.runner.SetInterval(updated.Settings.CheckInterval)
		if err := a.pause.SetResumeHour(updated.Pause.ResumeHour); err != nil {
			slog.Warn("ignoring invalid resume hour", slog.String("error", err.Error()))
		}
		slog.Info("settings reloaded",
			slog.String("event", "config.reloaded"),
			slog.Duration("check_interval", updated.Settings.CheckInterval),
			slog.Int("max_windows_per_category", updated.Settings.MaxWindowsPerCategory),
			slog.Int("max_total_windows", updated.Settings.MaxTotalWindows),
		)
	})

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:   []string{"/health", "/health/live", "/health/ready"},
		Module:      logging.Module("task-reminder"),
		TracerName:  "github.com/KasumiMercury/primind-task-reminder/internal/observability/middleware",
		HTTPMetrics: httpMetrics,
	}))
	r.Use(middleware.PanicRecoveryGin())

	healthChecker := health.NewChecker(a.redisClient, a.source, Version)
	r.GET("/health/live", healthChecker.LiveHandler())
	r.GET("/health/ready", healthChecker.ReadyHandler())
	r.GET("/health", healthChecker.ReadyHandler())

	handler.NewReminderHandler(a.service, a.runner).Register(r.Group("/api/v1"))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting control api",
			slog.String("addr", cfg.Server.Addr),
		)
		serverErr <- srv.ListenAndServe()
	}()

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- a.runner.Run(ctx)
	}()

	slog.Info("task reminder started",
		slog.Duration("check_interval", cfg.Settings.CheckInterval),
		slog.Int("max_windows_per_category", cfg.Settings.MaxWindowsPerCategory),
		slog.Int("max_total_windows", cfg.Settings.MaxTotalWindows),
		slog.Bool("headless", headless),
	)

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("control api exited with error", slog.String("error", err.Error()))
			stop()
			<-loopDone
			return err
		}
	}

	stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown control api", slog.String("error", err.Error()))
	}

	if err := <-loopDone; err != nil {
		return err
	}

	slog.Info("task reminder exited properly")
	return nil
}
