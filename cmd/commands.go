package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KasumiMercury/primind-task-reminder/internal/config"
	"github.com/KasumiMercury/primind-task-reminder/internal/infra/planfix/planfixstub"
	"github.com/KasumiMercury/primind-task-reminder/internal/infra/presenter"
)

func runCmd(configPath *string) *cobra.Command {
	var headless bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll Planfix and show reminders until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), *configPath, headless)
		},
	}
	cmd.Flags().BoolVar(&headless, "headless", false, "log reminders instead of showing desktop notifications")

	return cmd
}

func checkCmd(configPath *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one forced cycle and print the reminders it selects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			_, cfg, shutdown, err := setup(ctx, *configPath)
			if err != nil {
				return err
			}
			defer shutdown()

			if err := config.ValidateForRun(cfg); err != nil {
				return fmt.Errorf("configuration validation error: %w", err)
			}

			a, err := buildApp(ctx, cfg, presenter.Log{})
			if err != nil {
				return err
			}
			defer a.Close()

			record, err := a.runner.TryRun(ctx, true)
			if err != nil {
				return err
			}

			intents := a.service.Latest()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(intents)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "fetched %d, eligible %d, presented %d\n", record.Fetched, record.Eligible, record.Presented)
			for _, intent := range intents {
				msg := presenter.Format(intent)
				fmt.Fprintf(out, "#%s %s\n", intent.Task.ID, msg.Title)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print reminders as JSON")

	return cmd
}

func testConnectionCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "test-connection",
		Short: "Verify the Planfix account URL and API token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			_, cfg, shutdown, err := setup(ctx, *configPath)
			if err != nil {
				return err
			}
			defer shutdown()

			if err := config.ValidateForRun(cfg); err != nil {
				return fmt.Errorf("configuration validation error: %w", err)
			}

			client, err := newPlanfixClient(cfg)
			if err != nil {
				return err
			}

			if err := client.Ping(ctx); err != nil {
				return fmt.Errorf("connection failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "connected to %s\n", cfg.Planfix.AccountURL)
			return nil
		},
	}
}

func initConfigCmd() *cobra.Command {
	var (
		path  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a sample config.toml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.WriteSample(path, force); err != nil {
				return err
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				abs = path
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sample config written to %s\n", abs)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "output", "o", "config.toml", "destination file")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	return cmd
}

func stubServerCmd() *cobra.Command {
	var (
		addr  string
		token string
		seed  string
	)

	cmd := &cobra.Command{
		Use:    "stub-server",
		Short:  "Serve a fake Planfix task API for local development",
		Hidden: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			storage := planfixstub.NewTaskStorage()

			if seed != "" {
				data, err := os.ReadFile(seed)
				if err != nil {
					return fmt.Errorf("read seed file: %w", err)
				}
				var req planfixstub.SeedRequest
				if err := json.Unmarshal(data, &req); err != nil {
					return fmt.Errorf("parse seed file: %w", err)
				}
				for _, st := range req.Tasks {
					storage.Add(planfixstub.ToResponse(st))
				}
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           planfixstub.NewRouter(storage, token),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			slog.Info("stub planfix server listening",
				slog.String("addr", addr),
				slog.String("account_url", "http://"+addr+"/rest"),
			)

			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8766", "listen address")
	cmd.Flags().StringVar(&token, "token", "stub-token", "expected bearer token, empty accepts any")
	cmd.Flags().StringVar(&seed, "seed", "", "JSON file with tasks to preload")

	return cmd
}
