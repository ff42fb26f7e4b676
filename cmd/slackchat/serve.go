package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/edgard/slackchat/internal/app"
	"github.com/edgard/slackchat/internal/database"
	"github.com/edgard/slackchat/internal/markup"
	"github.com/edgard/slackchat/internal/metrics"
	"github.com/edgard/slackchat/internal/reconcile"
	"github.com/edgard/slackchat/internal/scheduler"
	"github.com/edgard/slackchat/internal/server"
	"github.com/edgard/slackchat/internal/tasks"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the Slack events endpoint and run scheduled tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}

	db, store, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)

	m := metrics.New()
	reconciler := reconcile.New(store, markup.NewSlackMarker(), cfg.Events.IgnoredSubtypes, m, log)

	srv, err := server.New(cfg.HTTP, cfg.Slack, store, reconciler, m, log)
	if err != nil {
		log.Error("Failed to create HTTP server", "error", err)
		return err
	}

	deps := tasks.TaskDeps{Logger: log, Store: store, Config: cfg}
	if client := newSlackClient(cfg, log); client != nil {
		deps.Slack = client
	} else {
		log.Info("No Slack bot token configured, user profiles will not be synced")
	}

	sched, err := scheduler.New(log, &cfg.Scheduler, tasks.RegisterAllTasks(deps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return err
	}

	return app.New(log, srv, sched).Run(ctx)
}
