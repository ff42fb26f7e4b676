// Package app runs the long-lived components of the slackchat service
// together and shuts them down as a unit.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/edgard/slackchat/internal/scheduler"
	"github.com/edgard/slackchat/internal/server"
)

// App groups the HTTP server and the task scheduler.
type App struct {
	logger    *slog.Logger
	server    *server.Server
	scheduler *scheduler.Scheduler
}

// New creates an App. sched may be nil when no tasks are scheduled.
func New(logger *slog.Logger, srv *server.Server, sched *scheduler.Scheduler) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		logger:    logger.With("component", "app"),
		server:    srv,
		scheduler: sched,
	}
}

// Run starts all components and blocks until ctx is cancelled or one of them
// fails. The remaining components are then stopped.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("Starting slackchat...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.server.Run(gCtx); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		if gCtx.Err() == nil {
			return fmt.Errorf("http server stopped unexpectedly")
		}
		return nil
	})

	if a.scheduler != nil {
		g.Go(func() error {
			a.logger.Info("Starting scheduler...")
			if err := a.scheduler.Start(); err != nil {
				a.logger.Error("Failed to start scheduler", "error", err)
				return fmt.Errorf("failed to start scheduler: %w", err)
			}

			<-gCtx.Done()
			a.logger.Info("Shutdown signal received, stopping scheduler...")

			if err := a.scheduler.Stop(); err != nil {
				a.logger.Error("Error stopping scheduler", "error", err)
			}
			return nil
		})
	}

	a.logger.Info("slackchat running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error("slackchat stopped due to error", "error", err)
		return err
	}

	a.logger.Info("slackchat stopped gracefully.")
	return nil
}
