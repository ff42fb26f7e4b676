package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const sqlMaintenanceTimeout = 10 * time.Minute

// newSQLMaintenanceTask reclaims space left by deleted messages and receipts.
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", SQLMaintenance)

	return func(ctx context.Context) error {
		timeoutCtx, cancel := context.WithTimeout(ctx, sqlMaintenanceTimeout)
		defer cancel()

		startTime := time.Now()
		err := deps.Store.RunSQLMaintenance(timeoutCtx)
		duration := time.Since(startTime)

		switch {
		case errors.Is(err, context.DeadlineExceeded):
			log.WarnContext(ctx, "SQL maintenance did not finish in time", "timeout", sqlMaintenanceTimeout)
			return fmt.Errorf("sql maintenance timed out after %s: %w", sqlMaintenanceTimeout, err)
		case err != nil:
			log.ErrorContext(ctx, "SQL maintenance failed", "error", err, "duration", duration)
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "SQL maintenance completed", "duration", duration)
		return nil
	}
}
