package tasks

import (
	"context"
)

// ScheduledTaskFunc defines the standard signature for all scheduled tasks.
// The context provided by the scheduler should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// Registry keys, matching the scheduler.tasks section of the configuration.
const (
	SQLMaintenance  = "sql_maintenance"
	ReceiptPruning  = "receipt_pruning"
	UserProfileSync = "user_profile_sync"
)

// RegisterAllTasks initializes and returns a map of all registered scheduled tasks.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := map[string]ScheduledTaskFunc{
		SQLMaintenance:  newSQLMaintenanceTask(deps),
		ReceiptPruning:  newReceiptPruningTask(deps),
		UserProfileSync: newUserProfileSyncTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
