package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/edgard/slackchat/internal/config"
)

// newReceiptPruningTask deletes event receipts older than the configured
// retention. Slack stops redelivering an event long before that.
func newReceiptPruningTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", ReceiptPruning)

	retention := config.DefaultEventsReceiptRetention
	if deps.Config != nil && deps.Config.Events.ReceiptRetention != 0 {
		retention = deps.Config.Events.ReceiptRetention
	}

	return func(ctx context.Context) error {
		cutoff := time.Now().Add(-retention)

		deleted, err := deps.Store.PruneEventReceipts(ctx, cutoff)
		if err != nil {
			log.ErrorContext(ctx, "Receipt pruning failed", "error", err)
			return fmt.Errorf("receipt pruning failed: %w", err)
		}

		log.InfoContext(ctx, "Pruned event receipts", "deleted", deleted, "cutoff", cutoff.UTC().Format(time.RFC3339))
		return nil
	}
}
