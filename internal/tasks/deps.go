// Package tasks implements the scheduled maintenance tasks of the slackchat
// service and the registry the scheduler reads them from.
package tasks

import (
	"context"
	"log/slog"

	"github.com/slack-go/slack"

	"github.com/edgard/slackchat/internal/config"
	"github.com/edgard/slackchat/internal/database"
)

// SlackClient is the subset of the Slack Web API used by tasks.
// *slack.Client satisfies it.
type SlackClient interface {
	GetUserInfoContext(ctx context.Context, user string) (*slack.User, error)
}

// TaskDeps contains all dependencies required by scheduled tasks.
// Slack is nil when no bot token is configured.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Slack  SlackClient
	Config *config.Config
}
