// Package main contains the entrypoint for the slackchat service and its
// administrative commands.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/edgard/slackchat/internal/config"
	"github.com/edgard/slackchat/internal/database"
	"github.com/edgard/slackchat/internal/logger"
	"github.com/edgard/slackchat/internal/slackapi"
)

var (
	version    = "dev"
	configPath string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "slackchat",
		Short:   "Record Slack channel messages and key/value thread replies",
		Long:    "slackchat receives Slack Events API callbacks and reconciles message events into a relational store.",
		Version: version,

		SilenceUsage: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "./config.yaml", "path to configuration file")

	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(channelsCmd())
	root.AddCommand(messagesCmd())
	return root
}

// loadRuntime loads the configuration and installs the global logger.
func loadRuntime() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", configPath, "error", err)
		return nil, nil, err
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Debug("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)
	return cfg, log, nil
}

// openStore connects to the configured database and applies pending migrations.
func openStore(cfg *config.Config, log *slog.Logger) (*sqlx.DB, database.Store, error) {
	db, err := database.NewDB(database.Options{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Error("Failed to connect to database", "driver", cfg.Database.Driver, "error", err)
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, database.NewStore(db, log), nil
}

// newSlackClient returns a Web API client, or nil without a bot token.
func newSlackClient(cfg *config.Config, log *slog.Logger) *slackapi.Client {
	if cfg.Slack.BotToken == "" {
		return nil
	}
	return slackapi.New(cfg.Slack.BotToken, slackapi.DefaultConfig(), log)
}
