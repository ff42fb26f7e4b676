// Package config provides configuration loading, validation, and management
// for the slackchat service. It handles reading from YAML files, environment
// variables and default values, and validates the result.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config defines the application configuration parameters for all components.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Database  DatabaseConfig  `mapstructure:"database"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Slack     SlackConfig     `mapstructure:"slack"`
	Events    EventsConfig    `mapstructure:"events"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoggerConfig controls the global slog handler.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// DatabaseConfig selects the SQL driver and pool limits.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"            validate:"required,oneof=sqlite postgres"`
	DSN             string        `mapstructure:"dsn"               validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"min=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"min=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"min=0"`
}

// HTTPConfig configures the events endpoint server.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"             validate:"required,hostname_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     validate:"min=1s"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    validate:"min=1s"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=1s"`
	RateLimitRPS    float64       `mapstructure:"rate_limit_rps"   validate:"min=0"`
	RateLimitBurst  int           `mapstructure:"rate_limit_burst" validate:"min=0"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"   validate:"min=1024"`
}

// SlackConfig holds the credentials used to authenticate Slack requests and
// to call the Web API. The events endpoint needs at least one of
// VerificationToken and SigningSecret.
type SlackConfig struct {
	VerificationToken string `mapstructure:"verification_token"`
	SigningSecret     string `mapstructure:"signing_secret"`
	BotToken          string `mapstructure:"bot_token"`
}

// EventsConfig tunes event reconciliation.
type EventsConfig struct {
	IgnoredSubtypes  []string      `mapstructure:"ignored_subtypes"`
	ReceiptRetention time.Duration `mapstructure:"receipt_retention" validate:"min=1m"`
}

// SchedulerConfig lists scheduled tasks by registry name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig enables a task on a cron schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// HasRequestAuth reports whether incoming Slack requests can be authenticated.
func (c SlackConfig) HasRequestAuth() bool {
	return c.VerificationToken != "" || c.SigningSecret != ""
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
