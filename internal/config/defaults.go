package config

import "time"

// Default values for configuration
const (
	// Logger defaults
	DefaultLogLevel = "info"
	DefaultLogJSON  = false

	// Database defaults
	DefaultDBDriver          = "sqlite"
	DefaultDBDSN             = "file:slackchat.db"
	DefaultDBMaxOpenConns    = 10
	DefaultDBMaxIdleConns    = 5
	DefaultDBConnMaxLifetime = 5 * time.Minute

	// HTTP defaults
	DefaultHTTPAddr            = ":8080"
	DefaultHTTPReadTimeout     = 10 * time.Second
	DefaultHTTPWriteTimeout    = 10 * time.Second
	DefaultHTTPShutdownTimeout = 15 * time.Second
	DefaultHTTPRateLimitRPS    = 50.0
	DefaultHTTPRateLimitBurst  = 100
	DefaultHTTPMaxBodyBytes    = 1 << 20 // Slack event payloads are far below 1 MiB

	// Events defaults
	DefaultEventsReceiptRetention = 72 * time.Hour
)

// DefaultIgnoredSubtypes are message subtypes that never produce records.
var DefaultIgnoredSubtypes = []string{
	"channel_join",
	"channel_leave",
	"group_join",
	"group_leave",
	"file_share",
	"channel_archive",
	"group_archive",
	"channel_unarchive",
	"group_unarchive",
}

// DefaultTasks are the scheduled tasks registered out of the box.
var DefaultTasks = map[string]TaskConfig{
	"sql_maintenance":   {Enabled: true, Schedule: "0 0 3 * * *"},
	"receipt_pruning":   {Enabled: true, Schedule: "0 30 * * * *"},
	"user_profile_sync": {Enabled: true, Schedule: "0 */10 * * * *"},
}
