package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	errs "github.com/edgard/slackchat/internal/errors"
)

// EnvPrefix prefixes environment overrides, e.g. SLACKCHAT_SLACK_SIGNING_SECRET.
const EnvPrefix = "SLACKCHAT"

// LoadConfig loads and validates configuration from:
// 1. Default values
// 2. the YAML file at path (optional; an empty path or missing file uses defaults)
// 3. SLACKCHAT_* environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, errs.NewConfigError(fmt.Sprintf("failed to read config file %s", path), err)
			}
			// Config file not found is okay, we'll use defaults
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errs.NewConfigError("failed to parse config", err)
	}

	// Environment variables only reach keys viper already knows about; the
	// task map is keyed by name so it is filled from defaults when absent.
	if len(cfg.Scheduler.Tasks) == 0 {
		cfg.Scheduler.Tasks = make(map[string]TaskConfig, len(DefaultTasks))
		for name, task := range DefaultTasks {
			cfg.Scheduler.Tasks[name] = task
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errs.NewConfigError("configuration validation failed", err)
	}

	return cfg, nil
}

// setDefaults sets default values for optional configuration parameters
func setDefaults(v *viper.Viper) {
	// Logger defaults
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", DefaultLogJSON)

	// Database defaults
	v.SetDefault("database.driver", DefaultDBDriver)
	v.SetDefault("database.dsn", DefaultDBDSN)
	v.SetDefault("database.max_open_conns", DefaultDBMaxOpenConns)
	v.SetDefault("database.max_idle_conns", DefaultDBMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", DefaultDBConnMaxLifetime)

	// HTTP defaults
	v.SetDefault("http.addr", DefaultHTTPAddr)
	v.SetDefault("http.read_timeout", DefaultHTTPReadTimeout)
	v.SetDefault("http.write_timeout", DefaultHTTPWriteTimeout)
	v.SetDefault("http.shutdown_timeout", DefaultHTTPShutdownTimeout)
	v.SetDefault("http.rate_limit_rps", DefaultHTTPRateLimitRPS)
	v.SetDefault("http.rate_limit_burst", DefaultHTTPRateLimitBurst)
	v.SetDefault("http.max_body_bytes", DefaultHTTPMaxBodyBytes)

	// Slack credentials have no defaults but must be bound for env overrides
	v.SetDefault("slack.verification_token", "")
	v.SetDefault("slack.signing_secret", "")
	v.SetDefault("slack.bot_token", "")

	// Events defaults
	v.SetDefault("events.ignored_subtypes", DefaultIgnoredSubtypes)
	v.SetDefault("events.receipt_retention", DefaultEventsReceiptRetention)
}
