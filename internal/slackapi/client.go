// Package slackapi wraps the Slack Web API calls made outside of event
// handling with a circuit breaker and retries with exponential backoff.
package slackapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/slack-go/slack"
	"github.com/sony/gobreaker"
)

var (
	// ErrCircuitOpen indicates the Slack API breaker is open.
	ErrCircuitOpen = gobreaker.ErrOpenState
	// ErrExhaustedRetries indicates retry attempts were exhausted.
	ErrExhaustedRetries = errors.New("retry attempts exhausted")
)

// API is the subset of *slack.Client used by the service.
type API interface {
	GetUserInfoContext(ctx context.Context, user string) (*slack.User, error)
	GetConversationInfoContext(ctx context.Context, input *slack.GetConversationInfoInput) (*slack.Channel, error)
}

// Config tunes the breaker and the retry loop.
type Config struct {
	MaxFailures     int
	ResetInterval   time.Duration
	Timeout         time.Duration
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultConfig returns the settings used by the service.
func DefaultConfig() Config {
	return Config{
		MaxFailures:     5,
		ResetInterval:   60 * time.Second,
		Timeout:         10 * time.Second,
		MaxAttempts:     3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// Client guards an API with a circuit breaker.
type Client struct {
	api    API
	cfg    Config
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

// New creates a Client for the bot token.
func New(token string, cfg Config, logger *slog.Logger) *Client {
	return Wrap(slack.New(token), cfg, logger)
}

// Wrap guards api with a breaker configured by cfg.
func Wrap(api API, cfg Config, logger *slog.Logger) *Client {
	defaults := DefaultConfig()
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = defaults.MaxFailures
	}
	if cfg.ResetInterval <= 0 {
		cfg.ResetInterval = defaults.ResetInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = defaults.InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = defaults.MaxInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "slack_api")

	settings := gobreaker.Settings{
		Name:        "slack_api",
		MaxRequests: 1,
		Interval:    cfg.ResetInterval,
		Timeout:     cfg.ResetInterval,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.MaxFailures)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || permanent(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return &Client{
		api:    api,
		cfg:    cfg,
		cb:     gobreaker.NewCircuitBreaker(settings),
		logger: log,
	}
}

// GetUserInfoContext fetches a user profile.
func (c *Client) GetUserInfoContext(ctx context.Context, user string) (*slack.User, error) {
	var info *slack.User
	err := c.do(ctx, "users.info", func(ctx context.Context) error {
		var err error
		info, err = c.api.GetUserInfoContext(ctx, user)
		return err
	})
	return info, err
}

// GetConversationInfoContext fetches channel metadata.
func (c *Client) GetConversationInfoContext(ctx context.Context, input *slack.GetConversationInfoInput) (*slack.Channel, error) {
	var channel *slack.Channel
	err := c.do(ctx, "conversations.info", func(ctx context.Context) error {
		var err error
		channel, err = c.api.GetConversationInfoContext(ctx, input)
		return err
	})
	return channel, err
}

func (c *Client) do(ctx context.Context, method string, call func(context.Context) error) error {
	interval := c.cfg.InitialInterval

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		_, err := c.cb.Execute(func() (any, error) {
			callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
			defer cancel()
			return nil, call(callCtx)
		})
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return fmt.Errorf("%s abandoned: %w", method, ctx.Err())
		}
		if permanent(err) || errors.Is(err, ErrCircuitOpen) {
			return err
		}

		if attempt < c.cfg.MaxAttempts {
			jitter := 1.0 + 0.1*(2*rand.Float64()-1)
			interval = time.Duration(float64(interval) * 2 * jitter)
			if interval > c.cfg.MaxInterval {
				interval = c.cfg.MaxInterval
			}

			c.logger.DebugContext(ctx, "Slack API call failed, retrying",
				"method", method, "attempt", attempt, "next_interval", interval, "error", err)

			timer := time.NewTimer(interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("%s abandoned: %w", method, ctx.Err())
			case <-timer.C:
			}
		}
	}

	return fmt.Errorf("%s: %w after %d attempts: %w", method, ErrExhaustedRetries, c.cfg.MaxAttempts, lastErr)
}

// permanent reports errors that retrying cannot fix: Slack API error
// responses such as user_not_found, and rate limiting, which callers
// handle by backing off.
func permanent(err error) bool {
	var rateLimited *slack.RateLimitedError
	if errors.As(err, &rateLimited) {
		return true
	}
	var slackErr slack.SlackErrorResponse
	return errors.As(err, &slackErr)
}
