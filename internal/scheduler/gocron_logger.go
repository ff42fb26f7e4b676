package scheduler

import "log/slog"

// gocronLogger implements gocron.Logger on top of slog.
type gocronLogger struct {
	logger *slog.Logger
}

func (l gocronLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l gocronLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }
func (l gocronLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l gocronLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
