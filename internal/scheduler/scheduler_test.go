package scheduler

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/edgard/slackchat/internal/config"
	"github.com/edgard/slackchat/internal/tasks"
)

func noop(context.Context) error { return nil }

func TestStartSchedulesEnabledTasks(t *testing.T) {
	t.Parallel()

	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"enabled":      {Enabled: true, Schedule: "0 0 3 * * *"},
		"disabled":     {Enabled: false, Schedule: "0 0 3 * * *"},
		"unregistered": {Enabled: true, Schedule: "0 0 3 * * *"},
		"bad_schedule": {Enabled: true, Schedule: "not a cron"},
		"no_schedule":  {Enabled: true},
	}}
	taskMap := map[string]tasks.ScheduledTaskFunc{
		"enabled":      noop,
		"disabled":     noop,
		"bad_schedule": noop,
		"no_schedule":  noop,
	}

	s, err := New(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg, taskMap)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Stop() })

	if got := s.Jobs(); !slices.Equal(got, []string{"enabled"}) {
		t.Errorf("Jobs() = %v, want [enabled]", got)
	}
	if err := s.Start(); err == nil {
		t.Error("second Start() expected error")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	t.Parallel()

	s, err := New(nil, nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop() before Start() error = %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}
