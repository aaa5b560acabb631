package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/lifesync/internal/bot/tasks"
	"github.com/edgard/lifesync/internal/config"
)

func TestSchedulerSkipsMisconfiguredTasks(t *testing.T) {
	noop := func(context.Context) error { return nil }
	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"enabled":     {Enabled: true, Schedule: "0 0 4 * * *"},
		"disabled":    {Enabled: false, Schedule: "0 0 4 * * *"},
		"unknown":     {Enabled: true, Schedule: "0 0 4 * * *"},
		"no_schedule": {Enabled: true},
		"bad_cron":    {Enabled: true, Schedule: "every tuesday"},
	}}
	s := newTestScheduler(t, cfg, map[string]tasks.ScheduledTaskFunc{
		"enabled":     noop,
		"disabled":    noop,
		"no_schedule": noop,
		"bad_cron":    noop,
	})

	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { require.NoError(t, s.Stop()) })

	assert.Equal(t, []string{"enabled"}, s.Jobs())
	assert.Error(t, s.Start(context.Background()), "second start must fail")
}

func TestSchedulerRunNow(t *testing.T) {
	ran := make(chan error, 1)
	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		config.TaskSQLMaintenance: {Enabled: true, Schedule: "0 0 4 * * *"},
	}}
	s := newTestScheduler(t, cfg, map[string]tasks.ScheduledTaskFunc{
		config.TaskSQLMaintenance: func(ctx context.Context) error {
			ran <- ctx.Err()
			return errors.New("logged, not fatal")
		},
	})

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.RunNow(config.TaskSQLMaintenance))

	select {
	case err := <-ran:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("task did not run")
	}

	assert.Error(t, s.RunNow("missing"))
	require.NoError(t, s.Stop())
	assert.NoError(t, s.Stop(), "stopping twice is a no-op")
}
