package bot

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/edgard/lifesync/internal/bot/tasks"
	"github.com/edgard/lifesync/internal/config"
	"github.com/edgard/lifesync/internal/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type blockingRunner struct{ started chan struct{} }

func (r *blockingRunner) Run(ctx context.Context) error {
	close(r.started)
	<-ctx.Done()
	return nil
}

type failingRunner struct{}

func (failingRunner) Run(context.Context) error { return errors.New("address already in use") }

type fakeListener struct{ stopped atomic.Bool }

func (l *fakeListener) Start(ctx context.Context) {
	<-ctx.Done()
	l.stopped.Store(true)
}

type earlyListener struct{}

func (earlyListener) Start(context.Context) {}

func newTestScheduler(t *testing.T, cfg *config.SchedulerConfig, taskMap map[string]tasks.ScheduledTaskFunc) *Scheduler {
	t.Helper()
	s, err := NewScheduler(logger.Discard(), cfg, taskMap)
	require.NoError(t, err)
	return s
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &blockingRunner{started: make(chan struct{})}
	listener := &fakeListener{}
	b := NewBot(logger.Discard(), runner, newTestScheduler(t, nil, nil), listener)

	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	select {
	case <-runner.started:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, listener.stopped.Load())
}

func TestRunWithoutTelegram(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &blockingRunner{started: make(chan struct{})}
	b := NewBot(logger.Discard(), runner, newTestScheduler(t, nil, nil), nil)

	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()
	<-runner.started
	cancel()
	require.NoError(t, <-done)
}

func TestRunReturnsComponentError(t *testing.T) {
	listener := &fakeListener{}
	b := NewBot(logger.Discard(), failingRunner{}, newTestScheduler(t, nil, nil), listener)

	err := b.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address already in use")
	assert.True(t, listener.stopped.Load())
}

func TestRunListenerStoppedEarly(t *testing.T) {
	runner := &blockingRunner{started: make(chan struct{})}
	b := NewBot(logger.Discard(), runner, newTestScheduler(t, nil, nil), earlyListener{})

	err := b.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped unexpectedly")
}
