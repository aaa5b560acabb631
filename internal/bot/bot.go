// Package bot runs the LifeSync service: the HTTP API, the task scheduler and
// the optional Telegram listener share one lifecycle.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Runner serves until ctx is done.
type Runner interface {
	Run(ctx context.Context) error
}

// Listener polls for updates until ctx is done. *bot.Bot from
// go-telegram/bot satisfies it.
type Listener interface {
	Start(ctx context.Context)
}

// Bot owns the lifecycle of the service components.
type Bot struct {
	logger    *slog.Logger
	server    Runner
	scheduler *Scheduler
	telegram  Listener
}

// NewBot wires the components. telegram may be nil.
func NewBot(logger *slog.Logger, server Runner, scheduler *Scheduler, telegram Listener) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		logger:    logger.With("component", "orchestrator"),
		server:    server,
		scheduler: scheduler,
		telegram:  telegram,
	}
}

// Run starts every component and blocks until ctx is canceled or one of them
// fails, in which case the others are stopped and the error is returned.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting LifeSync")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := b.server.Run(gCtx); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := b.scheduler.Start(gCtx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		<-gCtx.Done()
		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	if b.telegram != nil {
		g.Go(func() error {
			b.logger.Info("Starting Telegram listener")
			b.telegram.Start(gCtx)
			b.logger.Info("Telegram listener stopped")
			if gCtx.Err() == nil {
				return errors.New("telegram listener stopped unexpectedly")
			}
			return nil
		})
	} else {
		b.logger.Info("Telegram is not configured, listener disabled")
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("LifeSync stopped due to error", "error", err)
		return err
	}
	b.logger.Info("LifeSync stopped gracefully")
	return nil
}
