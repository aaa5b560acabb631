// Package tasks implements the scheduled LifeSync jobs and their registry.
package tasks

import (
	"context"
	"log/slog"

	"github.com/edgard/lifesync/internal/database"
	"github.com/edgard/lifesync/internal/insights"
)

// Notifier delivers a plain-text message to a Telegram chat.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// TaskDeps contains the dependencies shared by scheduled tasks. Notifier is
// nil when Telegram is not configured.
type TaskDeps struct {
	Logger   *slog.Logger
	Store    database.Store
	Insights *insights.Service
	Notifier Notifier
}
