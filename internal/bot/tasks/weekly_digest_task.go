package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/edgard/lifesync/internal/config"
	"github.com/edgard/lifesync/internal/health"
)

// newWeeklyDigestTask sends every linked user their weekly summary. A failure
// for one user does not stop the others; all failures are returned joined.
func newWeeklyDigestTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", config.TaskWeeklyDigest)

	return func(ctx context.Context) error {
		users, err := deps.Store.UsersWithTelegram(ctx)
		if err != nil {
			return fmt.Errorf("failed to list telegram users: %w", err)
		}

		var errs []error
		sent := 0
		for _, u := range users {
			if err := ctx.Err(); err != nil {
				errs = append(errs, err)
				break
			}
			if u.TelegramChatID == nil {
				continue
			}

			weekly, err := deps.Insights.Weekly(ctx, u.ID)
			if err != nil {
				log.WarnContext(ctx, "Failed to build weekly summary", "user_id", u.ID, "error", err)
				errs = append(errs, err)
				continue
			}
			text := health.FormatDigest(u.Name, weekly.Summary, weekly.Suggestions)
			if err := deps.Notifier.Notify(ctx, *u.TelegramChatID, text); err != nil {
				log.WarnContext(ctx, "Failed to send weekly digest", "user_id", u.ID, "error", err)
				errs = append(errs, fmt.Errorf("notify user %d: %w", u.ID, err))
				continue
			}
			sent++
		}

		log.InfoContext(ctx, "Weekly digest finished", "users", len(users), "sent", sent, "failed", len(errs))
		return errors.Join(errs...)
	}
}
