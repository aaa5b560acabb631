package tasks

import (
	"context"

	"github.com/edgard/lifesync/internal/config"
)

// ScheduledTaskFunc is the signature of every scheduled task. Tasks must
// respect ctx cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks returns the tasks keyed by the name used in the scheduler
// configuration. The weekly digest is only registered when a notifier exists.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := map[string]ScheduledTaskFunc{
		config.TaskSQLMaintenance: newSQLMaintenanceTask(deps),
	}
	if deps.Notifier != nil && deps.Insights != nil {
		tasks[config.TaskWeeklyDigest] = newWeeklyDigestTask(deps)
	} else {
		deps.Logger.Info("Weekly digest disabled, Telegram is not configured")
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
