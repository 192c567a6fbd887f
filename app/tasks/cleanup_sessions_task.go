package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type CleanupSessionsTask struct {
	Task
	cleaner SessionCleaner
}

func NewCleanupSessionsTask(cleaner SessionCleaner) *CleanupSessionsTask {
	return &CleanupSessionsTask{
		Task:    NewTask(TaskTypeCleanupSessions),
		cleaner: cleaner,
	}
}

func (t *CleanupSessionsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	affected, err := t.cleaner.CleanupExpired()
	if err != nil {
		return fmt.Errorf("failed to clean up sessions: %w", err)
	}
	if affected > 0 {
		slog.Debug("Expired sessions deactivated", "count", affected, "duration", t.GetDuration().String())
	}
	return nil
}
