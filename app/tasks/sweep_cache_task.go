package tasks

import (
	"context"
	"log/slog"
)

type SweepCacheTask struct {
	Task
	sweeper CacheSweeper
}

func NewSweepCacheTask(sweeper CacheSweeper) *SweepCacheTask {
	return &SweepCacheTask{
		Task:    NewTask(TaskTypeSweepCache),
		sweeper: sweeper,
	}
}

func (t *SweepCacheTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	removed := t.sweeper.Sweep()
	if removed > 0 {
		slog.Debug("Cache sweep complete", "removed", removed, "duration", t.GetDuration().String())
	}
	return nil
}
