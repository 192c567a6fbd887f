package tasks

// TaskSchedulerInterface defines the interface for background task scheduling.
// Used by the main application to manage the worker pool lifecycle.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// CacheSweeper removes expired cache entries and reports how many were
// evicted. Implemented by the result cache.
type CacheSweeper interface {
	Sweep() int
}

// SessionCleaner deactivates expired user sessions and reports how many were
// affected. Implemented by the access service.
type SessionCleaner interface {
	CleanupExpired() (int64, error)
}
