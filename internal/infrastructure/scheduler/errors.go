package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when a job is submitted before Start or after Stop
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull is returned when the analytics job queue has no free slot
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrInvalidJobType is returned for anything other than snapshot and costing jobs
	ErrInvalidJobType = errors.New("invalid job type")

	// ErrInvalidConfig is returned for an unparseable daily cron expression
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
