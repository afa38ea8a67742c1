package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when triggering a job on a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobNotFound is returned when a job name is not registered
	ErrJobNotFound = errors.New("job not found")

	// ErrJobAlreadyRunning is returned when a job is triggered while a
	// previous run is still in flight
	ErrJobAlreadyRunning = errors.New("job is already running")

	// ErrInvalidSchedule is returned for unparseable cron expressions
	ErrInvalidSchedule = errors.New("invalid cron schedule")
)
