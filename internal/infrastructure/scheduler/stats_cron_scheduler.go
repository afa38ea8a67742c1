package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/istlgroup/crm-backend/internal/application/stats"
	"github.com/istlgroup/crm-backend/internal/infrastructure/config"
)

// cronTickerInterval is the interval at which the scheduler checks for
// due jobs
const cronTickerInterval = 1 * time.Minute

// Job names used for status reporting and manual triggers
const (
	JobFullRecalculation = "full_recalculation"
	JobDriftRepair       = "drift_repair"
	JobHeartbeat         = "heartbeat"
)

// StatsRunner is the subset of the stats service the scheduler drives
type StatsRunner interface {
	RecalculateAllActiveProjects(ctx context.Context) (stats.BatchResult, error)
	FixInconsistentStats(ctx context.Context) (int, error)
}

// JobStatus is the last observed state of one scheduled job
type JobStatus struct {
	Name      string     `json:"name"`
	Enabled   bool       `json:"enabled"`
	Schedule  string     `json:"schedule"`
	Running   bool       `json:"running"`
	LastRunAt *time.Time `json:"last_run_at"`
	LastError string     `json:"last_error,omitempty"`
}

type cronJob struct {
	name     string
	enabled  bool
	schedule CronSchedule
	rawExpr  string
	run      func(ctx context.Context) error

	mu        sync.Mutex
	inFlight  bool
	lastRunAt *time.Time
	lastError string
}

// tryStart marks the job in flight; a tick that lands while the
// previous run is still active is skipped, never queued.
func (j *cronJob) tryStart(now time.Time) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.inFlight {
		return false
	}
	j.inFlight = true
	t := now
	j.lastRunAt = &t
	return true
}

func (j *cronJob) finish(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inFlight = false
	if err != nil {
		j.lastError = err.Error()
	} else {
		j.lastError = ""
	}
}

func (j *cronJob) status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobStatus{
		Name:      j.name,
		Enabled:   j.enabled,
		Schedule:  j.rawExpr,
		Running:   j.inFlight,
		LastRunAt: j.lastRunAt,
		LastError: j.lastError,
	}
}

// StatsCronScheduler drives the time-triggered stats jobs: full
// recalculation of all active projects, drift repair, and a liveness
// heartbeat. A failed run is logged and never stops the ticker.
type StatsCronScheduler struct {
	cfg    config.SchedulerConfig
	runner StatsRunner
	logger *zap.Logger
	jobs   []*cronJob

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewStatsCronScheduler creates the scheduler with the three standard
// jobs wired to the given runner.
func NewStatsCronScheduler(cfg config.SchedulerConfig, runner StatsRunner, logger *zap.Logger) (*StatsCronScheduler, error) {
	s := &StatsCronScheduler{
		cfg:    cfg,
		runner: runner,
		logger: logger,
	}

	jobs := []struct {
		name    string
		enabled bool
		expr    string
		run     func(ctx context.Context) error
	}{
		{JobFullRecalculation, cfg.FullRecalcEnabled, cfg.FullRecalcSchedule, s.runFullRecalculation},
		{JobDriftRepair, cfg.DriftRepairEnabled, cfg.DriftRepairSchedule, s.runDriftRepair},
		{JobHeartbeat, cfg.HeartbeatEnabled, cfg.HeartbeatSchedule, s.runHeartbeat},
	}
	for _, j := range jobs {
		schedule, err := ParseCronSchedule(j.expr)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", j.name, err)
		}
		s.jobs = append(s.jobs, &cronJob{
			name:     j.name,
			enabled:  j.enabled,
			schedule: schedule,
			rawExpr:  j.expr,
			run:      j.run,
		})
	}
	return s, nil
}

// Start starts the cron ticker
func (s *StatsCronScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.cronLoop(ctx)

	s.logger.Info("Stats cron scheduler started",
		zap.String("full_recalc_schedule", s.cfg.FullRecalcSchedule),
		zap.String("drift_repair_schedule", s.cfg.DriftRepairSchedule),
		zap.String("heartbeat_schedule", s.cfg.HeartbeatSchedule),
	)
	return nil
}

// Stop stops the ticker and waits for in-flight jobs
func (s *StatsCronScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Stats cron scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Stats cron scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *StatsCronScheduler) cronLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(cronTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, job := range s.jobs {
				if !job.enabled || !job.schedule.Matches(now) {
					continue
				}
				s.launch(ctx, job, now)
			}
		}
	}
}

// launch runs one job in its own goroutine with a timeout and panic
// recovery; an overlapping tick is skipped.
func (s *StatsCronScheduler) launch(ctx context.Context, job *cronJob, now time.Time) {
	if !job.tryStart(now) {
		s.logger.Warn("Skipping scheduled run, previous run still in flight",
			zap.String("job", job.name))
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		jobCtx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
		defer cancel()

		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job panicked: %v", r)
				s.logger.Error("Scheduled job panicked",
					zap.String("job", job.name),
					zap.Any("panic", r))
			}
			job.finish(err)
		}()

		if err = job.run(jobCtx); err != nil {
			s.logger.Error("Scheduled job failed",
				zap.String("job", job.name),
				zap.Error(err))
		}
	}()
}

// TriggerManualRun runs one job immediately, outside its schedule.
// Uses a background context so an HTTP caller disconnecting does not
// cancel the run.
func (s *StatsCronScheduler) TriggerManualRun(name string) error {
	s.mu.Lock()
	running := s.isRunning
	s.mu.Unlock()
	if !running {
		return ErrSchedulerNotRunning
	}

	for _, job := range s.jobs {
		if job.name != name {
			continue
		}
		if !job.tryStart(time.Now()) {
			return ErrJobAlreadyRunning
		}
		s.wg.Add(1)
		go func(job *cronJob) {
			defer s.wg.Done()

			jobCtx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
			defer cancel()

			var err error
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("job panicked: %v", r)
					s.logger.Error("Manual job run panicked",
						zap.String("job", job.name),
						zap.Any("panic", r))
				}
				job.finish(err)
			}()

			if err = job.run(jobCtx); err != nil {
				s.logger.Error("Manual job run failed",
					zap.String("job", job.name),
					zap.Error(err))
			}
		}(job)
		return nil
	}
	return ErrJobNotFound
}

// Status returns the state of every registered job
func (s *StatsCronScheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]JobStatus, 0, len(s.jobs))
	for _, job := range s.jobs {
		statuses = append(statuses, job.status())
	}
	return statuses
}

// IsRunning reports whether the ticker loop is active
func (s *StatsCronScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *StatsCronScheduler) runFullRecalculation(ctx context.Context) error {
	result, err := s.runner.RecalculateAllActiveProjects(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("Scheduled full recalculation finished",
		zap.Int("success", result.SuccessCount),
		zap.Int("failed", result.FailureCount),
		zap.Duration("duration", result.Duration))
	return nil
}

func (s *StatsCronScheduler) runDriftRepair(ctx context.Context) error {
	fixed, err := s.runner.FixInconsistentStats(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("Scheduled drift repair finished", zap.Int("fixed", fixed))
	return nil
}

func (s *StatsCronScheduler) runHeartbeat(_ context.Context) error {
	s.logger.Info("Stats scheduler heartbeat", zap.Int("jobs", len(s.jobs)))
	return nil
}
