package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/istlgroup/crm-backend/internal/infrastructure/scheduler"
)

// SchedulerHandler exposes scheduler status and manual job triggers
type SchedulerHandler struct {
	BaseHandler
	scheduler *scheduler.StatsCronScheduler
}

// NewSchedulerHandler creates a new SchedulerHandler
func NewSchedulerHandler(s *scheduler.StatsCronScheduler) *SchedulerHandler {
	return &SchedulerHandler{
		scheduler: s,
	}
}

// Status returns the scheduler state and per-job status
func (h *SchedulerHandler) Status(c *gin.Context) {
	h.Success(c, gin.H{
		"running": h.scheduler.IsRunning(),
		"jobs":    h.scheduler.Status(),
	})
}

// Trigger runs one scheduled job immediately
func (h *SchedulerHandler) Trigger(c *gin.Context) {
	job := c.Param("job")

	err := h.scheduler.TriggerManualRun(job)
	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		h.NotFound(c, "Unknown job: "+job)
	case errors.Is(err, scheduler.ErrJobAlreadyRunning):
		h.Conflict(c, "Job is already running: "+job)
	case errors.Is(err, scheduler.ErrSchedulerNotRunning):
		h.Conflict(c, "Scheduler is not running")
	case err != nil:
		h.HandleDomainError(c, err)
	default:
		h.Success(c, gin.H{"triggered": job})
	}
}
