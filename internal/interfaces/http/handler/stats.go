package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	statsapp "github.com/istlgroup/crm-backend/internal/application/stats"
	"github.com/istlgroup/crm-backend/internal/domain/shared"
)

// StatsHandler handles project statistics API endpoints
type StatsHandler struct {
	BaseHandler
	statsService *statsapp.Service
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(statsService *statsapp.Service) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// DomainChangeRequest is the body of a targeted stats update
type DomainChangeRequest struct {
	Domain string `json:"domain" binding:"required,oneof=purchase_order quotation bill vendor invoice"`
}

// DomainChangeResponse reports what a targeted stats update did
type DomainChangeResponse struct {
	Updated bool `json:"updated"`
	Skipped bool `json:"skipped,omitempty"`
}

// VerifyResponse reports a consistency check result
type VerifyResponse struct {
	ProjectUID string `json:"project_uid"`
	Consistent bool   `json:"consistent"`
}

// StaleProjectResponse is one project overdue for recalculation
type StaleProjectResponse struct {
	ProjectUID        string     `json:"project_uid"`
	Name              string     `json:"name"`
	StatsCalculatedAt *time.Time `json:"stats_calculated_at"`
}

// RecalculateProject recomputes all aggregates for one project
func (h *StatsHandler) RecalculateProject(c *gin.Context) {
	uid := c.Param("uid")
	if uid == "" {
		h.BadRequest(c, "Project UID is required")
		return
	}

	p, err := h.statsService.RecalculateProjectStats(c.Request.Context(), uid)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, p)
}

// VerifyProject checks stored aggregates against source data.
// Divergence surfaces as a conflict so monitors can alert on the
// status code alone.
func (h *StatsHandler) VerifyProject(c *gin.Context) {
	uid := c.Param("uid")
	if uid == "" {
		h.BadRequest(c, "Project UID is required")
		return
	}

	consistent, err := h.statsService.VerifyProjectStats(c.Request.Context(), uid)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, VerifyResponse{ProjectUID: uid, Consistent: consistent})
}

// DomainChange applies a targeted stats update for one source domain.
// A skipped update (a full recalculation holds the lock) is reported,
// not treated as a failure.
func (h *StatsHandler) DomainChange(c *gin.Context) {
	uid := c.Param("uid")
	if uid == "" {
		h.BadRequest(c, "Project UID is required")
		return
	}

	var req DomainChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	err := h.statsService.UpdateAfterDomainChange(c.Request.Context(), uid, statsapp.Domain(req.Domain))
	if errors.Is(err, shared.ErrComputationSkipped) {
		h.Success(c, DomainChangeResponse{Updated: false, Skipped: true})
		return
	}
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, DomainChangeResponse{Updated: true})
}

// RecalculateAll recalculates every active project
func (h *StatsHandler) RecalculateAll(c *gin.Context) {
	result, err := h.statsService.RecalculateAllActiveProjects(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// FixInconsistent verifies all active projects and recalculates the
// divergent ones
func (h *StatsHandler) FixInconsistent(c *gin.Context) {
	fixed, err := h.statsService.FixInconsistentStats(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"fixed_count": fixed})
}

// ListStale returns active projects whose stats are older than the
// given number of hours (default 24)
func (h *StatsHandler) ListStale(c *gin.Context) {
	hours := 24
	if raw := c.Query("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.BadRequest(c, "hours must be a positive integer")
			return
		}
		hours = parsed
	}

	projects, err := h.statsService.FindProjectsNeedingRecalculation(c.Request.Context(), time.Duration(hours)*time.Hour)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	stale := make([]StaleProjectResponse, 0, len(projects))
	for _, p := range projects {
		stale = append(stale, StaleProjectResponse{
			ProjectUID:        p.ProjectUID,
			Name:              p.Name,
			StatsCalculatedAt: p.StatsCalculatedAt,
		})
	}

	h.Success(c, stale)
}
