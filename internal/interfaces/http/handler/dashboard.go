package handler

import (
	"github.com/gin-gonic/gin"

	dashboardapp "github.com/istlgroup/crm-backend/internal/application/dashboard"
)

// DashboardHandler handles project dashboard API endpoints
type DashboardHandler struct {
	BaseHandler
	dashboardService *dashboardapp.Service
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *dashboardapp.Service) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetDashboard returns the full composite dashboard for a project.
// Optional sections degrade individually; only an unknown project fails.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	uid := c.Param("uid")
	if uid == "" {
		h.BadRequest(c, "Project UID is required")
		return
	}

	dashboard, err := h.dashboardService.GetDashboard(c.Request.Context(), uid)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, dashboard)
}

// GetFinancialData returns the cash-basis financial view of a project
func (h *DashboardHandler) GetFinancialData(c *gin.Context) {
	uid := c.Param("uid")
	if uid == "" {
		h.BadRequest(c, "Project UID is required")
		return
	}

	financial, err := h.dashboardService.GetFinancialData(c.Request.Context(), uid)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, financial)
}

// GetProcurementData returns the procurement view of a project
func (h *DashboardHandler) GetProcurementData(c *gin.Context) {
	uid := c.Param("uid")
	if uid == "" {
		h.BadRequest(c, "Project UID is required")
		return
	}

	procurement, err := h.dashboardService.GetProcurementData(c.Request.Context(), uid)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, procurement)
}
