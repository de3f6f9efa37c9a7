package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/api/middleware"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/services"
)

// RestDashboardHandler serves the signed-in user's overview.
type RestDashboardHandler struct {
	dashboardService services.IDashboardService
}

// NewRestDashboardHandler creates a new RestDashboardHandler.
func NewRestDashboardHandler(dashboardService services.IDashboardService) *RestDashboardHandler {
	return &RestDashboardHandler{dashboardService: dashboardService}
}

// GetDashboard handles GET /v1/dashboard
func (h *RestDashboardHandler) GetDashboard(c *gin.Context) {
	dash, err := h.dashboardService.Load(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err, "Failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, dash)
}
