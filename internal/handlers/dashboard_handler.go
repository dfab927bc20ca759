package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kisahtegar/alqowy/internal/services"
	"github.com/kisahtegar/alqowy/internal/utils"
)

type DashboardHandler struct {
	BaseHandler
	service services.DashboardService
}

func NewDashboardHandler(service services.DashboardService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetDashboardStats returns the admin dashboard counters. Owners see
// platform-wide numbers; teachers see their own course count.
// @Summary Get dashboard statistics
// @Tags dashboard
// @Produce json
// @Success 200 {object} services.DashboardStatsResponse
// @Failure 403 {object} ErrorResponse "Students have no dashboard"
// @Router /dashboard/stats [get]
func (h *DashboardHandler) GetDashboardStats(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Getting dashboard stats", "user_id", userID)

	stats, err := h.service.GetStats(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
