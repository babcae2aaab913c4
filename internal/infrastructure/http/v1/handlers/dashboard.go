package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"stockdesk/internal/core/apperror"
	"stockdesk/internal/domain/dashboard"
)

// DashboardHandler serves aggregated stock summaries.
type DashboardHandler struct {
	*BaseHandler
	service *dashboard.Service
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(base *BaseHandler, service *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{BaseHandler: base, service: service}
}

// RegisterRoutes registers dashboard endpoints on the group.
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/summary", h.Summary)
}

// Summary handles GET /dashboard/summary?skus=a,b,c.
func (h *DashboardHandler) Summary(c *gin.Context) {
	skusParam := c.Query("skus")
	if skusParam == "" {
		h.Error(c, apperror.NewValidation("skus query parameter is required"))
		return
	}

	var skus []string
	for _, sku := range strings.Split(skusParam, ",") {
		if trimmed := strings.TrimSpace(sku); trimmed != "" {
			skus = append(skus, trimmed)
		}
	}

	summary, err := h.service.Overview(c.Request.Context(), skus)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}
