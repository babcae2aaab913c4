package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockdesk/internal/core/apperror"
	"stockdesk/internal/domain/reports"
)

// ReportsHandler serves CSV exports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// RegisterRoutes registers report endpoints on the group.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/incoming/:id", h.IncomingCSV)
	rg.GET("/history", h.HistoryCSV)
}

// IncomingCSV handles GET /reports/incoming/:id.
func (h *ReportsHandler) IncomingCSV(c *gin.Context) {
	// Render fully before sending so a failed export still produces a
	// proper error response instead of a truncated file.
	var buf bytes.Buffer
	if err := h.service.WriteIncomingCSV(c.Request.Context(), &buf, c.Param("id")); err != nil {
		h.Error(c, err)
		return
	}
	h.sendCSV(c, "incoming.csv", buf.Bytes())
}

// HistoryCSV handles GET /reports/history?sku=...
func (h *ReportsHandler) HistoryCSV(c *gin.Context) {
	sku := c.Query("sku")
	if sku == "" {
		h.Error(c, apperror.NewValidation("sku query parameter is required"))
		return
	}

	var buf bytes.Buffer
	if err := h.service.WriteHistoryCSV(c.Request.Context(), &buf, sku); err != nil {
		h.Error(c, err)
		return
	}
	h.sendCSV(c, "history.csv", buf.Bytes())
}

func (h *ReportsHandler) sendCSV(c *gin.Context, filename string, payload []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", payload)
}
