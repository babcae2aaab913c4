package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockdesk/internal/core/apperror"
	"stockdesk/internal/domain/incoming"
	"stockdesk/internal/infrastructure/http/v1/dto"
)

// SnapshotStore serves the raw audit payload of a persisted entry.
type SnapshotStore interface {
	Snapshot(ctx context.Context, uniqueKey string) (json.RawMessage, error)
}

// IncomingHandler handles incoming-record endpoints.
type IncomingHandler struct {
	*BaseHandler
	service   *incoming.Service
	snapshots SnapshotStore // nil when persistence is disabled
}

// NewIncomingHandler creates an incoming handler.
func NewIncomingHandler(base *BaseHandler, service *incoming.Service, snapshots SnapshotStore) *IncomingHandler {
	return &IncomingHandler{BaseHandler: base, service: service, snapshots: snapshots}
}

// RegisterRoutes registers incoming endpoints on the group.
func (h *IncomingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/history", h.History)
	rg.GET("/history/:key/snapshot", h.HistorySnapshot)
	rg.GET("/:id", h.GetRecord)
	rg.GET("/:id/items", h.ListItems)
	rg.PUT("/:id/update-item-rejected-short", h.UpdateRejectedShort)
	rg.POST("/:id/move-received-to-rejected", h.MoveToRejected)
}

// GetRecord handles GET /incoming/:id.
func (h *IncomingHandler) GetRecord(c *gin.Context) {
	record, err := h.service.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromRecord(record))
}

// ListItems handles GET /incoming/:id/items.
func (h *IncomingHandler) ListItems(c *gin.Context) {
	items, err := h.service.ListItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromItems(items))
}

// UpdateRejectedShort handles PUT /incoming/:id/update-item-rejected-short.
func (h *IncomingHandler) UpdateRejectedShort(c *gin.Context) {
	var req dto.UpdateRejectedShortRequest
	if !h.BindJSON(c, &req) {
		return
	}

	record, err := h.service.UpdateRejectedShort(
		c.Request.Context(), c.Param("id"), req.ItemID, req.Rejected, req.Short)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromRecord(record))
}

// MoveToRejected handles POST /incoming/:id/move-received-to-rejected.
func (h *IncomingHandler) MoveToRejected(c *gin.Context) {
	var req dto.MoveToRejectedRequest
	if !h.BindJSON(c, &req) {
		return
	}

	record, err := h.service.MoveToRejected(
		c.Request.Context(), c.Param("id"), req.ItemID, req.Quantity, req.InspectionDate)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromRecord(record))
}

// History handles GET /incoming/history?sku=...
func (h *IncomingHandler) History(c *gin.Context) {
	sku := c.Query("sku")
	if sku == "" {
		h.Error(c, apperror.NewValidation("sku query parameter is required"))
		return
	}

	log, err := h.service.History(c.Request.Context(), sku)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromHistory(log))
}

// HistorySnapshot handles GET /incoming/history/:key/snapshot and returns
// the persisted raw snapshot of one audit entry.
func (h *IncomingHandler) HistorySnapshot(c *gin.Context) {
	if h.snapshots == nil {
		h.Error(c, apperror.NewNotFound("history snapshot", c.Param("key")))
		return
	}

	payload, err := h.snapshots.Snapshot(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.Error(c, apperror.NewNotFound("history snapshot", c.Param("key")).WithCause(err))
		return
	}
	c.Data(http.StatusOK, "application/json", payload)
}
