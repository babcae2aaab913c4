package handlers

import (
	"github.com/gin-gonic/gin"

	"stockdesk/internal/infrastructure/http/v1/dto"
)

// OutgoingHandler handles outgoing-form configuration and validation.
type OutgoingHandler struct {
	*BaseHandler
}

// NewOutgoingHandler creates an outgoing handler.
func NewOutgoingHandler(base *BaseHandler) *OutgoingHandler {
	return &OutgoingHandler{BaseHandler: base}
}

// RegisterRoutes registers outgoing endpoints on the group.
func (h *OutgoingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/document-types", h.DocumentTypes)
	rg.POST("/validate", h.Validate)
}

// DocumentTypes handles GET /outgoing/document-types.
func (h *OutgoingHandler) DocumentTypes(c *gin.Context) {
	h.OK(c, dto.DocumentTypeTree())
}

// Validate handles POST /outgoing/validate. It checks the form selection
// and quantity without issuing any mutation; the frontend gates its
// submit on the result.
func (h *OutgoingHandler) Validate(c *gin.Context) {
	var req dto.ValidateOutgoingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sel := req.Selection()
	if err := sel.ValidateQuantity(req.SKUCode, req.Quantity, req.Available); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ValidateOutgoingResponse{
		OK:                   true,
		Destination:          string(sel.Destination()),
		RejectedQuantityMode: sel.RejectedQuantityMode(),
	})
}
