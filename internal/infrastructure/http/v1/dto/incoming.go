package dto

import (
	"time"

	"stockdesk/internal/domain/incoming"
)

// fallbackLabel is shown where the backend omitted an identity field.
// Degraded display is preferred over failing the whole response.
const fallbackLabel = "N/A"

// ItemResponse is one incoming line item with its reconciled availability.
type ItemResponse struct {
	ItemID   string `json:"itemId"`
	SKUID    string `json:"skuId,omitempty"`
	SKUCode  string `json:"skuCode"`
	ItemName string `json:"itemName"`

	TotalQuantity int64 `json:"totalQuantity"`
	Received      int64 `json:"received"`
	Rejected      int64 `json:"rejected"`
	Short         int64 `json:"short"`
	Available     int64 `json:"available"`

	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// FromItem converts a line item to its response shape.
func FromItem(item incoming.Item) ItemResponse {
	resp := ItemResponse{
		ItemID:        orFallback(item.ItemID),
		SKUID:         item.SKUID,
		SKUCode:       orFallback(item.SKUCode),
		ItemName:      orFallback(item.ItemName),
		TotalQuantity: item.TotalQuantity,
		Received:      item.Received,
		Rejected:      item.Rejected,
		Short:         item.Short,
		Available:     item.Available(),
	}
	if !item.UpdatedAt.IsZero() {
		t := item.UpdatedAt
		resp.UpdatedAt = &t
	}
	return resp
}

// FromItems converts a slice of line items.
func FromItems(items []incoming.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, FromItem(item))
	}
	return out
}

// RecordResponse is a receipt header with its items.
type RecordResponse struct {
	ID            string `json:"id"`
	InvoiceNumber string `json:"invoiceNumber"`
	ChallanNumber string `json:"challanNumber,omitempty"`
	ChallanDate   string `json:"challanDate,omitempty"`
	InvoiceDate   string `json:"invoiceDate,omitempty"`
	ReceivingDate string `json:"receivingDate,omitempty"`
	VendorName    string `json:"vendorName"`
	Status        string `json:"status,omitempty"`

	UpdatedAt *time.Time `json:"updatedAt,omitempty"`

	Items []ItemResponse `json:"items"`
}

// FromRecord converts a record to its response shape.
func FromRecord(record *incoming.Record) RecordResponse {
	resp := RecordResponse{
		ID:            record.ID,
		InvoiceNumber: orFallback(record.InvoiceNumber),
		ChallanNumber: record.ChallanNumber,
		ChallanDate:   record.ChallanDate,
		InvoiceDate:   record.InvoiceDate,
		ReceivingDate: record.ReceivingDate,
		VendorName:    orFallback(record.VendorName),
		Status:        record.Status,
		Items:         FromItems(record.Items),
	}
	if !record.UpdatedAt.IsZero() {
		t := record.UpdatedAt
		resp.UpdatedAt = &t
	}
	return resp
}

// UpdateRejectedShortRequest carries a reduce-only correction.
type UpdateRejectedShortRequest struct {
	ItemID   string `json:"itemId" binding:"required"`
	Rejected *int64 `json:"rejected,omitempty"`
	Short    *int64 `json:"short,omitempty"`
}

// MoveToRejectedRequest moves inspected units from received to rejected.
type MoveToRejectedRequest struct {
	ItemID         string `json:"itemId" binding:"required"`
	Quantity       int64  `json:"quantity" binding:"required,gt=0"`
	InspectionDate string `json:"inspectionDate,omitempty"`
}

func orFallback(value string) string {
	if value == "" {
		return fallbackLabel
	}
	return value
}
