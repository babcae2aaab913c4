package dto

import (
	"time"

	"stockdesk/internal/domain/history"
)

// HistoryEntryResponse is one synthesized change-log entry.
type HistoryEntryResponse struct {
	UniqueKey string `json:"uniqueKey"`

	RecordID string `json:"recordId"`
	ItemID   string `json:"itemId"`
	SKUCode  string `json:"skuCode"`
	ItemName string `json:"itemName"`

	VendorName    string `json:"vendorName,omitempty"`
	InvoiceNumber string `json:"invoiceNumber,omitempty"`
	ChallanNumber string `json:"challanNumber,omitempty"`
	ReceivingDate string `json:"receivingDate,omitempty"`

	TotalQuantity int64 `json:"totalQuantity"`
	Received      int64 `json:"received"`
	Rejected      int64 `json:"rejected"`
	Short         int64 `json:"short"`

	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
	ObservedAt time.Time  `json:"observedAt"`
}

// FromHistory converts change-log entries, preserving their order.
func FromHistory(log []history.Record) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, 0, len(log))
	for _, entry := range log {
		resp := HistoryEntryResponse{
			UniqueKey:     entry.UniqueKey,
			RecordID:      entry.RecordID,
			ItemID:        entry.ItemID,
			SKUCode:       orFallback(entry.SKUCode),
			ItemName:      orFallback(entry.ItemName),
			VendorName:    entry.VendorName,
			InvoiceNumber: entry.InvoiceNumber,
			ChallanNumber: entry.ChallanNumber,
			ReceivingDate: entry.ReceivingDate,
			TotalQuantity: entry.TotalQuantity,
			Received:      entry.Received,
			Rejected:      entry.Rejected,
			Short:         entry.Short,
			ObservedAt:    entry.ObservedAt,
		}
		if !entry.UpdatedAt.IsZero() {
			t := entry.UpdatedAt
			resp.UpdatedAt = &t
		}
		out = append(out, resp)
	}
	return out
}
