// Package incoming provides incoming-receipt records, their line items
// and the operations that mutate rejected/short quantities.
package incoming

import (
	"time"

	"stockdesk/internal/domain/history"
	"stockdesk/internal/domain/reconcile"
)

// Item is one line item within an incoming receipt, in canonical shape.
// Wire-format variants are normalized away at the upstream boundary.
type Item struct {
	ItemID   string `json:"itemId"`
	SKUID    string `json:"skuId"`
	SKUCode  string `json:"skuCode"`
	ItemName string `json:"itemName"`

	TotalQuantity int64 `json:"totalQuantity"`
	Received      int64 `json:"received"`
	Rejected      int64 `json:"rejected"`
	Short         int64 `json:"short"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// Quantities returns the item's counted state for reconciliation.
func (i Item) Quantities() reconcile.Quantities {
	return reconcile.Quantities{
		TotalQuantity: i.TotalQuantity,
		Received:      i.Received,
		Rejected:      i.Rejected,
		Short:         i.Short,
	}
}

// Available returns the reconciled usable quantity of the item.
func (i Item) Available() int64 {
	return i.Quantities().Available()
}

// Record is a receipt header owning one or more line items.
// Items are loaded lazily per record; a header-only Record has nil Items.
type Record struct {
	ID string `json:"id"`

	InvoiceNumber string `json:"invoiceNumber"`
	ChallanNumber string `json:"challanNumber"`
	ChallanDate   string `json:"challanDate"`
	InvoiceDate   string `json:"invoiceDate"`
	ReceivingDate string `json:"receivingDate"`
	VendorName    string `json:"vendorName"`
	Status        string `json:"status"`

	UpdatedAt time.Time `json:"updatedAt"`

	Items []Item `json:"items,omitempty"`
}

// FindItem returns the line item with the given id.
func (r *Record) FindItem(itemID string) (*Item, bool) {
	for idx := range r.Items {
		if r.Items[idx].ItemID == itemID {
			return &r.Items[idx], true
		}
	}
	return nil, false
}

// Snapshots flattens the record into one observation per line item.
// Item-level UpdatedAt wins over the header timestamp when present.
func (r *Record) Snapshots() []history.Snapshot {
	snaps := make([]history.Snapshot, 0, len(r.Items))
	for _, item := range r.Items {
		updatedAt := item.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = r.UpdatedAt
		}
		snaps = append(snaps, history.Snapshot{
			RecordID:      r.ID,
			ItemID:        item.ItemID,
			SKUID:         item.SKUID,
			SKUCode:       item.SKUCode,
			ItemName:      item.ItemName,
			VendorName:    r.VendorName,
			InvoiceNumber: r.InvoiceNumber,
			ChallanNumber: r.ChallanNumber,
			ChallanDate:   r.ChallanDate,
			InvoiceDate:   r.InvoiceDate,
			ReceivingDate: r.ReceivingDate,
			TotalQuantity: item.TotalQuantity,
			Received:      item.Received,
			Rejected:      item.Rejected,
			Short:         item.Short,
			UpdatedAt:     updatedAt,
		})
	}
	return snaps
}
