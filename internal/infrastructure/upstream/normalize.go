package upstream

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"stockdesk/internal/domain/incoming"
)

// The backend emits both camelCase and snake_case field names, numbers
// as strings, and explicit nulls. Normalization happens exactly once,
// here, with flexString/flexInt/flexTime absorbing the type looseness
// and the raw structs listing every accepted alias.

// flexString decodes a JSON string, number, null or absent value.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	// Bare number or bool; keep its literal form.
	*f = flexString(data)
	return nil
}

// flexInt decodes a JSON number, numeric string or null into an int64.
// Fractional values truncate; garbage degrades to zero rather than
// failing the whole record.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	s := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*f = 0
		return nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = flexInt(v)
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*f = flexInt(int64(v))
		return nil
	}
	*f = 0
	return nil
}

// flexTime decodes the timestamp formats the backend is known to emit.
type flexTime time.Time

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = flexTime(time.Time{})
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*f = flexTime(time.Time{})
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*f = flexTime(t)
			return nil
		}
	}
	// Unknown format degrades to zero time.
	*f = flexTime(time.Time{})
	return nil
}

func (f flexTime) Time() time.Time {
	return time.Time(f)
}

// firstString returns the first non-empty alias.
func firstString(values ...flexString) string {
	for _, v := range values {
		if v != "" {
			return string(v)
		}
	}
	return ""
}

// firstInt returns the first non-zero alias. Zero is a legal quantity,
// so callers list the preferred alias first and this only matters when
// the backend populates one spelling.
func firstInt(values ...flexInt) int64 {
	for _, v := range values {
		if v != 0 {
			return int64(v)
		}
	}
	return 0
}

func firstTime(values ...flexTime) time.Time {
	for _, v := range values {
		if !v.Time().IsZero() {
			return v.Time()
		}
	}
	return time.Time{}
}

// rawItem lists every accepted spelling of an incoming line item.
type rawItem struct {
	ItemID      flexString `json:"itemId"`
	ItemIDSnake flexString `json:"item_id"`
	ID          flexString `json:"id"`

	SKUID      flexString `json:"skuId"`
	SKUIDSnake flexString `json:"sku_id"`

	SKUCode      flexString `json:"skuCode"`
	SKUCodeSnake flexString `json:"sku_code"`

	ItemName      flexString `json:"itemName"`
	ItemNameSnake flexString `json:"item_name"`
	Name          flexString `json:"name"`

	TotalQuantity      flexInt `json:"totalQuantity"`
	TotalQuantitySnake flexInt `json:"total_quantity"`

	Received         flexInt `json:"received"`
	ReceivedQty      flexInt `json:"receivedQuantity"`
	ReceivedQtySnake flexInt `json:"received_quantity"`

	Rejected         flexInt `json:"rejected"`
	RejectedQty      flexInt `json:"rejectedQuantity"`
	RejectedQtySnake flexInt `json:"rejected_quantity"`

	Short         flexInt `json:"short"`
	ShortQty      flexInt `json:"shortQuantity"`
	ShortQtySnake flexInt `json:"short_quantity"`

	UpdatedAt      flexTime `json:"updatedAt"`
	UpdatedAtSnake flexTime `json:"updated_at"`
}

func (r rawItem) normalize() incoming.Item {
	return incoming.Item{
		ItemID:        firstString(r.ItemID, r.ItemIDSnake, r.ID),
		SKUID:         firstString(r.SKUID, r.SKUIDSnake),
		SKUCode:       firstString(r.SKUCode, r.SKUCodeSnake),
		ItemName:      firstString(r.ItemName, r.ItemNameSnake, r.Name),
		TotalQuantity: firstInt(r.TotalQuantity, r.TotalQuantitySnake),
		Received:      firstInt(r.Received, r.ReceivedQty, r.ReceivedQtySnake),
		Rejected:      firstInt(r.Rejected, r.RejectedQty, r.RejectedQtySnake),
		Short:         firstInt(r.Short, r.ShortQty, r.ShortQtySnake),
		UpdatedAt:     firstTime(r.UpdatedAt, r.UpdatedAtSnake),
	}
}

// rawRecord lists every accepted spelling of a receipt header.
type rawRecord struct {
	ID       flexString `json:"id"`
	RecordID flexString `json:"recordId"`
	IDSnake  flexString `json:"record_id"`

	InvoiceNumber      flexString `json:"invoiceNumber"`
	InvoiceNumberSnake flexString `json:"invoice_number"`

	ChallanNumber      flexString `json:"challanNumber"`
	ChallanNumberSnake flexString `json:"challan_number"`

	ChallanDate      flexString `json:"challanDate"`
	ChallanDateSnake flexString `json:"challan_date"`

	InvoiceDate      flexString `json:"invoiceDate"`
	InvoiceDateSnake flexString `json:"invoice_date"`

	ReceivingDate      flexString `json:"receivingDate"`
	ReceivingDateSnake flexString `json:"receiving_date"`

	VendorName      flexString `json:"vendorName"`
	VendorNameSnake flexString `json:"vendor_name"`
	Vendor          flexString `json:"vendor"`

	Status flexString `json:"status"`

	UpdatedAt      flexTime `json:"updatedAt"`
	UpdatedAtSnake flexTime `json:"updated_at"`

	Items []rawItem `json:"items"`
}

func (r rawRecord) normalize() incoming.Record {
	record := incoming.Record{
		ID:            firstString(r.ID, r.RecordID, r.IDSnake),
		InvoiceNumber: firstString(r.InvoiceNumber, r.InvoiceNumberSnake),
		ChallanNumber: firstString(r.ChallanNumber, r.ChallanNumberSnake),
		ChallanDate:   firstString(r.ChallanDate, r.ChallanDateSnake),
		InvoiceDate:   firstString(r.InvoiceDate, r.InvoiceDateSnake),
		ReceivingDate: firstString(r.ReceivingDate, r.ReceivingDateSnake),
		VendorName:    firstString(r.VendorName, r.VendorNameSnake, r.Vendor),
		Status:        string(r.Status),
		UpdatedAt:     firstTime(r.UpdatedAt, r.UpdatedAtSnake),
	}
	if len(r.Items) > 0 {
		record.Items = make([]incoming.Item, 0, len(r.Items))
		for _, item := range r.Items {
			record.Items = append(record.Items, item.normalize())
		}
	}
	return record
}
