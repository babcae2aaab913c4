// Package history synthesizes an append-only change log from repeated
// observations of incoming records. The upstream backend keeps no audit
// trail of item-level edits; this package reconstructs one by diffing
// snapshots and persisting what changed.
package history

import "time"

// Snapshot is one normalized observation of a record+item pair.
// Field normalization (camelCase/snake_case variants, null to empty string)
// happens once at the upstream boundary; snapshots compare field-for-field.
type Snapshot struct {
	RecordID string
	ItemID   string

	SKUID    string
	SKUCode  string
	ItemName string

	VendorName    string
	InvoiceNumber string
	ChallanNumber string
	ChallanDate   string
	InvoiceDate   string
	ReceivingDate string

	TotalQuantity int64
	Received      int64
	Rejected      int64
	Short         int64

	// UpdatedAt is the server-assigned modification timestamp.
	// Zero when the backend omitted it.
	UpdatedAt time.Time
}

// Equal reports whether two snapshots carry an identical normalized tuple.
func (s Snapshot) Equal(other Snapshot) bool {
	return s.RecordID == other.RecordID &&
		s.ItemID == other.ItemID &&
		s.SKUID == other.SKUID &&
		s.SKUCode == other.SKUCode &&
		s.ItemName == other.ItemName &&
		s.VendorName == other.VendorName &&
		s.InvoiceNumber == other.InvoiceNumber &&
		s.ChallanNumber == other.ChallanNumber &&
		s.ChallanDate == other.ChallanDate &&
		s.InvoiceDate == other.InvoiceDate &&
		s.ReceivingDate == other.ReceivingDate &&
		s.TotalQuantity == other.TotalQuantity &&
		s.Received == other.Received &&
		s.Rejected == other.Rejected &&
		s.Short == other.Short &&
		s.UpdatedAt.Equal(other.UpdatedAt)
}

// Record is one synthesized change-log entry.
type Record struct {
	// UniqueKey is collision-free within the process lifetime.
	UniqueKey string

	// ObservedAt is when this entry was appended to the log.
	ObservedAt time.Time

	Snapshot
}
