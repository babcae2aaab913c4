// Package reconcile implements incoming-item quantity arithmetic and
// the rules that guard rejected/short corrections.
package reconcile

// Quantities describes the counted state of one incoming line item.
type Quantities struct {
	// TotalQuantity is the quantity expected per the originating order.
	TotalQuantity int64

	// Received is the quantity physically received to date.
	Received int64

	// Rejected is the quantity received but marked defective/returned.
	Rejected int64

	// Short is the quantity still outstanding at the current point in time.
	Short int64
}

// ArrivedShort returns how many previously-short units have arrived.
// The initial short count is totalQuantity - received; as units arrive the
// current short count drops below it. The result saturates at zero: an
// over-receipt (totalQuantity < received) or a short count that grew must
// never produce a negative arrival.
func ArrivedShort(totalQuantity, received, short int64) int64 {
	initialShort := totalQuantity - received
	arrived := initialShort - short
	if arrived < 0 {
		return 0
	}
	return arrived
}

// ComputeAvailable returns the reconciled usable stock quantity.
func ComputeAvailable(received, rejected, totalQuantity, short int64) int64 {
	arrived := ArrivedShort(totalQuantity, received, short)
	if rejected > 0 {
		return received - rejected + arrived
	}
	return received + arrived
}

// Available returns the reconciled usable quantity for q.
func (q Quantities) Available() int64 {
	return ComputeAvailable(q.Received, q.Rejected, q.TotalQuantity, q.Short)
}
