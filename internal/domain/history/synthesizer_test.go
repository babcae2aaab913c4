package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func snap(recordID, itemID string, rejected int64, updatedAt time.Time) Snapshot {
	return Snapshot{
		RecordID:      recordID,
		ItemID:        itemID,
		SKUID:         "sku-1",
		SKUCode:       "WIDGET-01",
		ItemName:      "Widget",
		VendorName:    "Acme Supply",
		InvoiceNumber: "INV-100",
		ReceivingDate: "2026-08-20",
		TotalQuantity: 120,
		Received:      100,
		Rejected:      rejected,
		Short:         20,
		UpdatedAt:     updatedAt,
	}
}

func TestReconcile_FirstObservationAppends(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	s := NewSynthesizerWithClock(fixedClock(now))

	out := s.Reconcile(nil, []Snapshot{snap("rec-1", "item-1", 0, now)})

	require.Len(t, out, 1)
	assert.Equal(t, "rec-1", out[0].RecordID)
	assert.Equal(t, now, out[0].ObservedAt)
	assert.NotEmpty(t, out[0].UniqueKey)
}

func TestReconcile_IdenticalSnapshotSkipped(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	s := NewSynthesizerWithClock(fixedClock(now))

	fetched := []Snapshot{snap("rec-1", "item-1", 0, now)}
	log := s.Reconcile(nil, fetched)
	require.Len(t, log, 1)

	// Re-fetching unchanged data must be idempotent.
	log = s.Reconcile(log, fetched)
	assert.Len(t, log, 1)
	log = s.Reconcile(log, fetched)
	assert.Len(t, log, 1)
}

func TestReconcile_FieldChangeAppendsExactlyOne(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	s := NewSynthesizerWithClock(fixedClock(now))

	log := s.Reconcile(nil, []Snapshot{snap("rec-1", "item-1", 0, now)})
	require.Len(t, log, 1)

	// Rejected moves 0 -> 5: one new entry, prior entry retained.
	changed := snap("rec-1", "item-1", 5, now.Add(time.Minute))
	log = s.Reconcile(log, []Snapshot{changed})
	require.Len(t, log, 2)

	// Newest first.
	assert.Equal(t, int64(5), log[0].Rejected)
	assert.Equal(t, int64(0), log[1].Rejected)
}

func TestReconcile_ComparesAgainstLatestNotAny(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	s := NewSynthesizerWithClock(fixedClock(now))

	log := s.Reconcile(nil, []Snapshot{snap("rec-1", "item-1", 0, now)})
	log = s.Reconcile(log, []Snapshot{snap("rec-1", "item-1", 5, now.Add(time.Minute))})
	require.Len(t, log, 2)

	// Reverting to the original tuple differs from the latest entry, so it
	// appends; matching an older entry does not suppress it.
	log = s.Reconcile(log, []Snapshot{snap("rec-1", "item-1", 0, now.Add(2 * time.Minute))})
	assert.Len(t, log, 3)
}

func TestReconcile_DistinctPairsTrackedIndependently(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	s := NewSynthesizerWithClock(fixedClock(now))

	log := s.Reconcile(nil, []Snapshot{
		snap("rec-1", "item-1", 0, now),
		snap("rec-1", "item-2", 0, now),
		snap("rec-2", "item-1", 0, now),
	})
	assert.Len(t, log, 3)

	keys := map[string]struct{}{}
	for _, rec := range log {
		keys[rec.UniqueKey] = struct{}{}
	}
	assert.Len(t, keys, 3, "unique keys must not collide within a batch")
}

func TestReconcile_UniqueKeysDistinctAcrossFetches(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	// Same wall-clock instant for every fetch; the fetch counter must still
	// keep keys apart.
	s := NewSynthesizerWithClock(fixedClock(now))

	var log []Record
	for rejected := int64(0); rejected < 5; rejected++ {
		log = s.Reconcile(log, []Snapshot{snap("rec-1", "item-1", rejected, now)})
	}
	require.Len(t, log, 5)

	keys := map[string]struct{}{}
	for _, rec := range log {
		keys[rec.UniqueKey] = struct{}{}
	}
	assert.Len(t, keys, 5)
}

func TestReconcile_InputLogNotMutated(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	s := NewSynthesizerWithClock(fixedClock(now))

	original := s.Reconcile(nil, []Snapshot{snap("rec-1", "item-1", 0, now)})
	require.Len(t, original, 1)
	before := original[0]

	_ = s.Reconcile(original, []Snapshot{snap("rec-1", "item-1", 5, now.Add(time.Minute))})

	assert.Len(t, original, 1)
	assert.Equal(t, before, original[0])
}

func TestReconcile_SortedNewestFirst(t *testing.T) {
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	s := NewSynthesizerWithClock(fixedClock(base))

	older := snap("rec-1", "item-1", 0, base.Add(-time.Hour))
	newer := snap("rec-2", "item-1", 0, base)
	newest := snap("rec-3", "item-1", 0, base.Add(time.Hour))

	// Feed out of order.
	log := s.Reconcile(nil, []Snapshot{older, newest, newer})
	require.Len(t, log, 3)

	assert.Equal(t, "rec-3", log[0].RecordID)
	assert.Equal(t, "rec-2", log[1].RecordID)
	assert.Equal(t, "rec-1", log[2].RecordID)
}

func TestReconcile_TiebreaksAreDeterministic(t *testing.T) {
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	s := NewSynthesizerWithClock(fixedClock(base))

	a := snap("rec-1", "item-1", 0, base)
	a.ReceivingDate = "2026-08-18"
	a.InvoiceNumber = "INV-200"
	b := snap("rec-2", "item-1", 0, base)
	b.ReceivingDate = "2026-08-19"
	b.InvoiceNumber = "INV-100"
	c := snap("rec-3", "item-1", 0, base)
	c.ReceivingDate = "2026-08-18"
	c.InvoiceNumber = "INV-100"

	log := s.Reconcile(nil, []Snapshot{a, b, c})
	require.Len(t, log, 3)

	// Equal UpdatedAt: receiving date descending, then invoice ascending.
	assert.Equal(t, "rec-2", log[0].RecordID)
	assert.Equal(t, "rec-3", log[1].RecordID)
	assert.Equal(t, "rec-1", log[2].RecordID)
}

func TestReconcile_MissingUpdatedAtSortsLast(t *testing.T) {
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	s := NewSynthesizerWithClock(fixedClock(base))

	dated := snap("rec-1", "item-1", 0, base)
	undated := snap("rec-2", "item-1", 0, time.Time{})

	log := s.Reconcile(nil, []Snapshot{undated, dated})
	require.Len(t, log, 2)
	assert.Equal(t, "rec-1", log[0].RecordID)
	assert.Equal(t, "rec-2", log[1].RecordID)
}

func TestSnapshotEqual(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	a := snap("rec-1", "item-1", 0, now)

	assert.True(t, a.Equal(snap("rec-1", "item-1", 0, now)))

	b := a
	b.Short = 19
	assert.False(t, a.Equal(b))

	c := a
	c.VendorName = "Other Vendor"
	assert.False(t, a.Equal(c))

	// Same instant in a different location still compares equal.
	d := a
	d.UpdatedAt = now.In(time.FixedZone("IST", 5*3600+1800))
	assert.True(t, a.Equal(d))
}
