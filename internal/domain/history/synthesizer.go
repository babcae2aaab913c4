package history

import (
	"fmt"
	"sort"
	"sync/atomic"
	"time"
)

// Synthesizer decides whether fetched snapshots extend the change log.
// Safe for concurrent use; unique keys are guaranteed collision-free for
// the process lifetime.
type Synthesizer struct {
	counter atomic.Uint64
	now     func() time.Time
}

// NewSynthesizer creates a Synthesizer using the wall clock.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{now: time.Now}
}

// NewSynthesizerWithClock creates a Synthesizer with an injected clock.
// Used by tests.
func NewSynthesizerWithClock(now func() time.Time) *Synthesizer {
	return &Synthesizer{now: now}
}

// Reconcile returns a new, possibly longer, log. Per fetched snapshot:
// the first observation of a (recordID, itemID) pair always appends; a
// snapshot identical to the latest logged entry for the pair is skipped;
// any field difference appends. The input log is never mutated.
//
// The result is sorted descending by UpdatedAt (missing treated as epoch),
// with deterministic tiebreaks by ReceivingDate, InvoiceNumber and finally
// UniqueKey.
func (s *Synthesizer) Reconcile(log []Record, fetched []Snapshot) []Record {
	out := make([]Record, len(log), len(log)+len(fetched))
	copy(out, log)

	// Plain wall-clock milliseconds are not unique across snapshots in one
	// batch; combine a fetch stamp, a process-wide fetch counter and the
	// batch index.
	stamp := s.now().UnixMilli()
	fetchSeq := s.counter.Add(1)

	for i, snap := range fetched {
		if last, ok := latestFor(out, snap.RecordID, snap.ItemID); ok && last.Snapshot.Equal(snap) {
			continue
		}
		out = append(out, Record{
			UniqueKey:  fmt.Sprintf("%d-%d-%d", stamp, fetchSeq, i),
			ObservedAt: s.now(),
			Snapshot:   snap,
		})
	}

	sortLog(out)
	return out
}

// latestFor finds the entry for (recordID, itemID) with the maximum
// UpdatedAt. Equal timestamps resolve to the greater UniqueKey, so the
// choice does not depend on slice order.
func latestFor(log []Record, recordID, itemID string) (Record, bool) {
	var best Record
	found := false
	for _, rec := range log {
		if rec.RecordID != recordID || rec.ItemID != itemID {
			continue
		}
		if !found {
			best = rec
			found = true
			continue
		}
		if rec.UpdatedAt.After(best.UpdatedAt) ||
			(rec.UpdatedAt.Equal(best.UpdatedAt) && rec.UniqueKey > best.UniqueKey) {
			best = rec
		}
	}
	return best, found
}

func sortLog(log []Record) {
	sort.SliceStable(log, func(i, j int) bool {
		a, b := log[i], log[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		if a.ReceivingDate != b.ReceivingDate {
			return a.ReceivingDate > b.ReceivingDate
		}
		if a.InvoiceNumber != b.InvoiceNumber {
			return a.InvoiceNumber < b.InvoiceNumber
		}
		return a.UniqueKey > b.UniqueKey
	})
}
