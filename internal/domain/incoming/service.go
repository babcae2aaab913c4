package incoming

import (
	"context"
	"fmt"
	"sync"

	"stockdesk/internal/core/apperror"
	"stockdesk/internal/domain/history"
	"stockdesk/internal/domain/reconcile"
	"stockdesk/pkg/logger"
)

// Client is the upstream inventory backend surface the service depends on.
type Client interface {
	// GetIncomingRecord returns a receipt header with its line items.
	GetIncomingRecord(ctx context.Context, recordID string) (*Record, error)

	// ListIncomingItems returns only the line items of a record.
	ListIncomingItems(ctx context.Context, recordID string) ([]Item, error)

	// UpdateItemRejectedShort issues the rejected/short correction and
	// returns the updated record.
	UpdateItemRejectedShort(ctx context.Context, recordID string, edit ItemEdit) (*Record, error)

	// MoveReceivedToRejected moves inspected units from received to rejected.
	MoveReceivedToRejected(ctx context.Context, recordID, itemID string, quantity int64, inspectionDate string) error

	// ListIncomingHistory returns receipt headers for a SKU; item detail
	// is loaded per record via GetIncomingRecord.
	ListIncomingHistory(ctx context.Context, skuCode string) ([]Record, error)
}

// ItemEdit carries a rejected/short correction. Nil fields are left as is.
type ItemEdit struct {
	ItemID   string
	Rejected *int64
	Short    *int64
}

// HistoryStore persists synthesized change-log entries.
type HistoryStore interface {
	Append(ctx context.Context, entries []history.Record) error
	ListBySKU(ctx context.Context, skuCode string) ([]history.Record, error)
	ListByRecord(ctx context.Context, recordID string) ([]history.Record, error)
}

// Service orchestrates incoming-record operations: it validates edits
// locally before any network mutation and feeds every observation into
// the history synthesizer.
type Service struct {
	client     Client
	synth      *history.Synthesizer
	store      HistoryStore // nil disables persistence
	fetchLimit int
}

// NewService creates an incoming service. fetchLimit bounds how many
// record-detail fetches run concurrently when expanding a history list.
func NewService(client Client, synth *history.Synthesizer, store HistoryStore, fetchLimit int) *Service {
	if fetchLimit < 1 {
		fetchLimit = 1
	}
	return &Service{
		client:     client,
		synth:      synth,
		store:      store,
		fetchLimit: fetchLimit,
	}
}

// GetRecord returns a receipt with its items.
func (s *Service) GetRecord(ctx context.Context, recordID string) (*Record, error) {
	if recordID == "" {
		return nil, apperror.NewValidation("record id is required")
	}
	return s.client.GetIncomingRecord(ctx, recordID)
}

// ListItems returns the line items of a record.
func (s *Service) ListItems(ctx context.Context, recordID string) ([]Item, error) {
	if recordID == "" {
		return nil, apperror.NewValidation("record id is required")
	}
	return s.client.ListIncomingItems(ctx, recordID)
}

// UpdateRejectedShort applies the reduce-only correction workflow: the
// proposed values are validated against the last known quantities and the
// mutation is only issued when validation passes.
func (s *Service) UpdateRejectedShort(ctx context.Context, recordID, itemID string, rejected, short *int64) (*Record, error) {
	if rejected == nil && short == nil {
		return nil, apperror.NewBusinessRule(apperror.CodeNoChanges, "no changes detected")
	}

	record, err := s.client.GetIncomingRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	item, ok := record.FindItem(itemID)
	if !ok {
		return nil, apperror.NewNotFound("incoming item", itemID)
	}

	original := item.Quantities()
	proposed := original
	if rejected != nil {
		proposed.Rejected = *rejected
	}
	if short != nil {
		proposed.Short = *short
	}

	if err := reconcile.ValidateEdit(original, proposed, reconcile.EditModeReduceOnly); err != nil {
		return nil, err
	}

	updated, err := s.client.UpdateItemRejectedShort(ctx, recordID, ItemEdit{
		ItemID:   itemID,
		Rejected: rejected,
		Short:    short,
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "rejected/short updated",
		"record_id", recordID,
		"item_id", itemID,
		"rejected", proposed.Rejected,
		"short", proposed.Short)

	s.observe(ctx, updated)
	return updated, nil
}

// MoveToRejected moves newly-inspected defective units from received into
// rejected.
func (s *Service) MoveToRejected(ctx context.Context, recordID, itemID string, quantity int64, inspectionDate string) (*Record, error) {
	record, err := s.client.GetIncomingRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	item, ok := record.FindItem(itemID)
	if !ok {
		return nil, apperror.NewNotFound("incoming item", itemID)
	}

	if err := reconcile.ValidateMoveToRejected(item.Quantities(), quantity); err != nil {
		return nil, err
	}

	if err := s.client.MoveReceivedToRejected(ctx, recordID, itemID, quantity, inspectionDate); err != nil {
		return nil, err
	}

	logger.Info(ctx, "received moved to rejected",
		"record_id", recordID,
		"item_id", itemID,
		"quantity", quantity)

	updated, err := s.client.GetIncomingRecord(ctx, recordID)
	if err != nil {
		// The mutation already happened; degrade to the pre-move record.
		logger.Warn(ctx, "re-fetch after move failed", "record_id", recordID, "error", err)
		return record, nil
	}

	s.observe(ctx, updated)
	return updated, nil
}

// History returns the synthesized change log for a SKU: persisted entries
// plus whatever the current fetch reveals as changed. New entries are
// persisted before returning.
func (s *Service) History(ctx context.Context, skuCode string) ([]history.Record, error) {
	if skuCode == "" {
		return nil, apperror.NewValidation("sku is required")
	}

	headers, err := s.client.ListIncomingHistory(ctx, skuCode)
	if err != nil {
		return nil, err
	}

	snapshots := s.expand(ctx, headers, skuCode)

	var log []history.Record
	if s.store != nil {
		log, err = s.store.ListBySKU(ctx, skuCode)
		if err != nil {
			return nil, fmt.Errorf("load history log: %w", err)
		}
	}

	merged := s.synth.Reconcile(log, snapshots)
	if err := s.persistDelta(ctx, log, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// expand loads record details with at most fetchLimit fetches in flight.
// A failed detail fetch degrades to a header-only view of the remaining
// records instead of failing the whole history request.
func (s *Service) expand(ctx context.Context, headers []Record, skuCode string) []history.Snapshot {
	type result struct {
		idx    int
		record *Record
	}

	sem := make(chan struct{}, s.fetchLimit)
	results := make([]result, len(headers))

	var wg sync.WaitGroup
	for i := range headers {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			record, err := s.client.GetIncomingRecord(ctx, headers[idx].ID)
			if err != nil {
				logger.Warn(ctx, "record expansion failed",
					"record_id", headers[idx].ID,
					"sku", skuCode,
					"error", err)
				return
			}
			results[idx] = result{idx: idx, record: record}
		}(i)
	}
	wg.Wait()

	snapshots := make([]history.Snapshot, 0, len(headers))
	for _, res := range results {
		if res.record == nil {
			continue
		}
		for _, snap := range res.record.Snapshots() {
			// The history endpoint is SKU-scoped; records can still carry
			// unrelated line items.
			if snap.SKUCode != "" && snap.SKUCode != skuCode {
				continue
			}
			snapshots = append(snapshots, snap)
		}
	}
	return snapshots
}

// observe feeds a freshly fetched record into the synthesizer and
// persists any resulting entries. Best-effort: observation failures are
// logged, never surfaced to the caller of a successful mutation.
func (s *Service) observe(ctx context.Context, record *Record) {
	if s.store == nil || record == nil {
		return
	}

	log, err := s.store.ListByRecord(ctx, record.ID)
	if err != nil {
		logger.Warn(ctx, "load record log failed", "record_id", record.ID, "error", err)
		return
	}

	merged := s.synth.Reconcile(log, record.Snapshots())
	if err := s.persistDelta(ctx, log, merged); err != nil {
		logger.Warn(ctx, "persist observation failed", "record_id", record.ID, "error", err)
	}
}

// persistDelta appends entries present in merged but not in prior.
func (s *Service) persistDelta(ctx context.Context, prior, merged []history.Record) error {
	if s.store == nil {
		return nil
	}

	known := make(map[string]struct{}, len(prior))
	for _, rec := range prior {
		known[rec.UniqueKey] = struct{}{}
	}

	var fresh []history.Record
	for _, rec := range merged {
		if _, ok := known[rec.UniqueKey]; !ok {
			fresh = append(fresh, rec)
		}
	}
	if len(fresh) == 0 {
		return nil
	}

	if err := s.store.Append(ctx, fresh); err != nil {
		return fmt.Errorf("append history entries: %w", err)
	}

	logger.Debug(ctx, "history entries appended", "count", len(fresh))
	return nil
}
