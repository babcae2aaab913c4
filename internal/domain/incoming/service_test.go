package incoming

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdesk/internal/core/apperror"
	"stockdesk/internal/domain/history"
)

type fakeClient struct {
	mu      sync.Mutex
	records map[string]*Record

	updateCalls int
	moveCalls   int
	detailCalls atomic.Int32
	inFlight    atomic.Int32
	maxInFlight atomic.Int32

	failDetail  map[string]error
	failRefetch bool
	fetches     int
}

func newFakeClient(records ...*Record) *fakeClient {
	c := &fakeClient{records: map[string]*Record{}, failDetail: map[string]error{}}
	for _, r := range records {
		c.records[r.ID] = r
	}
	return c
}

func (c *fakeClient) GetIncomingRecord(_ context.Context, recordID string) (*Record, error) {
	c.detailCalls.Add(1)
	cur := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		peak := c.maxInFlight.Load()
		if cur <= peak || c.maxInFlight.CompareAndSwap(peak, cur) {
			break
		}
	}
	// Let concurrent fetches overlap so maxInFlight is meaningful.
	time.Sleep(time.Millisecond)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetches++
	if c.failRefetch && c.fetches > 1 {
		return nil, apperror.NewUpstream("backend unavailable", nil)
	}
	if err, ok := c.failDetail[recordID]; ok {
		return nil, err
	}
	r, ok := c.records[recordID]
	if !ok {
		return nil, apperror.NewNotFound("incoming record", recordID)
	}
	clone := *r
	clone.Items = append([]Item(nil), r.Items...)
	return &clone, nil
}

func (c *fakeClient) ListIncomingItems(ctx context.Context, recordID string) ([]Item, error) {
	r, err := c.GetIncomingRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	return r.Items, nil
}

func (c *fakeClient) UpdateItemRejectedShort(ctx context.Context, recordID string, edit ItemEdit) (*Record, error) {
	c.mu.Lock()
	c.updateCalls++
	r := c.records[recordID]
	for i := range r.Items {
		if r.Items[i].ItemID != edit.ItemID {
			continue
		}
		if edit.Rejected != nil {
			r.Items[i].Rejected = *edit.Rejected
		}
		if edit.Short != nil {
			r.Items[i].Short = *edit.Short
		}
		r.Items[i].UpdatedAt = r.Items[i].UpdatedAt.Add(time.Minute)
	}
	c.mu.Unlock()
	return c.GetIncomingRecord(ctx, recordID)
}

func (c *fakeClient) MoveReceivedToRejected(_ context.Context, recordID, itemID string, quantity int64, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.moveCalls++
	r := c.records[recordID]
	for i := range r.Items {
		if r.Items[i].ItemID == itemID {
			r.Items[i].Rejected += quantity
			r.Items[i].UpdatedAt = r.Items[i].UpdatedAt.Add(time.Minute)
		}
	}
	return nil
}

func (c *fakeClient) ListIncomingHistory(_ context.Context, skuCode string) ([]Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var headers []Record
	for _, r := range c.records {
		for _, item := range r.Items {
			if item.SKUCode == skuCode {
				headers = append(headers, Record{ID: r.ID, UpdatedAt: r.UpdatedAt})
				break
			}
		}
	}
	return headers, nil
}

type memStore struct {
	mu      sync.Mutex
	entries []history.Record
}

func (s *memStore) Append(_ context.Context, entries []history.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *memStore) ListBySKU(_ context.Context, skuCode string) ([]history.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []history.Record
	for _, e := range s.entries {
		if e.SKUCode == skuCode {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) ListByRecord(_ context.Context, recordID string) ([]history.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []history.Record
	for _, e := range s.entries {
		if e.RecordID == recordID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func testRecord(id string, rejected, short int64) *Record {
	return &Record{
		ID:            id,
		InvoiceNumber: "INV-" + id,
		VendorName:    "Acme Supply",
		ReceivingDate: "2026-08-20",
		UpdatedAt:     time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		Items: []Item{{
			ItemID:        "item-1",
			SKUID:         "sku-1",
			SKUCode:       "WIDGET-01",
			ItemName:      "Widget",
			TotalQuantity: 120,
			Received:      100,
			Rejected:      rejected,
			Short:         short,
			UpdatedAt:     time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		}},
	}
}

func int64Ptr(v int64) *int64 { return &v }

func TestUpdateRejectedShort_ValidationBlocksMutation(t *testing.T) {
	client := newFakeClient(testRecord("rec-1", 10, 20))
	svc := NewService(client, history.NewSynthesizer(), nil, 4)

	// Increasing rejected in the reduce-only workflow is illegal; the
	// upstream mutation must never be issued.
	_, err := svc.UpdateRejectedShort(context.Background(), "rec-1", "item-1", int64Ptr(15), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can only be reduced")
	assert.Equal(t, 0, client.updateCalls)
}

func TestUpdateRejectedShort_AppliesReduction(t *testing.T) {
	client := newFakeClient(testRecord("rec-1", 10, 20))
	store := &memStore{}
	svc := NewService(client, history.NewSynthesizer(), store, 4)

	updated, err := svc.UpdateRejectedShort(context.Background(), "rec-1", "item-1", int64Ptr(5), int64Ptr(15))
	require.NoError(t, err)
	assert.Equal(t, 1, client.updateCalls)

	item, ok := updated.FindItem("item-1")
	require.True(t, ok)
	assert.Equal(t, int64(5), item.Rejected)
	assert.Equal(t, int64(15), item.Short)

	// The mutated record was observed into the audit log.
	assert.Equal(t, 1, store.count())
}

func TestUpdateRejectedShort_NilEditsRejected(t *testing.T) {
	client := newFakeClient(testRecord("rec-1", 10, 20))
	svc := NewService(client, history.NewSynthesizer(), nil, 4)

	_, err := svc.UpdateRejectedShort(context.Background(), "rec-1", "item-1", nil, nil)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNoChanges, appErr.Code)
	assert.Equal(t, int32(0), client.detailCalls.Load())
}

func TestUpdateRejectedShort_UnknownItem(t *testing.T) {
	client := newFakeClient(testRecord("rec-1", 10, 20))
	svc := NewService(client, history.NewSynthesizer(), nil, 4)

	_, err := svc.UpdateRejectedShort(context.Background(), "rec-1", "missing", int64Ptr(5), nil)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestMoveToRejected(t *testing.T) {
	client := newFakeClient(testRecord("rec-1", 10, 20))
	svc := NewService(client, history.NewSynthesizer(), nil, 4)

	updated, err := svc.MoveToRejected(context.Background(), "rec-1", "item-1", 5, "2026-08-25")
	require.NoError(t, err)
	assert.Equal(t, 1, client.moveCalls)

	item, ok := updated.FindItem("item-1")
	require.True(t, ok)
	assert.Equal(t, int64(15), item.Rejected)
}

func TestMoveToRejected_ExceedsReceived(t *testing.T) {
	client := newFakeClient(testRecord("rec-1", 10, 20))
	svc := NewService(client, history.NewSynthesizer(), nil, 4)

	_, err := svc.MoveToRejected(context.Background(), "rec-1", "item-1", 95, "2026-08-25")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds received quantity")
	assert.Equal(t, 0, client.moveCalls)
}

func TestMoveToRejected_RefetchFailureDegrades(t *testing.T) {
	client := newFakeClient(testRecord("rec-1", 10, 20))
	client.failRefetch = true
	svc := NewService(client, history.NewSynthesizer(), nil, 4)

	// The mutation succeeded; a failed re-fetch returns the pre-move state
	// rather than an error.
	record, err := svc.MoveToRejected(context.Background(), "rec-1", "item-1", 5, "2026-08-25")
	require.NoError(t, err)
	assert.Equal(t, 1, client.moveCalls)

	item, ok := record.FindItem("item-1")
	require.True(t, ok)
	assert.Equal(t, int64(10), item.Rejected)
}

func TestHistory_SynthesizesAndPersists(t *testing.T) {
	client := newFakeClient(testRecord("rec-1", 0, 20), testRecord("rec-2", 5, 0))
	store := &memStore{}
	svc := NewService(client, history.NewSynthesizer(), store, 4)

	log, err := svc.History(context.Background(), "WIDGET-01")
	require.NoError(t, err)
	assert.Len(t, log, 2)
	assert.Equal(t, 2, store.count())

	// Unchanged data on a second pass adds nothing.
	log, err = svc.History(context.Background(), "WIDGET-01")
	require.NoError(t, err)
	assert.Len(t, log, 2)
	assert.Equal(t, 2, store.count())
}

func TestHistory_DetectsChangeBetweenFetches(t *testing.T) {
	rec := testRecord("rec-1", 0, 20)
	client := newFakeClient(rec)
	store := &memStore{}
	svc := NewService(client, history.NewSynthesizer(), store, 4)

	log, err := svc.History(context.Background(), "WIDGET-01")
	require.NoError(t, err)
	require.Len(t, log, 1)

	client.mu.Lock()
	client.records["rec-1"].Items[0].Rejected = 5
	client.records["rec-1"].Items[0].UpdatedAt = rec.Items[0].UpdatedAt.Add(time.Hour)
	client.mu.Unlock()

	log, err = svc.History(context.Background(), "WIDGET-01")
	require.NoError(t, err)
	assert.Len(t, log, 2)
	assert.Equal(t, int64(5), log[0].Rejected)
	assert.Equal(t, 2, store.count())
}

func TestHistory_FailedExpansionSkipsRecord(t *testing.T) {
	client := newFakeClient(testRecord("rec-1", 0, 20), testRecord("rec-2", 5, 0))
	client.failDetail["rec-2"] = apperror.NewUpstream("backend unavailable", nil)
	svc := NewService(client, history.NewSynthesizer(), &memStore{}, 4)

	log, err := svc.History(context.Background(), "WIDGET-01")
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, "rec-1", log[0].RecordID)
}

func TestHistory_FiltersForeignSKUs(t *testing.T) {
	rec := testRecord("rec-1", 0, 20)
	rec.Items = append(rec.Items, Item{
		ItemID: "item-2", SKUCode: "OTHER-99", Received: 10, TotalQuantity: 10,
	})
	client := newFakeClient(rec)
	svc := NewService(client, history.NewSynthesizer(), nil, 4)

	log, err := svc.History(context.Background(), "WIDGET-01")
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, "WIDGET-01", log[0].SKUCode)
}

func TestHistory_BoundedConcurrency(t *testing.T) {
	var records []*Record
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		records = append(records, testRecord("rec-"+id, 0, 0))
	}
	client := newFakeClient(records...)
	svc := NewService(client, history.NewSynthesizer(), nil, 2)

	_, err := svc.History(context.Background(), "WIDGET-01")
	require.NoError(t, err)
	assert.LessOrEqual(t, client.maxInFlight.Load(), int32(2))
}

func TestHistory_EmptySKU(t *testing.T) {
	svc := NewService(newFakeClient(), history.NewSynthesizer(), nil, 4)
	_, err := svc.History(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}
