// Package dashboard aggregates reconciled quantities into per-SKU and
// overall summaries.
package dashboard

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"stockdesk/internal/domain/history"
	"stockdesk/internal/domain/reconcile"
)

// SKUSummary is the reconciled position of one SKU.
type SKUSummary struct {
	SKUCode  string `json:"skuCode"`
	ItemName string `json:"itemName"`

	TotalQuantity int64 `json:"totalQuantity"`
	Received      int64 `json:"received"`
	Rejected      int64 `json:"rejected"`
	Short         int64 `json:"short"`
	Available     int64 `json:"available"`

	// FillRate is received/totalQuantity as a percentage.
	FillRate decimal.Decimal `json:"fillRate"`

	// RejectRate is rejected/received as a percentage.
	RejectRate decimal.Decimal `json:"rejectRate"`
}

// Summary is the overall dashboard view.
type Summary struct {
	Records int `json:"records"`
	Items   int `json:"items"`

	TotalQuantity  int64 `json:"totalQuantity"`
	TotalReceived  int64 `json:"totalReceived"`
	TotalRejected  int64 `json:"totalRejected"`
	TotalShort     int64 `json:"totalShort"`
	TotalAvailable int64 `json:"totalAvailable"`

	FillRate decimal.Decimal `json:"fillRate"`

	SKUs []SKUSummary `json:"skus"`
}

// HistorySource provides the synthesized change log per SKU.
type HistorySource interface {
	History(ctx context.Context, skuCode string) ([]history.Record, error)
}

// Service builds dashboard summaries from the change log: the latest
// entry per (record, item) pair is the current state of that line item.
type Service struct {
	source HistorySource
}

// NewService creates a dashboard service.
func NewService(source HistorySource) *Service {
	return &Service{source: source}
}

// Overview aggregates the given SKUs into one summary.
func (s *Service) Overview(ctx context.Context, skuCodes []string) (*Summary, error) {
	var entries []history.Record
	for _, sku := range skuCodes {
		log, err := s.source.History(ctx, sku)
		if err != nil {
			return nil, err
		}
		entries = append(entries, log...)
	}
	summary := Summarize(entries)
	return &summary, nil
}

// Summarize reduces change-log entries to current positions and
// aggregates them. Entries must be sorted newest-first per the
// synthesizer contract; the first occurrence of a (record, item) pair
// wins.
func Summarize(entries []history.Record) Summary {
	type pairKey struct{ recordID, itemID string }

	seenPairs := make(map[pairKey]struct{})
	seenRecords := make(map[string]struct{})
	bySKU := make(map[string]*SKUSummary)

	var summary Summary
	for _, entry := range entries {
		key := pairKey{entry.RecordID, entry.ItemID}
		if _, ok := seenPairs[key]; ok {
			continue
		}
		seenPairs[key] = struct{}{}
		seenRecords[entry.RecordID] = struct{}{}

		available := reconcile.ComputeAvailable(entry.Received, entry.Rejected, entry.TotalQuantity, entry.Short)

		sku, ok := bySKU[entry.SKUCode]
		if !ok {
			sku = &SKUSummary{SKUCode: entry.SKUCode, ItemName: entry.ItemName}
			bySKU[entry.SKUCode] = sku
		}
		sku.TotalQuantity += entry.TotalQuantity
		sku.Received += entry.Received
		sku.Rejected += entry.Rejected
		sku.Short += entry.Short
		sku.Available += available

		summary.Items++
		summary.TotalQuantity += entry.TotalQuantity
		summary.TotalReceived += entry.Received
		summary.TotalRejected += entry.Rejected
		summary.TotalShort += entry.Short
		summary.TotalAvailable += available
	}

	summary.Records = len(seenRecords)
	summary.FillRate = rate(summary.TotalReceived, summary.TotalQuantity)

	summary.SKUs = make([]SKUSummary, 0, len(bySKU))
	for _, sku := range bySKU {
		sku.FillRate = rate(sku.Received, sku.TotalQuantity)
		sku.RejectRate = rate(sku.Rejected, sku.Received)
		summary.SKUs = append(summary.SKUs, *sku)
	}
	sort.Slice(summary.SKUs, func(i, j int) bool {
		return summary.SKUs[i].SKUCode < summary.SKUs[j].SKUCode
	})

	return summary
}

var hundred = decimal.NewFromInt(100)

// rate returns part/whole as a percentage rounded to two places.
// Zero whole yields zero rather than a division error.
func rate(part, whole int64) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).
		Div(decimal.NewFromInt(whole)).
		Mul(hundred).
		Round(2)
}
