// Package reports renders reconciled incoming data as CSV exports.
// Exports reflect the same validated numbers the API serves; no
// independent arithmetic happens here.
package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"stockdesk/internal/domain/history"
	"stockdesk/internal/domain/incoming"
)

// RecordSource provides incoming records and their change log.
type RecordSource interface {
	GetRecord(ctx context.Context, recordID string) (*incoming.Record, error)
	History(ctx context.Context, skuCode string) ([]history.Record, error)
}

// Service renders reports.
type Service struct {
	source RecordSource
}

// NewService creates a report service.
func NewService(source RecordSource) *Service {
	return &Service{source: source}
}

// WriteIncomingCSV writes one row per line item of the record.
func (s *Service) WriteIncomingCSV(ctx context.Context, w io.Writer, recordID string) error {
	record, err := s.source.GetRecord(ctx, recordID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{
		"invoice_number", "vendor", "sku_code", "item_name",
		"total_quantity", "received", "rejected", "short", "available",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, item := range record.Items {
		row := []string{
			record.InvoiceNumber,
			record.VendorName,
			item.SKUCode,
			item.ItemName,
			formatInt(item.TotalQuantity),
			formatInt(item.Received),
			formatInt(item.Rejected),
			formatInt(item.Short),
			formatInt(item.Available()),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteHistoryCSV writes the synthesized change log for a SKU,
// newest entry first.
func (s *Service) WriteHistoryCSV(ctx context.Context, w io.Writer, skuCode string) error {
	log, err := s.source.History(ctx, skuCode)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{
		"updated_at", "invoice_number", "receiving_date", "sku_code",
		"total_quantity", "received", "rejected", "short",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, entry := range log {
		row := []string{
			formatTime(entry.UpdatedAt),
			entry.InvoiceNumber,
			entry.ReceivingDate,
			entry.SKUCode,
			formatInt(entry.TotalQuantity),
			formatInt(entry.Received),
			formatInt(entry.Rejected),
			formatInt(entry.Short),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatInt(v int64) string {
	return fmt.Sprintf("%d", v)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
