package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"stockdesk/internal/core/id"
	"stockdesk/internal/domain/history"
	"stockdesk/internal/domain/incoming"
)

const historyTable = "history_entries"

// CompressionAlgo specifies how a stored snapshot payload is encoded.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// historyRow is the table shape of one change-log entry.
type historyRow struct {
	ID            id.ID      `db:"id"`
	UniqueKey     string     `db:"unique_key"`
	RecordID      string     `db:"record_id"`
	ItemID        string     `db:"item_id"`
	SKUID         string     `db:"sku_id"`
	SKUCode       string     `db:"sku_code"`
	ItemName      string     `db:"item_name"`
	VendorName    string     `db:"vendor_name"`
	InvoiceNumber string     `db:"invoice_number"`
	ChallanNumber string     `db:"challan_number"`
	ChallanDate   string     `db:"challan_date"`
	InvoiceDate   string     `db:"invoice_date"`
	ReceivingDate string     `db:"receiving_date"`
	TotalQuantity int64      `db:"total_quantity"`
	Received      int64      `db:"received"`
	Rejected      int64      `db:"rejected"`
	Short         int64      `db:"short"`
	UpdatedAt     *time.Time `db:"updated_at"`
	ObservedAt    time.Time  `db:"observed_at"`
}

func (r historyRow) toRecord() history.Record {
	rec := history.Record{
		UniqueKey:  r.UniqueKey,
		ObservedAt: r.ObservedAt,
		Snapshot: history.Snapshot{
			RecordID:      r.RecordID,
			ItemID:        r.ItemID,
			SKUID:         r.SKUID,
			SKUCode:       r.SKUCode,
			ItemName:      r.ItemName,
			VendorName:    r.VendorName,
			InvoiceNumber: r.InvoiceNumber,
			ChallanNumber: r.ChallanNumber,
			ChallanDate:   r.ChallanDate,
			InvoiceDate:   r.InvoiceDate,
			ReceivingDate: r.ReceivingDate,
			TotalQuantity: r.TotalQuantity,
			Received:      r.Received,
			Rejected:      r.Rejected,
			Short:         r.Short,
		},
	}
	if r.UpdatedAt != nil {
		rec.UpdatedAt = *r.UpdatedAt
	}
	return rec
}

var historyColumns = []string{
	"unique_key", "record_id", "item_id", "sku_id", "sku_code",
	"item_name", "vendor_name", "invoice_number", "challan_number",
	"challan_date", "invoice_date", "receiving_date",
	"total_quantity", "received", "rejected", "short",
	"updated_at", "observed_at",
}

// HistoryRepo persists synthesized change-log entries, moving the audit
// trail out of browser memory and into Postgres. Each row also stores the
// full snapshot JSON, zstd-compressed past a size threshold.
type HistoryRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	compressThreshold int
}

// Compile-time check that HistoryRepo implements incoming.HistoryStore.
var _ incoming.HistoryStore = (*HistoryRepo)(nil)

// NewHistoryRepo creates a history repository.
func NewHistoryRepo(txm *TxManager) (*HistoryRepo, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &HistoryRepo{
		txm:               txm,
		builder:           squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 512,
	}, nil
}

// Append inserts entries in one transaction. Replayed unique keys are
// ignored so concurrent observers cannot duplicate the log.
func (r *HistoryRepo) Append(ctx context.Context, entries []history.Record) error {
	if len(entries) == 0 {
		return nil
	}

	return r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := r.txm.GetQuerier(ctx)
		for _, entry := range entries {
			snapshot, algo, err := r.encodeSnapshot(entry)
			if err != nil {
				return err
			}

			var updatedAt *time.Time
			if !entry.UpdatedAt.IsZero() {
				t := entry.UpdatedAt
				updatedAt = &t
			}

			q := r.builder.Insert(historyTable).
				Columns(append([]string{"id"}, append(historyColumns, "snapshot", "compression_algo")...)...).
				Values(
					id.New(), entry.UniqueKey, entry.RecordID, entry.ItemID,
					entry.SKUID, entry.SKUCode, entry.ItemName, entry.VendorName,
					entry.InvoiceNumber, entry.ChallanNumber, entry.ChallanDate,
					entry.InvoiceDate, entry.ReceivingDate,
					entry.TotalQuantity, entry.Received, entry.Rejected, entry.Short,
					updatedAt, entry.ObservedAt,
					snapshot, string(algo),
				).
				Suffix("ON CONFLICT (unique_key) DO NOTHING")

			sql, args, err := q.ToSql()
			if err != nil {
				return fmt.Errorf("build insert: %w", err)
			}
			if _, err := querier.Exec(ctx, sql, args...); err != nil {
				return fmt.Errorf("insert history entry: %w", err)
			}
		}
		return nil
	})
}

// ListBySKU returns all persisted entries for a SKU, newest first.
func (r *HistoryRepo) ListBySKU(ctx context.Context, skuCode string) ([]history.Record, error) {
	return r.list(ctx, squirrel.Eq{"sku_code": skuCode})
}

// ListByRecord returns all persisted entries for one receipt, newest first.
func (r *HistoryRepo) ListByRecord(ctx context.Context, recordID string) ([]history.Record, error) {
	return r.list(ctx, squirrel.Eq{"record_id": recordID})
}

func (r *HistoryRepo) list(ctx context.Context, where squirrel.Eq) ([]history.Record, error) {
	q := r.builder.Select(historyColumns...).
		Column("id").
		From(historyTable).
		Where(where).
		OrderBy("updated_at DESC NULLS LAST", "receiving_date DESC", "invoice_number ASC", "unique_key DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var rows []historyRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select history entries: %w", err)
	}

	records := make([]history.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}

// Snapshot returns the stored snapshot JSON for an entry, decompressing
// when needed.
func (r *HistoryRepo) Snapshot(ctx context.Context, uniqueKey string) (json.RawMessage, error) {
	q := r.builder.Select("snapshot", "compression_algo").
		From(historyTable).
		Where(squirrel.Eq{"unique_key": uniqueKey})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var payload []byte
	var algo string
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&payload, &algo); err != nil {
		return nil, fmt.Errorf("select snapshot: %w", err)
	}

	if CompressionAlgo(algo) == CompressionZstd {
		decoded, err := r.decoder.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress snapshot: %w", err)
		}
		return decoded, nil
	}
	return payload, nil
}

func (r *HistoryRepo) encodeSnapshot(entry history.Record) ([]byte, CompressionAlgo, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, CompressionNone, fmt.Errorf("marshal snapshot: %w", err)
	}
	if len(payload) > r.compressThreshold {
		return r.encoder.EncodeAll(payload, nil), CompressionZstd, nil
	}
	return payload, CompressionNone, nil
}
