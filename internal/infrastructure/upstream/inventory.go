package upstream

import (
	"context"
	"net/http"
	"net/url"

	"stockdesk/internal/core/apperror"
	"stockdesk/internal/domain/incoming"
)

// Compile-time check that Client implements incoming.Client.
var _ incoming.Client = (*Client)(nil)

// GetIncomingRecord fetches GET /inventory/incoming/:id.
func (c *Client) GetIncomingRecord(ctx context.Context, recordID string) (*incoming.Record, error) {
	var raw rawRecord
	if err := c.get(ctx, "/inventory/incoming/"+url.PathEscape(recordID), nil, &raw); err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("incoming record", recordID)
		}
		return nil, err
	}
	record := raw.normalize()
	if record.ID == "" {
		record.ID = recordID
	}
	return &record, nil
}

// ListIncomingItems fetches GET /inventory/incoming/:id/items.
func (c *Client) ListIncomingItems(ctx context.Context, recordID string) ([]incoming.Item, error) {
	var raws []rawItem
	if err := c.get(ctx, "/inventory/incoming/"+url.PathEscape(recordID)+"/items", nil, &raws); err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("incoming record", recordID)
		}
		return nil, err
	}
	items := make([]incoming.Item, 0, len(raws))
	for _, raw := range raws {
		items = append(items, raw.normalize())
	}
	return items, nil
}

type updateItemBody struct {
	ItemID   string `json:"itemId"`
	Rejected *int64 `json:"rejected,omitempty"`
	Short    *int64 `json:"short,omitempty"`
}

// UpdateItemRejectedShort issues PUT /inventory/incoming/:id/update-item-rejected-short.
func (c *Client) UpdateItemRejectedShort(ctx context.Context, recordID string, edit incoming.ItemEdit) (*incoming.Record, error) {
	body := updateItemBody{
		ItemID:   edit.ItemID,
		Rejected: edit.Rejected,
		Short:    edit.Short,
	}
	var raw rawRecord
	path := "/inventory/incoming/" + url.PathEscape(recordID) + "/update-item-rejected-short"
	if err := c.send(ctx, http.MethodPut, path, body, &raw); err != nil {
		return nil, err
	}
	record := raw.normalize()
	if record.ID == "" {
		record.ID = recordID
	}
	return &record, nil
}

type moveToRejectedBody struct {
	ItemID         string `json:"itemId"`
	Quantity       int64  `json:"quantity"`
	InspectionDate string `json:"inspectionDate"`
}

// MoveReceivedToRejected issues POST /inventory/incoming/:id/move-received-to-rejected.
func (c *Client) MoveReceivedToRejected(ctx context.Context, recordID, itemID string, quantity int64, inspectionDate string) error {
	body := moveToRejectedBody{
		ItemID:         itemID,
		Quantity:       quantity,
		InspectionDate: inspectionDate,
	}
	path := "/inventory/incoming/" + url.PathEscape(recordID) + "/move-received-to-rejected"
	return c.send(ctx, http.MethodPost, path, body, nil)
}

// ListIncomingHistory fetches GET /inventory/incoming/history?sku=...
// and returns receipt headers only.
func (c *Client) ListIncomingHistory(ctx context.Context, skuCode string) ([]incoming.Record, error) {
	query := url.Values{"sku": []string{skuCode}}
	var raws []rawRecord
	if err := c.get(ctx, "/inventory/incoming/history", query, &raws); err != nil {
		return nil, err
	}
	records := make([]incoming.Record, 0, len(raws))
	for _, raw := range raws {
		records = append(records, raw.normalize())
	}
	return records, nil
}

// Ping probes the backend for health checks. Any HTTP response counts as
// reachable; only transport failures report unhealthy.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
