package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/plumber-cd/ez-desk/internal/domain"
)

func kindPath(kind domain.Kind) string {
	return "/api/" + url.PathEscape(string(kind))
}

func recordPath(kind domain.Kind, id string) string {
	return kindPath(kind) + "/" + url.PathEscape(id)
}

// Health checks that the backend is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.Get(ctx, "/api/healthz", nil)
}

// List fetches every record of kind.
func (c *Client) List(ctx context.Context, kind domain.Kind) ([]domain.Record, error) {
	var raw []json.RawMessage
	if err := c.Get(ctx, kindPath(kind), &raw); err != nil {
		return nil, err
	}
	records := make([]domain.Record, 0, len(raw))
	for i, item := range raw {
		r, err := decodeRecord(kind, item)
		if err != nil {
			return nil, fmt.Errorf("decode %s[%d]: %w", kind, i, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// Create stores a new record. The backend assigns the ID.
func (c *Client) Create(ctx context.Context, r domain.Record) (domain.Record, error) {
	return sendRecord(r.Kind(), func(out *json.RawMessage) error {
		return c.Post(ctx, kindPath(r.Kind()), r, out)
	})
}

// Update replaces an existing record.
func (c *Client) Update(ctx context.Context, r domain.Record) (domain.Record, error) {
	return sendRecord(r.Kind(), func(out *json.RawMessage) error {
		return c.Put(ctx, recordPath(r.Kind(), r.RawID()), r, out)
	})
}

// PatchRecord changes only the given fields of a record.
func (c *Client) PatchRecord(ctx context.Context, kind domain.Kind, id string, values domain.Values) (domain.Record, error) {
	return sendRecord(kind, func(out *json.RawMessage) error {
		return c.Patch(ctx, recordPath(kind, id), values, out)
	})
}

// DeleteRecord removes a record.
func (c *Client) DeleteRecord(ctx context.Context, kind domain.Kind, id string) error {
	return c.Delete(ctx, recordPath(kind, id))
}

func sendRecord(kind domain.Kind, call func(out *json.RawMessage) error) (domain.Record, error) {
	var raw json.RawMessage
	if err := call(&raw); err != nil {
		return nil, err
	}
	return decodeRecord(kind, raw)
}

func decodeRecord(kind domain.Kind, data []byte) (domain.Record, error) {
	r := domain.NewRecord(kind)
	if r == nil {
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, err
	}
	return r, nil
}
