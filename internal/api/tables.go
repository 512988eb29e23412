package api

import (
	"context"
	"fmt"
	"net/url"

	"tableside/internal/domain"
)

func (c *Client) Tables(ctx context.Context) ([]domain.Table, error) {
	var out []domain.Table
	if err := c.get(ctx, "/api/tables", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Table(ctx context.Context, id int64) (*domain.Table, error) {
	var out domain.Table
	if err := c.get(ctx, fmt.Sprintf("/api/tables/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTableState(ctx context.Context, id int64, state domain.TableState) (*domain.Table, error) {
	var out domain.Table
	query := url.Values{"state": {string(state)}}
	if err := c.patch(ctx, fmt.Sprintf("/api/tables/%d/state", id), query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AssignOrderToTable(ctx context.Context, tableID, orderID int64) (*domain.Table, error) {
	var out domain.Table
	if err := c.patch(ctx, fmt.Sprintf("/api/tables/%d/assign-order/%d", tableID, orderID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
