package api

import (
	"context"
	"fmt"
	"net/url"

	"tableside/internal/domain"
	"tableside/internal/dto"
)

func (c *Client) OrdersByTable(ctx context.Context, tableID int64) ([]domain.Order, error) {
	var out []domain.Order
	if err := c.get(ctx, fmt.Sprintf("/api/orders/table/%d", tableID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Order(ctx context.Context, id int64) (*domain.Order, error) {
	var out domain.Order
	if err := c.get(ctx, fmt.Sprintf("/api/orders/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (*domain.Order, error) {
	var out domain.Order
	if err := c.post(ctx, "/api/orders", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateOrderState(ctx context.Context, id int64, state domain.OrderState) (*domain.Order, error) {
	var out domain.Order
	query := url.Values{"state": {string(state)}}
	if err := c.patch(ctx, fmt.Sprintf("/api/orders/%d/state", id), query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CalculateOrderTotal asks the backend to recompute the order's totalAmount
// from its persisted items. Totals are never computed client-side.
func (c *Client) CalculateOrderTotal(ctx context.Context, id int64) (*domain.Order, error) {
	var out domain.Order
	if err := c.patch(ctx, fmt.Sprintf("/api/orders/%d/calculate-total", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
