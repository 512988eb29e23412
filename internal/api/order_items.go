package api

import (
	"context"
	"fmt"

	"tableside/internal/domain"
	"tableside/internal/dto"
)

func (c *Client) OrderItemsByOrder(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	var out []domain.OrderItem
	if err := c.get(ctx, fmt.Sprintf("/api/order-items/order/%d", orderID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddOrderItem(ctx context.Context, orderID int64, req dto.CreateOrderItemRequest) (*domain.OrderItem, error) {
	var out domain.OrderItem
	if err := c.post(ctx, fmt.Sprintf("/api/order-items/order/%d", orderID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteOrderItem(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/order-items/%d", id))
}
