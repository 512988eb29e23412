package dto

import "tableside/internal/domain"

type CreateOrderRequest struct {
	TableID       int64             `json:"tableId"`
	UserID        int64             `json:"userId"`
	OrderState    domain.OrderState `json:"orderState"`
	CustomerCount int               `json:"customerCount"`
}

type UpdateOrderRequest struct {
	TableID       *int64             `json:"tableId,omitempty"`
	UserID        *int64             `json:"userId,omitempty"`
	OrderState    *domain.OrderState `json:"orderState,omitempty"`
	CustomerCount *int               `json:"customerCount,omitempty"`
}

type CreateOrderItemRequest struct {
	MenuItemID int64   `json:"menuItemId"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
}
