package domain

import "time"

type Order struct {
	ID            int64      `json:"id"`
	TableID       int64      `json:"tableId"`
	UserID        int64      `json:"userId"`
	OrderState    OrderState `json:"orderState"`
	CustomerCount int        `json:"customerCount"`
	TotalAmount   float64    `json:"totalAmount"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type OrderState string

const (
	OrderPending   OrderState = "PENDING"
	OrderConfirmed OrderState = "CONFIRMED"
	OrderPreparing OrderState = "PREPARING"
	OrderReady     OrderState = "READY"
	OrderServed    OrderState = "SERVED"
	OrderCompleted OrderState = "COMPLETED"
	OrderCancelled OrderState = "CANCELLED"
)

func (s OrderState) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderPreparing, OrderReady,
		OrderServed, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Terminal reports whether the state ends an order's life on a table.
func (s OrderState) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

func (o Order) Active() bool {
	return !o.OrderState.Terminal()
}

// ActiveOrder returns the first non-terminal order in the slice, or nil.
// The backend guarantees at most one active order per table, so the first
// match is the table's current order.
func ActiveOrder(orders []Order) *Order {
	for i := range orders {
		if orders[i].Active() {
			return &orders[i]
		}
	}
	return nil
}
