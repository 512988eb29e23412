package domain

type OrderItem struct {
	ID         int64   `json:"id"`
	OrderID    int64   `json:"orderId"`
	MenuItemID int64   `json:"menuItemId"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	TotalPrice float64 `json:"totalPrice"`
}
