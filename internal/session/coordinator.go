package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tableside/internal/domain"
	"tableside/internal/dto"
	apperrors "tableside/internal/errors"
)

// State is the order-lifecycle position of a table-detail session.
type State int

const (
	// StateNoOrder: the table has no active order.
	StateNoOrder State = iota
	// StateCreatingOrder: a create-order request is in flight.
	StateCreatingOrder
	// StateOrderActive: an order exists; items can be staged and sent.
	StateOrderActive
)

func (s State) String() string {
	switch s {
	case StateNoOrder:
		return "NO_ORDER"
	case StateCreatingOrder:
		return "CREATING_ORDER"
	case StateOrderActive:
		return "ORDER_ACTIVE"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// PendingItem is a menu item staged locally, not yet submitted. The full
// MenuItem is kept so the send can use the price seen at staging time.
type PendingItem struct {
	MenuItem domain.MenuItem
	Quantity int
}

type TableService interface {
	Table(ctx context.Context, id int64) (*domain.Table, error)
}

type OrderService interface {
	OrdersByTable(ctx context.Context, tableID int64) ([]domain.Order, error)
	CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (*domain.Order, error)
}

type OrderItemService interface {
	OrderItemsByOrder(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
	AddOrderItem(ctx context.Context, orderID int64, req dto.CreateOrderItemRequest) (*domain.OrderItem, error)
	DeleteOrderItem(ctx context.Context, id int64) error
}

// Coordinator mediates between one table and its order: it discovers the
// active order, stages a local pending cart, and commits the cart to the
// server as order line items. Totals always come back from the server; the
// coordinator never computes them.
//
// A Coordinator belongs to a single table-detail session and must not be
// shared across goroutines. The pending list is never persisted.
//
// Known gap: nothing reconciles committed items added by another staff
// member between staging and sending. There is no version check; the other
// session's rows simply show up on the next refresh.
type Coordinator struct {
	tables TableService
	orders OrderService
	items  OrderItemService
	logger *zap.Logger

	userID    int64
	state     State
	table     *domain.Table
	order     *domain.Order
	committed []domain.OrderItem
	pending   []PendingItem
}

func New(tables TableService, orders OrderService, items OrderItemService, userID int64, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		tables: tables,
		orders: orders,
		items:  items,
		userID: userID,
		logger: logger,
		state:  StateNoOrder,
	}
}

// Load binds the coordinator to a table: fetches the table, its orders, and
// the committed items of the active order, if any. Any previously staged
// items are discarded; the pending list belongs to one table session only.
func (c *Coordinator) Load(ctx context.Context, tableID int64) error {
	table, err := c.tables.Table(ctx, tableID)
	if err != nil {
		return fmt.Errorf("loading table %d: %w", tableID, err)
	}

	orders, err := c.orders.OrdersByTable(ctx, tableID)
	if err != nil {
		return fmt.Errorf("loading orders for table %d: %w", tableID, err)
	}

	c.table = table
	c.order = domain.ActiveOrder(orders)
	c.pending = nil
	c.committed = nil

	if c.order == nil {
		c.state = StateNoOrder
		c.logger.Debug("table loaded, no active order", zap.Int64("tableId", tableID))
		return nil
	}

	c.state = StateOrderActive
	committed, err := c.items.OrderItemsByOrder(ctx, c.order.ID)
	if err != nil {
		return fmt.Errorf("loading items for order %d: %w", c.order.ID, err)
	}
	c.committed = committed

	c.logger.Debug("table loaded",
		zap.Int64("tableId", tableID),
		zap.Int64("orderId", c.order.ID),
		zap.Int("committedItems", len(committed)))
	return nil
}

// AddPendingItem stages a menu item locally. Adding an item that is already
// staged increments its quantity instead of duplicating the entry. A
// quantity below 1 is a no-op. No network effect.
func (c *Coordinator) AddPendingItem(item domain.MenuItem, quantity int) {
	if quantity < 1 {
		return
	}
	for i := range c.pending {
		if c.pending[i].MenuItem.ID == item.ID {
			c.pending[i].Quantity += quantity
			return
		}
	}
	c.pending = append(c.pending, PendingItem{MenuItem: item, Quantity: quantity})
}

// RemovePendingItem drops a staged entry. Removing an id that is not staged
// is a no-op. No network effect.
func (c *Coordinator) RemovePendingItem(menuItemID int64) {
	for i := range c.pending {
		if c.pending[i].MenuItem.ID == menuItemID {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

// SetPendingQuantity updates a staged entry's quantity, clamping to a
// minimum of 1. Unknown ids are a no-op. No network effect.
func (c *Coordinator) SetPendingQuantity(menuItemID int64, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	for i := range c.pending {
		if c.pending[i].MenuItem.ID == menuItemID {
			c.pending[i].Quantity = quantity
			return
		}
	}
}

// CreateOrder opens a new order for the loaded table with the given customer
// count. Rejected while an order is already active: the backend permits one
// active order per table and this guard keeps the session from ever racing
// its own table.
func (c *Coordinator) CreateOrder(ctx context.Context, customerCount int) error {
	if c.state == StateOrderActive {
		return apperrors.NewConflictError("table already has an active order")
	}
	if c.state == StateCreatingOrder {
		return apperrors.NewConflictError("order creation already in progress")
	}
	if c.table == nil || c.userID == 0 {
		return apperrors.NewValidationError("table and user are required to create an order")
	}
	if customerCount < 1 {
		customerCount = 1
	}

	c.state = StateCreatingOrder
	order, err := c.orders.CreateOrder(ctx, dto.CreateOrderRequest{
		TableID:       c.table.ID,
		UserID:        c.userID,
		OrderState:    domain.OrderPending,
		CustomerCount: customerCount,
	})
	if err != nil {
		c.state = StateNoOrder
		c.logger.Warn("order creation failed", zap.Int64("tableId", c.table.ID), zap.Error(err))
		return fmt.Errorf("creating order: %w", err)
	}

	c.order = order
	c.committed = nil
	c.state = StateOrderActive
	c.logger.Info("order created",
		zap.Int64("tableId", c.table.ID),
		zap.Int64("orderId", order.ID),
		zap.Int("customerCount", customerCount))

	// Server truth for the table card (currentOrderId, OCCUPIED state).
	c.refreshTable(ctx)
	return nil
}

// SendPendingItems commits every staged item to the active order, one
// request per item, in insertion order. The sequencing is deliberate: a
// failure partway leaves a clean boundary, with earlier items committed
// server-side and the failed item plus everything after it still staged for
// retry. Nothing is rolled back and nothing retries automatically.
//
// On full success the pending list is cleared and committed items and the
// order summary are re-fetched so totals reflect the server.
func (c *Coordinator) SendPendingItems(ctx context.Context) error {
	if c.state != StateOrderActive || c.order == nil {
		c.logger.Debug("send skipped, no active order")
		return nil
	}
	if len(c.pending) == 0 {
		c.logger.Debug("send skipped, nothing staged")
		return nil
	}

	orderID := c.order.ID
	for i, pending := range c.pending {
		_, err := c.items.AddOrderItem(ctx, orderID, dto.CreateOrderItemRequest{
			MenuItemID: pending.MenuItem.ID,
			Quantity:   pending.Quantity,
			UnitPrice:  pending.MenuItem.Price,
		})
		if err != nil {
			// Items before i are committed; drop them from the staging
			// area so a retry cannot submit them twice.
			c.pending = append([]PendingItem(nil), c.pending[i:]...)
			c.logger.Warn("send failed partway",
				zap.Int64("orderId", orderID),
				zap.Int64("menuItemId", pending.MenuItem.ID),
				zap.Int("committedBeforeFailure", i),
				zap.Int("stillPending", len(c.pending)),
				zap.Error(err))
			return fmt.Errorf("adding item %d to order %d: %w", pending.MenuItem.ID, orderID, err)
		}
	}

	sent := len(c.pending)
	c.pending = nil
	c.logger.Info("pending items sent", zap.Int64("orderId", orderID), zap.Int("itemCount", sent))

	c.refreshOrder(ctx)
	return nil
}

// RemoveCommittedItem deletes a persisted order item on the server, then
// re-fetches committed items and the order summary.
func (c *Coordinator) RemoveCommittedItem(ctx context.Context, orderItemID int64) error {
	if c.state != StateOrderActive || c.order == nil {
		c.logger.Debug("remove skipped, no active order")
		return nil
	}
	if err := c.items.DeleteOrderItem(ctx, orderItemID); err != nil {
		return fmt.Errorf("deleting order item %d: %w", orderItemID, err)
	}
	c.logger.Info("committed item removed", zap.Int64("orderItemId", orderItemID), zap.Int64("orderId", c.order.ID))
	c.refreshOrder(ctx)
	return nil
}

// Refresh re-reads the table's orders and the active order's items from the
// server.
func (c *Coordinator) Refresh(ctx context.Context) error {
	if c.table == nil {
		return nil
	}

	orders, err := c.orders.OrdersByTable(ctx, c.table.ID)
	if err != nil {
		return fmt.Errorf("refreshing orders for table %d: %w", c.table.ID, err)
	}
	c.order = domain.ActiveOrder(orders)
	if c.order == nil {
		c.state = StateNoOrder
		c.committed = nil
		return nil
	}

	c.state = StateOrderActive
	committed, err := c.items.OrderItemsByOrder(ctx, c.order.ID)
	if err != nil {
		return fmt.Errorf("refreshing items for order %d: %w", c.order.ID, err)
	}
	c.committed = committed
	return nil
}

// refreshOrder pulls server truth after a successful mutation. The mutation
// itself already succeeded, so a failed refresh only logs: the data shows up
// stale until the next refresh rather than turning a success into an error.
func (c *Coordinator) refreshOrder(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("post-mutation refresh failed", zap.Error(err))
	}
}

func (c *Coordinator) refreshTable(ctx context.Context) {
	if c.table == nil {
		return
	}
	table, err := c.tables.Table(ctx, c.table.ID)
	if err != nil {
		c.logger.Warn("table refresh failed", zap.Int64("tableId", c.table.ID), zap.Error(err))
		return
	}
	c.table = table
}

func (c *Coordinator) State() State { return c.state }

func (c *Coordinator) Table() *domain.Table { return c.table }

func (c *Coordinator) Order() *domain.Order { return c.order }

// HasPending reports whether staged items exist. When true, staged items
// take display precedence over committed ones.
func (c *Coordinator) HasPending() bool { return len(c.pending) > 0 }

func (c *Coordinator) PendingItems() []PendingItem {
	out := make([]PendingItem, len(c.pending))
	copy(out, c.pending)
	return out
}

func (c *Coordinator) CommittedItems() []domain.OrderItem {
	out := make([]domain.OrderItem, len(c.committed))
	copy(out, c.committed)
	return out
}
