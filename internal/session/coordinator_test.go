package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tableside/internal/domain"
	"tableside/internal/dto"
	apperrors "tableside/internal/errors"
)

// Mock implementations

type mockTableService struct {
	TableFunc func(ctx context.Context, id int64) (*domain.Table, error)
}

func (m *mockTableService) Table(ctx context.Context, id int64) (*domain.Table, error) {
	return m.TableFunc(ctx, id)
}

type mockOrderService struct {
	OrdersByTableFunc func(ctx context.Context, tableID int64) ([]domain.Order, error)
	CreateOrderFunc   func(ctx context.Context, req dto.CreateOrderRequest) (*domain.Order, error)
}

func (m *mockOrderService) OrdersByTable(ctx context.Context, tableID int64) ([]domain.Order, error) {
	return m.OrdersByTableFunc(ctx, tableID)
}

func (m *mockOrderService) CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (*domain.Order, error) {
	return m.CreateOrderFunc(ctx, req)
}

type mockOrderItemService struct {
	OrderItemsByOrderFunc func(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
	AddOrderItemFunc      func(ctx context.Context, orderID int64, req dto.CreateOrderItemRequest) (*domain.OrderItem, error)
	DeleteOrderItemFunc   func(ctx context.Context, id int64) error
}

func (m *mockOrderItemService) OrderItemsByOrder(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	return m.OrderItemsByOrderFunc(ctx, orderID)
}

func (m *mockOrderItemService) AddOrderItem(ctx context.Context, orderID int64, req dto.CreateOrderItemRequest) (*domain.OrderItem, error) {
	return m.AddOrderItemFunc(ctx, orderID, req)
}

func (m *mockOrderItemService) DeleteOrderItem(ctx context.Context, id int64) error {
	return m.DeleteOrderItemFunc(ctx, id)
}

// Fixtures

var (
	burger = domain.MenuItem{ID: 10, Name: "Burger", Price: 9.50, Category: "MAIN", IsActive: true}
	soda   = domain.MenuItem{ID: 20, Name: "Soda", Price: 2.00, Category: "DRINK", IsActive: true}
	salad  = domain.MenuItem{ID: 30, Name: "Salad", Price: 6.25, Category: "STARTER", IsActive: true}
)

func newTestCoordinator(tables TableService, orders OrderService, items OrderItemService) *Coordinator {
	return New(tables, orders, items, 2, zap.NewNop())
}

// loadedCoordinator returns a coordinator in StateOrderActive on table 5,
// order 17, tracking every add-item request in sentRequests.
func loadedCoordinator(t *testing.T, sentRequests *[]dto.CreateOrderItemRequest, addErr func(call int) error) *Coordinator {
	t.Helper()

	tables := &mockTableService{
		TableFunc: func(ctx context.Context, id int64) (*domain.Table, error) {
			return &domain.Table{ID: id, Number: int(id), TableState: domain.TableOccupied}, nil
		},
	}
	orders := &mockOrderService{
		OrdersByTableFunc: func(ctx context.Context, tableID int64) ([]domain.Order, error) {
			return []domain.Order{{ID: 17, TableID: tableID, OrderState: domain.OrderPending}}, nil
		},
	}
	calls := 0
	items := &mockOrderItemService{
		OrderItemsByOrderFunc: func(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
			out := make([]domain.OrderItem, len(*sentRequests))
			for i, req := range *sentRequests {
				out[i] = domain.OrderItem{
					ID:         int64(100 + i),
					OrderID:    orderID,
					MenuItemID: req.MenuItemID,
					Quantity:   req.Quantity,
					UnitPrice:  req.UnitPrice,
				}
			}
			return out, nil
		},
		AddOrderItemFunc: func(ctx context.Context, orderID int64, req dto.CreateOrderItemRequest) (*domain.OrderItem, error) {
			calls++
			if addErr != nil {
				if err := addErr(calls); err != nil {
					return nil, err
				}
			}
			*sentRequests = append(*sentRequests, req)
			return &domain.OrderItem{ID: int64(100 + calls), OrderID: orderID, MenuItemID: req.MenuItemID, Quantity: req.Quantity, UnitPrice: req.UnitPrice}, nil
		},
		DeleteOrderItemFunc: func(ctx context.Context, id int64) error { return nil },
	}

	c := newTestCoordinator(tables, orders, items)
	require.NoError(t, c.Load(context.Background(), 5))
	require.Equal(t, StateOrderActive, c.State())
	return c
}

// Pending cart

func TestAddPendingItem_MergesByMenuItem(t *testing.T) {
	c := newTestCoordinator(nil, nil, nil)

	c.AddPendingItem(burger, 2)
	c.AddPendingItem(soda, 1)
	c.AddPendingItem(burger, 3)

	pending := c.PendingItems()
	require.Len(t, pending, 2)
	assert.Equal(t, burger.ID, pending[0].MenuItem.ID)
	assert.Equal(t, 5, pending[0].Quantity)
	assert.Equal(t, soda.ID, pending[1].MenuItem.ID)
	assert.Equal(t, 1, pending[1].Quantity)
}

func TestAddPendingItem_QuantityBelowOneIsNoop(t *testing.T) {
	c := newTestCoordinator(nil, nil, nil)

	c.AddPendingItem(burger, 0)
	c.AddPendingItem(burger, -3)

	assert.Empty(t, c.PendingItems())
	assert.False(t, c.HasPending())
}

func TestSetPendingQuantity_ClampsToOne(t *testing.T) {
	c := newTestCoordinator(nil, nil, nil)
	c.AddPendingItem(burger, 4)

	c.SetPendingQuantity(burger.ID, 0)
	assert.Equal(t, 1, c.PendingItems()[0].Quantity)

	c.SetPendingQuantity(burger.ID, -7)
	assert.Equal(t, 1, c.PendingItems()[0].Quantity)

	c.SetPendingQuantity(burger.ID, 6)
	assert.Equal(t, 6, c.PendingItems()[0].Quantity)
}

func TestSetPendingQuantity_UnknownIDIsNoop(t *testing.T) {
	c := newTestCoordinator(nil, nil, nil)
	c.AddPendingItem(burger, 2)

	c.SetPendingQuantity(999, 5)

	pending := c.PendingItems()
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Quantity)
}

func TestRemovePendingItem_Idempotent(t *testing.T) {
	c := newTestCoordinator(nil, nil, nil)
	c.AddPendingItem(burger, 2)
	c.AddPendingItem(soda, 1)

	c.RemovePendingItem(soda.ID)
	c.RemovePendingItem(soda.ID)
	c.RemovePendingItem(999)

	pending := c.PendingItems()
	require.Len(t, pending, 1)
	assert.Equal(t, burger.ID, pending[0].MenuItem.ID)
}

// Load

func TestLoad_NoActiveOrder(t *testing.T) {
	tables := &mockTableService{
		TableFunc: func(ctx context.Context, id int64) (*domain.Table, error) {
			return &domain.Table{ID: id, Number: 5, TableState: domain.TableAvailable}, nil
		},
	}
	orders := &mockOrderService{
		OrdersByTableFunc: func(ctx context.Context, tableID int64) ([]domain.Order, error) {
			return []domain.Order{{ID: 3, OrderState: domain.OrderCompleted}}, nil
		},
	}

	c := newTestCoordinator(tables, orders, &mockOrderItemService{})
	require.NoError(t, c.Load(context.Background(), 5))

	assert.Equal(t, StateNoOrder, c.State())
	assert.Nil(t, c.Order())
}

func TestLoad_SelectsFirstNonTerminalOrder(t *testing.T) {
	tables := &mockTableService{
		TableFunc: func(ctx context.Context, id int64) (*domain.Table, error) {
			return &domain.Table{ID: id}, nil
		},
	}
	orders := &mockOrderService{
		OrdersByTableFunc: func(ctx context.Context, tableID int64) ([]domain.Order, error) {
			return []domain.Order{
				{ID: 1, OrderState: domain.OrderCancelled},
				{ID: 2, OrderState: domain.OrderServed},
				{ID: 3, OrderState: domain.OrderPending},
			}, nil
		},
	}
	items := &mockOrderItemService{
		OrderItemsByOrderFunc: func(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
			return []domain.OrderItem{{ID: 40, OrderID: orderID, MenuItemID: burger.ID, Quantity: 1, UnitPrice: 9.50}}, nil
		},
	}

	c := newTestCoordinator(tables, orders, items)
	require.NoError(t, c.Load(context.Background(), 5))

	assert.Equal(t, StateOrderActive, c.State())
	assert.Equal(t, int64(2), c.Order().ID)
	require.Len(t, c.CommittedItems(), 1)
	assert.Equal(t, int64(2), c.CommittedItems()[0].OrderID)
}

func TestLoad_DiscardsStagedItems(t *testing.T) {
	tables := &mockTableService{
		TableFunc: func(ctx context.Context, id int64) (*domain.Table, error) {
			return &domain.Table{ID: id}, nil
		},
	}
	orders := &mockOrderService{
		OrdersByTableFunc: func(ctx context.Context, tableID int64) ([]domain.Order, error) {
			return nil, nil
		},
	}

	c := newTestCoordinator(tables, orders, &mockOrderItemService{})
	c.AddPendingItem(burger, 2)
	require.NoError(t, c.Load(context.Background(), 7))

	assert.Empty(t, c.PendingItems())
}

// CreateOrder

func TestCreateOrder_NewOrderForTable(t *testing.T) {
	var captured dto.CreateOrderRequest
	tables := &mockTableService{
		TableFunc: func(ctx context.Context, id int64) (*domain.Table, error) {
			return &domain.Table{ID: id, Number: 5, TableState: domain.TableAvailable}, nil
		},
	}
	orders := &mockOrderService{
		OrdersByTableFunc: func(ctx context.Context, tableID int64) ([]domain.Order, error) {
			return nil, nil
		},
		CreateOrderFunc: func(ctx context.Context, req dto.CreateOrderRequest) (*domain.Order, error) {
			captured = req
			return &domain.Order{
				ID:            17,
				TableID:       req.TableID,
				UserID:        req.UserID,
				OrderState:    domain.OrderPending,
				CustomerCount: req.CustomerCount,
				TotalAmount:   0,
			}, nil
		},
	}

	c := newTestCoordinator(tables, orders, &mockOrderItemService{})
	require.NoError(t, c.Load(context.Background(), 5))
	require.NoError(t, c.CreateOrder(context.Background(), 4))

	assert.Equal(t, dto.CreateOrderRequest{TableID: 5, UserID: 2, OrderState: domain.OrderPending, CustomerCount: 4}, captured)
	assert.Equal(t, StateOrderActive, c.State())
	assert.Equal(t, domain.OrderPending, c.Order().OrderState)
	assert.Equal(t, 4, c.Order().CustomerCount)
	assert.Zero(t, c.Order().TotalAmount)
}

func TestCreateOrder_RejectedWhileOrderActive(t *testing.T) {
	var sent []dto.CreateOrderItemRequest
	c := loadedCoordinator(t, &sent, nil)

	err := c.CreateOrder(context.Background(), 2)

	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
	assert.Equal(t, int64(17), c.Order().ID)
}

func TestCreateOrder_FailureReturnsToNoOrder(t *testing.T) {
	tables := &mockTableService{
		TableFunc: func(ctx context.Context, id int64) (*domain.Table, error) {
			return &domain.Table{ID: id}, nil
		},
	}
	orders := &mockOrderService{
		OrdersByTableFunc: func(ctx context.Context, tableID int64) ([]domain.Order, error) {
			return nil, nil
		},
		CreateOrderFunc: func(ctx context.Context, req dto.CreateOrderRequest) (*domain.Order, error) {
			return nil, apperrors.NewAPIError(500, "backend exploded")
		},
	}

	c := newTestCoordinator(tables, orders, &mockOrderItemService{})
	require.NoError(t, c.Load(context.Background(), 5))

	err := c.CreateOrder(context.Background(), 2)

	assert.Error(t, err)
	assert.Equal(t, StateNoOrder, c.State())
	assert.Nil(t, c.Order())
}

func TestCreateOrder_WithoutLoadedTable(t *testing.T) {
	c := newTestCoordinator(nil, nil, nil)

	err := c.CreateOrder(context.Background(), 2)

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

// SendPendingItems

func TestSendPendingItems_FullSuccess(t *testing.T) {
	var sent []dto.CreateOrderItemRequest
	c := loadedCoordinator(t, &sent, nil)

	c.AddPendingItem(burger, 2)
	c.AddPendingItem(soda, 1)

	require.NoError(t, c.SendPendingItems(context.Background()))

	// One request per item, insertion order, staged price and quantity.
	require.Len(t, sent, 2)
	assert.Equal(t, dto.CreateOrderItemRequest{MenuItemID: 10, Quantity: 2, UnitPrice: 9.50}, sent[0])
	assert.Equal(t, dto.CreateOrderItemRequest{MenuItemID: 20, Quantity: 1, UnitPrice: 2.00}, sent[1])

	assert.Empty(t, c.PendingItems())
	assert.False(t, c.HasPending())

	committed := c.CommittedItems()
	require.Len(t, committed, 2)
	assert.Equal(t, 2, committed[0].Quantity)
	assert.Equal(t, 1, committed[1].Quantity)
}

func TestSendPendingItems_PartialFailureKeepsUnconfirmed(t *testing.T) {
	var sent []dto.CreateOrderItemRequest
	c := loadedCoordinator(t, &sent, func(call int) error {
		if call == 2 {
			return apperrors.NewAPIError(500, "kitchen printer on fire")
		}
		return nil
	})

	c.AddPendingItem(burger, 2)
	c.AddPendingItem(soda, 1)
	c.AddPendingItem(salad, 3)

	err := c.SendPendingItems(context.Background())
	require.Error(t, err)

	// Item 1 committed before the failure.
	require.Len(t, sent, 1)
	assert.Equal(t, burger.ID, sent[0].MenuItemID)

	// Items 2 and 3 still staged, untouched, in order.
	pending := c.PendingItems()
	require.Len(t, pending, 2)
	assert.Equal(t, soda.ID, pending[0].MenuItem.ID)
	assert.Equal(t, 1, pending[0].Quantity)
	assert.Equal(t, salad.ID, pending[1].MenuItem.ID)
	assert.Equal(t, 3, pending[1].Quantity)
}

func TestSendPendingItems_RetryAfterPartialFailure(t *testing.T) {
	var sent []dto.CreateOrderItemRequest
	c := loadedCoordinator(t, &sent, func(call int) error {
		if call == 2 {
			return apperrors.NewAPIError(502, "bad gateway")
		}
		return nil
	})

	c.AddPendingItem(burger, 2)
	c.AddPendingItem(soda, 1)
	c.AddPendingItem(salad, 3)

	require.Error(t, c.SendPendingItems(context.Background()))
	require.NoError(t, c.SendPendingItems(context.Background()))

	// Burger once, then soda and salad on the retry. No duplicates.
	require.Len(t, sent, 3)
	assert.Equal(t, burger.ID, sent[0].MenuItemID)
	assert.Equal(t, soda.ID, sent[1].MenuItemID)
	assert.Equal(t, salad.ID, sent[2].MenuItemID)
	assert.Empty(t, c.PendingItems())
}

func TestSendPendingItems_NoopWithoutOrder(t *testing.T) {
	tables := &mockTableService{
		TableFunc: func(ctx context.Context, id int64) (*domain.Table, error) {
			return &domain.Table{ID: id}, nil
		},
	}
	orders := &mockOrderService{
		OrdersByTableFunc: func(ctx context.Context, tableID int64) ([]domain.Order, error) {
			return nil, nil
		},
	}
	items := &mockOrderItemService{
		AddOrderItemFunc: func(ctx context.Context, orderID int64, req dto.CreateOrderItemRequest) (*domain.OrderItem, error) {
			t.Fatal("no request expected without an active order")
			return nil, nil
		},
	}

	c := newTestCoordinator(tables, orders, items)
	require.NoError(t, c.Load(context.Background(), 5))
	c.AddPendingItem(burger, 1)

	assert.NoError(t, c.SendPendingItems(context.Background()))
	assert.Len(t, c.PendingItems(), 1)
}

func TestSendPendingItems_NoopWhenNothingStaged(t *testing.T) {
	var sent []dto.CreateOrderItemRequest
	c := loadedCoordinator(t, &sent, nil)

	assert.NoError(t, c.SendPendingItems(context.Background()))
	assert.Empty(t, sent)
}

// RemoveCommittedItem

func TestRemoveCommittedItem_DeletesAndRefreshes(t *testing.T) {
	var deleted []int64
	refreshed := false
	tables := &mockTableService{
		TableFunc: func(ctx context.Context, id int64) (*domain.Table, error) {
			return &domain.Table{ID: id}, nil
		},
	}
	orders := &mockOrderService{
		OrdersByTableFunc: func(ctx context.Context, tableID int64) ([]domain.Order, error) {
			return []domain.Order{{ID: 17, OrderState: domain.OrderPending}}, nil
		},
	}
	items := &mockOrderItemService{
		OrderItemsByOrderFunc: func(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
			if refreshed {
				return nil, nil
			}
			return []domain.OrderItem{{ID: 101, OrderID: orderID, MenuItemID: burger.ID, Quantity: 1}}, nil
		},
		DeleteOrderItemFunc: func(ctx context.Context, id int64) error {
			deleted = append(deleted, id)
			refreshed = true
			return nil
		},
	}

	c := newTestCoordinator(tables, orders, items)
	require.NoError(t, c.Load(context.Background(), 5))
	require.Len(t, c.CommittedItems(), 1)

	require.NoError(t, c.RemoveCommittedItem(context.Background(), 101))

	assert.Equal(t, []int64{101}, deleted)
	assert.Empty(t, c.CommittedItems())
}

func TestRemoveCommittedItem_ErrorLeavesStateUnchanged(t *testing.T) {
	var sent []dto.CreateOrderItemRequest
	c := loadedCoordinator(t, &sent, nil)
	c.AddPendingItem(burger, 1)
	require.NoError(t, c.SendPendingItems(context.Background()))
	before := c.CommittedItems()

	itemsSvc := c.items.(*mockOrderItemService)
	itemsSvc.DeleteOrderItemFunc = func(ctx context.Context, id int64) error {
		return apperrors.NewAPIError(500, "cannot delete")
	}

	err := c.RemoveCommittedItem(context.Background(), before[0].ID)

	assert.Error(t, err)
	assert.Equal(t, before, c.CommittedItems())
}
