package stub

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tableside/internal/domain"
	"tableside/internal/dto"
	apperrors "tableside/internal/errors"
)

type account struct {
	user         domain.User
	passwordHash []byte
}

// Store is the stub backend's in-memory state. Unlike the coordinator it is
// mutex-guarded: httptest and multiple console processes hit it concurrently.
type Store struct {
	mu sync.Mutex

	accounts   map[string]*account
	tables     map[int64]*domain.Table
	orders     map[int64]*domain.Order
	orderItems map[int64]*domain.OrderItem
	menuItems  map[int64]*domain.MenuItem

	nextOrderID     int64
	nextOrderItemID int64
}

func NewStore() *Store {
	return &Store{
		accounts:        make(map[string]*account),
		tables:          make(map[int64]*domain.Table),
		orders:          make(map[int64]*domain.Order),
		orderItems:      make(map[int64]*domain.OrderItem),
		menuItems:       make(map[int64]*domain.MenuItem),
		nextOrderID:     1,
		nextOrderItemID: 1,
	}
}

// Seed loads the fixture data every stub run starts from: three staff
// accounts, eight free tables, and a small menu.
func (s *Store) Seed() error {
	staff := []struct {
		user     domain.User
		password string
	}{
		{domain.User{ID: 1, Username: "admin", Email: "admin@tableside.local", Roles: []string{domain.RoleAdmin}}, "admin123"},
		{domain.User{ID: 2, Username: "waiter", Email: "waiter@tableside.local", Roles: []string{domain.RoleWaiter}}, "waiter123"},
		{domain.User{ID: 3, Username: "cashier", Email: "cashier@tableside.local", Roles: []string{domain.RoleCashier}}, "cashier123"},
	}
	for _, st := range staff {
		hash, err := bcrypt.GenerateFromPassword([]byte(st.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing seed password: %w", err)
		}
		s.accounts[st.user.Username] = &account{user: st.user, passwordHash: hash}
	}

	for i := int64(1); i <= 8; i++ {
		s.tables[i] = &domain.Table{ID: i, Number: int(i), TableState: domain.TableAvailable}
	}

	menu := []domain.MenuItem{
		{ID: 10, Name: "Burger", Description: "House burger with fries", Price: 9.50, Category: "MAIN", IsActive: true, Allergens: []string{"GLUTEN", "DAIRY"}},
		{ID: 11, Name: "Margherita", Description: "Tomato, mozzarella, basil", Price: 11.00, Category: "MAIN", IsActive: true, Allergens: []string{"GLUTEN", "DAIRY"}},
		{ID: 20, Name: "Soda", Description: "330ml can", Price: 2.00, Category: "DRINK", IsActive: true, Allergens: nil},
		{ID: 21, Name: "House Red", Description: "Glass of the house red", Price: 4.50, Category: "DRINK", IsActive: true, Allergens: []string{"SULPHITES"}},
		{ID: 30, Name: "Salad", Description: "Seasonal greens", Price: 6.25, Category: "STARTER", IsActive: true, Allergens: []string{"NUTS"}},
		{ID: 31, Name: "Old Special", Description: "Retired from the menu", Price: 8.00, Category: "MAIN", IsActive: false, Allergens: nil},
	}
	for i := range menu {
		s.menuItems[menu[i].ID] = &menu[i]
	}

	return nil
}

// Authenticate checks a username/password pair against the seeded accounts.
func (s *Store) Authenticate(username, password string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[username]
	if !ok {
		return nil, apperrors.NewNotFoundError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
		return nil, apperrors.NewNotFoundError("invalid credentials")
	}
	user := acc.user
	return &user, nil
}

func (s *Store) UserByID(id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, acc := range s.accounts {
		if acc.user.ID == id {
			user := acc.user
			return &user, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("user %d not found", id))
}

func (s *Store) Tables() []domain.Table {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Table, 0, len(s.tables))
	for _, t := range s.tables {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func (s *Store) Table(id int64) (*domain.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tableLocked(id)
}

func (s *Store) tableLocked(id int64) (*domain.Table, error) {
	t, ok := s.tables[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("table %d not found", id))
	}
	copied := *t
	return &copied, nil
}

func (s *Store) UpdateTableState(id int64, state domain.TableState) (*domain.Table, error) {
	if !state.Valid() {
		return nil, apperrors.NewValidationError("invalid table state")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("table %d not found", id))
	}
	t.TableState = state
	copied := *t
	return &copied, nil
}

func (s *Store) AssignOrderToTable(tableID, orderID int64) (*domain.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[tableID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("table %d not found", tableID))
	}
	if _, ok := s.orders[orderID]; !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order %d not found", orderID))
	}
	t.CurrentOrderID = &orderID
	copied := *t
	return &copied, nil
}

func (s *Store) OrdersByTable(tableID int64) []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.Order{}
	for _, o := range s.orders {
		if o.TableID == tableID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Order(id int64) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderLocked(id)
}

func (s *Store) orderLocked(id int64) (*domain.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order %d not found", id))
	}
	copied := *o
	return &copied, nil
}

// CreateOrder opens an order and marks the table occupied, as the real
// backend does. One active order per table is enforced here.
func (s *Store) CreateOrder(req dto.CreateOrderRequest) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.tables[req.TableID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("table %d not found", req.TableID))
	}
	if req.CustomerCount < 1 {
		return nil, apperrors.NewValidationError("customerCount must be at least 1")
	}
	state := req.OrderState
	if state == "" {
		state = domain.OrderPending
	}
	if !state.Valid() {
		return nil, apperrors.NewValidationError("invalid order state")
	}
	for _, o := range s.orders {
		if o.TableID == req.TableID && o.Active() {
			return nil, apperrors.NewConflictError(fmt.Sprintf("table %d already has an active order", req.TableID))
		}
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:            s.nextOrderID,
		TableID:       req.TableID,
		UserID:        req.UserID,
		OrderState:    state,
		CustomerCount: req.CustomerCount,
		TotalAmount:   0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.nextOrderID++
	s.orders[order.ID] = order

	table.CurrentOrderID = &order.ID
	table.TableState = domain.TableOccupied

	copied := *order
	return &copied, nil
}

func (s *Store) UpdateOrderState(id int64, state domain.OrderState) (*domain.Order, error) {
	if !state.Valid() {
		return nil, apperrors.NewValidationError("invalid order state")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order %d not found", id))
	}
	o.OrderState = state
	o.UpdatedAt = time.Now().UTC()

	// A closed order frees the table.
	if state.Terminal() {
		if t, ok := s.tables[o.TableID]; ok {
			t.CurrentOrderID = nil
			t.TableState = domain.TableAvailable
		}
	}

	copied := *o
	return &copied, nil
}

func (s *Store) OrderItemsByOrder(orderID int64) ([]domain.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[orderID]; !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order %d not found", orderID))
	}
	return s.orderItemsLocked(orderID), nil
}

func (s *Store) orderItemsLocked(orderID int64) []domain.OrderItem {
	out := []domain.OrderItem{}
	for _, it := range s.orderItems {
		if it.OrderID == orderID {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddOrderItem persists a line item and recalculates the order total, the
// same side effect the real OrderItemService has.
func (s *Store) AddOrderItem(orderID int64, req dto.CreateOrderItemRequest) (*domain.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order %d not found", orderID))
	}
	if _, ok := s.menuItems[req.MenuItemID]; !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("menu item %d not found", req.MenuItemID))
	}
	if req.Quantity < 1 {
		return nil, apperrors.NewValidationError("quantity must be at least 1")
	}

	item := &domain.OrderItem{
		ID:         s.nextOrderItemID,
		OrderID:    orderID,
		MenuItemID: req.MenuItemID,
		Quantity:   req.Quantity,
		UnitPrice:  req.UnitPrice,
		TotalPrice: req.UnitPrice * float64(req.Quantity),
	}
	s.nextOrderItemID++
	s.orderItems[item.ID] = item

	s.recalculateTotalLocked(order)

	copied := *item
	return &copied, nil
}

func (s *Store) DeleteOrderItem(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.orderItems[id]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("order item %d not found", id))
	}
	delete(s.orderItems, id)

	if order, ok := s.orders[item.OrderID]; ok {
		s.recalculateTotalLocked(order)
	}
	return nil
}

func (s *Store) CalculateOrderTotal(orderID int64) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order %d not found", orderID))
	}
	s.recalculateTotalLocked(order)
	copied := *order
	return &copied, nil
}

func (s *Store) recalculateTotalLocked(order *domain.Order) {
	total := 0.0
	for _, it := range s.orderItemsLocked(order.ID) {
		total += it.TotalPrice
	}
	order.TotalAmount = total
	order.UpdatedAt = time.Now().UTC()
}

// MenuItems returns the public menu: active items only.
func (s *Store) MenuItems() []domain.MenuItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.MenuItem{}
	for _, m := range s.menuItems {
		if m.IsActive {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) MenuItemsByCategory(category string) []domain.MenuItem {
	out := []domain.MenuItem{}
	for _, m := range s.MenuItems() {
		if m.Category == category {
			out = append(out, m)
		}
	}
	return out
}
