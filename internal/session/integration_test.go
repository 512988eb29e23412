package session

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tableside/internal/api"
	"tableside/internal/domain"
	"tableside/internal/stub"
)

// End to end over HTTP: coordinator -> client -> stub backend.
func TestCoordinator_AgainstStubBackend(t *testing.T) {
	store := stub.NewStore()
	require.NoError(t, store.Seed())
	srv := stub.New(0, store, zap.NewNop())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	client, err := api.New(ts.URL, 5*time.Second, 100, 100, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	_, err = client.Login(ctx, "waiter", "waiter123")
	require.NoError(t, err)
	user, err := client.CurrentUser(ctx)
	require.NoError(t, err)

	c := New(client, client, client, user.ID, zap.NewNop())

	// Fresh table: no order yet.
	require.NoError(t, c.Load(ctx, 5))
	assert.Equal(t, StateNoOrder, c.State())

	// Start the order.
	require.NoError(t, c.CreateOrder(ctx, 4))
	assert.Equal(t, StateOrderActive, c.State())
	assert.Equal(t, domain.OrderPending, c.Order().OrderState)
	assert.Equal(t, domain.TableOccupied, c.Table().TableState)

	// Stage and send a cart.
	menu, err := client.MenuItems(ctx)
	require.NoError(t, err)
	byName := map[string]domain.MenuItem{}
	for _, m := range menu {
		byName[m.Name] = m
	}

	c.AddPendingItem(byName["Burger"], 2)
	c.AddPendingItem(byName["Soda"], 1)
	c.AddPendingItem(byName["Burger"], 1)
	require.True(t, c.HasPending())

	require.NoError(t, c.SendPendingItems(ctx))

	assert.False(t, c.HasPending())
	committed := c.CommittedItems()
	require.Len(t, committed, 2)
	assert.Equal(t, 3, committed[0].Quantity)
	assert.Equal(t, 1, committed[1].Quantity)

	// Total comes from the backend: 3*9.50 + 1*2.00.
	assert.InDelta(t, 30.50, c.Order().TotalAmount, 0.001)

	// Creating again while active is rejected locally.
	assert.Error(t, c.CreateOrder(ctx, 2))

	// Remove a committed line; total shrinks server-side.
	require.NoError(t, c.RemoveCommittedItem(ctx, committed[1].ID))
	require.Len(t, c.CommittedItems(), 1)
	assert.InDelta(t, 28.50, c.Order().TotalAmount, 0.001)

	// A second coordinator loading the same table sees the same order.
	other := New(client, client, client, user.ID, zap.NewNop())
	require.NoError(t, other.Load(ctx, 5))
	assert.Equal(t, StateOrderActive, other.State())
	assert.Equal(t, c.Order().ID, other.Order().ID)
}
