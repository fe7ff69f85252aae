package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckout(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	caller := env.customer()

	keyboard := env.store.addProduct("Keyboard", 1000, 5, nil)
	mouse := env.store.addProduct("Mouse", 500, 1, nil)
	env.mustAdd(t, caller, keyboard, 2)
	env.mustAdd(t, caller, mouse, 1)

	order, err := env.orders.Checkout(ctx, caller, NewCheckoutReq("  Main st. 1 "))
	require.NoError(t, err)

	assert.Equal(t, int64(2500), order.Total)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "Main st. 1", order.ShippingAddress)
	assert.Equal(t, caller.ID, order.UserID)
	require.Len(t, order.Items, 2)

	assert.Equal(t, 3, env.store.product(keyboard.ID).Stock)
	assert.Equal(t, 0, env.store.product(mouse.ID).Stock)

	cart, err := env.cart.GetCart(ctx, caller)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	events := env.store.outboxEvents()
	require.Len(t, events, 1)
	assert.Equal(t, OrderCreated, events[0].EventType)
	assert.Equal(t, order.ID, events[0].AggregateID)

	var payload OrderEventPayload
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	assert.Equal(t, order.ID, payload.OrderID)
	assert.True(t, decimal.RequireFromString("25").Equal(payload.Total), payload.Total.String())
	assert.Len(t, payload.Items, 2)

	assert.ElementsMatch(t, []uuid.UUID{keyboard.ID, mouse.ID}, env.cache.deletedProducts)
}

func TestCheckoutKeepsPriceSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	caller := env.customer()

	product := env.store.addProduct("Lamp", 1999, 3, nil)
	env.mustAdd(t, caller, product, 1)

	order, err := env.orders.Checkout(ctx, caller, NewCheckoutReq("Main st. 1"))
	require.NoError(t, err)

	newPrice := int64(4999)
	_, err = env.catalog.UpdateProduct(ctx, product.ID, domain.ProductPatch{Price: &newPrice})
	require.NoError(t, err)

	got, err := env.orders.GetOrder(ctx, caller, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1999), got.Total)
	assert.Equal(t, int64(1999), got.Items[0].Price)
	assert.Equal(t, "Lamp", got.Items[0].Name)
}

func TestCheckoutInsufficientStockChangesNothing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	caller := env.customer()

	plenty := env.store.addProduct("Cable", 300, 10, nil)
	scarce := env.store.addProduct("Monitor", 20000, 2, nil)
	env.mustAdd(t, caller, plenty, 1)
	env.mustAdd(t, caller, scarce, 2)

	// остаток уменьшился уже после добавления в корзину
	stock := 1
	_, err := env.catalog.UpdateProduct(ctx, scarce.ID, domain.ProductPatch{Stock: &stock})
	require.NoError(t, err)

	order, err := env.orders.Checkout(ctx, caller, NewCheckoutReq("Main st. 1"))
	require.Error(t, err)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, e.ErrInsufficientStock)
	assert.ErrorIs(t, err, e.ErrBadRequest)

	var ce *e.ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Not enough stock for Monitor. Available: 1", ce.Msg)

	assert.Zero(t, env.store.orderCount())
	assert.Empty(t, env.store.outboxEvents())
	assert.Equal(t, 10, env.store.product(plenty.ID).Stock)
	assert.Equal(t, 1, env.store.product(scarce.ID).Stock)

	cart, err := env.cart.GetCart(ctx, caller)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestCheckoutConcurrentLastUnit(t *testing.T) {
	t.Parallel()

	const buyers = 8

	ctx := context.Background()
	env := newTestEnv(t)
	product := env.store.addProduct("Last one", 100, 1, nil)

	callers := make([]Caller, buyers)
	for i := range callers {
		callers[i] = env.customer()
		env.mustAdd(t, callers[i], product, 1)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failed    int
	)
	for _, caller := range callers {
		wg.Add(1)
		go func(caller Caller) {
			defer wg.Done()

			_, err := env.orders.Checkout(ctx, caller, NewCheckoutReq("Main st. 1"))

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			if assert.ErrorIs(t, err, e.ErrInsufficientStock) {
				failed++
			}
		}(caller)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, buyers-1, failed)
	assert.Equal(t, 0, env.store.product(product.ID).Stock)
	assert.Equal(t, 1, env.store.orderCount())
}

func TestCheckoutKeepsLinesAddedAfterLock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	caller := env.customer()

	keyboard := env.store.addProduct("Keyboard", 1000, 5, nil)
	mouse := env.store.addProduct("Mouse", 500, 5, nil)
	env.mustAdd(t, caller, keyboard, 1)

	// строка появляется между чтением корзины и её очисткой
	env.cartRepo.afterLock = func() {
		env.store.mu.Lock()
		defer env.store.mu.Unlock()

		id := uuid.New()
		env.store.cart[id] = domain.CartItem{ID: id, UserID: caller.ID, ProductID: mouse.ID, Quantity: 2, CreatedAt: env.store.tick()}
	}

	order, err := env.orders.Checkout(ctx, caller, NewCheckoutReq("Main st. 1"))
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, keyboard.ID, order.Items[0].ProductID)

	cart, err := env.cart.GetCart(ctx, caller)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, mouse.ID, cart.Items[0].ProductID)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 5, env.store.product(mouse.ID).Stock)
}

func TestCheckoutValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	caller := env.customer()

	_, err := env.orders.Checkout(ctx, caller, NewCheckoutReq("Main st. 1"))
	assert.ErrorIs(t, err, e.ErrCartEmpty)

	product := env.store.addProduct("Pen", 100, 10, nil)
	env.mustAdd(t, caller, product, 1)

	_, err = env.orders.Checkout(ctx, caller, NewCheckoutReq("   "))
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrBadRequest)

	var ce *e.ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Shipping address is required", ce.Msg)
	assert.Zero(t, env.store.orderCount())
}

func TestOrderAccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.customer()
	stranger := env.customer()
	admin := env.admin()

	product := env.store.addProduct("Book", 700, 10, nil)
	env.mustAdd(t, owner, product, 1)
	order, err := env.orders.Checkout(ctx, owner, NewCheckoutReq("Main st. 1"))
	require.NoError(t, err)

	env.mustAdd(t, stranger, product, 2)
	_, err = env.orders.Checkout(ctx, stranger, NewCheckoutReq("Side st. 2"))
	require.NoError(t, err)

	_, err = env.orders.GetOrder(ctx, stranger, order.ID)
	assert.ErrorIs(t, err, e.ErrAccessDenied)
	assert.ErrorIs(t, err, e.ErrPermissionDenied)

	got, err := env.orders.GetOrder(ctx, admin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = env.orders.GetOrder(ctx, owner, uuid.New())
	assert.ErrorIs(t, err, e.ErrOrderNotFound)

	own, err := env.orders.ListOrders(ctx, owner)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, order.ID, own[0].ID)

	all, err := env.orders.ListOrders(ctx, admin)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, stranger.ID, all[0].UserID, "newest first")
}

func TestUpdateOrderStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	caller := env.customer()

	product := env.store.addProduct("Cup", 250, 4, nil)
	env.mustAdd(t, caller, product, 1)
	order, err := env.orders.Checkout(ctx, caller, NewCheckoutReq("Main st. 1"))
	require.NoError(t, err)

	_, err = env.orders.UpdateStatus(ctx, NewUpdateOrderStatusReq(order.ID, "returned"))
	assert.ErrorIs(t, err, e.ErrInvalidStatus)

	_, err = env.orders.UpdateStatus(ctx, NewUpdateOrderStatusReq(uuid.New(), domain.OrderStatusShipped))
	assert.ErrorIs(t, err, e.ErrOrderNotFound)

	updated, err := env.orders.UpdateStatus(ctx, NewUpdateOrderStatusReq(order.ID, domain.OrderStatusShipped))
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, updated.Status)

	// переходы не ограничены
	updated, err = env.orders.UpdateStatus(ctx, NewUpdateOrderStatusReq(order.ID, domain.OrderStatusPending))
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, updated.Status)

	events := env.store.outboxEvents()
	require.Len(t, events, 3)
	assert.Equal(t, OrderStatusChanged, events[2].EventType)
}
