package domain_test

import (
	"testing"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCartTotal(t *testing.T) {
	t.Parallel()

	cart := domain.NewCart([]domain.CartItem{
		{Price: 1000, Quantity: 2},
		{Price: 499, Quantity: 3},
	})
	assert.Equal(t, int64(3497), cart.Total)

	empty := domain.NewCart(nil)
	assert.NotNil(t, empty.Items)
	assert.Zero(t, empty.Total)
}

func TestNewOrderFromCart(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	a, b := uuid.New(), uuid.New()

	order := domain.NewOrderFromCart(userID, "Main st. 1", []domain.CartItem{
		{ProductID: a, Name: "A", Price: 1000, Quantity: 2},
		{ProductID: b, Name: "B", Price: 500, Quantity: 1},
	})

	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, int64(2500), order.Total)
	require.Len(t, order.Items, 2)
	for _, item := range order.Items {
		assert.Equal(t, order.ID, item.OrderID)
	}
	assert.Equal(t, int64(1000), order.Items[0].Price)
	assert.Equal(t, 2, order.Items[0].Quantity)
}

func TestOrderStatusIsValid(t *testing.T) {
	t.Parallel()

	for _, s := range domain.OrderStatuses {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, domain.OrderStatus("returned").IsValid())
	assert.False(t, domain.OrderStatus("").IsValid())
}

func TestRole(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.RoleAdmin.IsAdmin())
	assert.False(t, domain.RoleCustomer.IsAdmin())
	assert.Equal(t, domain.RoleCustomer, domain.NewUser("a@b.c", "hash", "A").Role)
}
