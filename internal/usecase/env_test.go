package usecase

import (
	"context"
	"testing"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store    *memStore
	cache    *fakeCache
	images   *fakeImages
	cartRepo *fakeCartRepo

	auth    *AuthUseCase
	catalog *CatalogUseCase
	cart    *CartUseCase
	orders  *OrderUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	cache := newFakeCache()
	images := &fakeImages{}
	txManager := &fakeTxManager{store: store}
	log := logger.NewNopLogger()

	productRepo := &fakeProductRepo{s: store}
	cartRepo := &fakeCartRepo{s: store}

	return &testEnv{
		store:    store,
		cache:    cache,
		images:   images,
		cartRepo: cartRepo,

		auth:    NewAuthUC(&fakeUserRepo{s: store}, fakeHasher{}, fakeTokens{}, log),
		catalog: NewCatalogUC(&fakeCategoryRepo{s: store}, productRepo, cache, images, log),
		cart:    NewCartUC(cartRepo, productRepo, txManager, log),
		orders:  NewOrderUC(&fakeOrderRepo{s: store}, cartRepo, productRepo, &fakeOutboxRepo{s: store}, cache, txManager, log),
	}
}

func (env *testEnv) customer() Caller {
	u := env.store.addUser(domain.RoleCustomer)
	return NewCaller(u.ID, u.Role)
}

func (env *testEnv) admin() Caller {
	u := env.store.addUser(domain.RoleAdmin)
	return NewCaller(u.ID, u.Role)
}

func (env *testEnv) mustAdd(t *testing.T, caller Caller, product domain.Product, quantity int) *domain.Cart {
	t.Helper()

	cart, err := env.cart.AddItem(context.Background(), caller, NewAddCartItemReq(product.ID, quantity))
	require.NoError(t, err)
	return cart
}
