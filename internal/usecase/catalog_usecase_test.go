package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategories(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)

	books, err := env.catalog.CreateCategory(ctx, NewCreateCategoryReq(" Books ", nil))
	require.NoError(t, err)
	assert.Equal(t, "Books", books.Name)

	_, err = env.catalog.CreateCategory(ctx, NewCreateCategoryReq("Art", nil))
	require.NoError(t, err)

	_, err = env.catalog.CreateCategory(ctx, NewCreateCategoryReq("", nil))
	assert.ErrorIs(t, err, e.ErrBadRequest)

	env.store.addProduct("Novel", 900, 1, &books.ID)

	list, err := env.catalog.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Art", list[0].Name)
	assert.Equal(t, 0, list[0].ProductCount)
	assert.Equal(t, "Books", list[1].Name)
	assert.Equal(t, 1, list[1].ProductCount)

	err = env.catalog.DeleteCategory(ctx, books.ID)
	assert.ErrorIs(t, err, e.ErrCategoryHasProducts)

	err = env.catalog.DeleteCategory(ctx, list[0].ID)
	require.NoError(t, err)

	err = env.catalog.DeleteCategory(ctx, list[0].ID)
	assert.ErrorIs(t, err, e.ErrCategoryNotFound)
}

func TestListCategoriesUsesCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	env.store.addCategory("Garden")

	_, err := env.catalog.ListCategories(ctx)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		cached, _ := env.cache.GetCategories(ctx)
		return len(cached) == 1
	}, time.Second, 5*time.Millisecond)

	// мимо usecase: кэш должен отдать старое значение
	env.store.addCategory("Kitchen")
	list, err := env.catalog.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// изменение через usecase сбрасывает кэш
	_, err = env.catalog.CreateCategory(ctx, NewCreateCategoryReq("Tools", nil))
	require.NoError(t, err)
	list, err = env.catalog.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestUpdateCategoryFlushesProducts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	category := env.store.addCategory("Old")

	description := "new description"
	_, err := env.catalog.UpdateCategory(ctx, category.ID, domain.CategoryPatch{Description: &description})
	require.NoError(t, err)
	assert.Zero(t, env.cache.flushes)

	name := "New"
	updated, err := env.catalog.UpdateCategory(ctx, category.ID, domain.CategoryPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	assert.Equal(t, "new description", *updated.Description)
	assert.Equal(t, 1, env.cache.flushes)

	_, err = env.catalog.UpdateCategory(ctx, uuid.New(), domain.CategoryPatch{Name: &name})
	assert.ErrorIs(t, err, e.ErrCategoryNotFound)
}

func TestCreateProduct(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	category := env.store.addCategory("Toys")

	product, err := env.catalog.CreateProduct(ctx, NewCreateProductReq("Robot", nil, 2999, nil, &category.ID, 7))
	require.NoError(t, err)
	assert.Equal(t, int64(2999), product.Price)
	assert.Equal(t, 7, product.Stock)
	require.NotNil(t, product.CategoryName)
	assert.Equal(t, "Toys", *product.CategoryName)

	missing := uuid.New()
	tests := []struct {
		name string
		req  *CreateProductReq
		want error
	}{
		{name: "empty name", req: NewCreateProductReq(" ", nil, 100, nil, nil, 1), want: e.ErrBadRequest},
		{name: "negative price", req: NewCreateProductReq("X", nil, -1, nil, nil, 1), want: e.ErrInvalidPrice},
		{name: "negative stock", req: NewCreateProductReq("X", nil, 100, nil, nil, -1), want: e.ErrInvalidStock},
		{name: "huge stock", req: NewCreateProductReq("X", nil, 100, nil, nil, domain.MaxStock+1), want: e.ErrInvalidStock},
		{name: "unknown category", req: NewCreateProductReq("X", nil, 100, nil, &missing, 1), want: e.ErrCategoryNotExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.catalog.CreateProduct(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestListProducts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	phones := env.store.addCategory("Phones")

	for i := range 5 {
		env.store.addProduct(fmt.Sprintf("Phone %d", i), 10000, 1, &phones.ID)
	}
	env.store.addProduct("Charger", 1500, 1, nil)

	res, err := env.catalog.ListProducts(ctx, domain.ProductFilter{CategoryID: &phones.ID, Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 2, res.Limit)
	assert.Equal(t, 1, res.Offset)
	require.Len(t, res.Products, 2)
	assert.Equal(t, "Phone 3", res.Products[0].Name, "newest first")

	res, err = env.catalog.ListProducts(ctx, domain.ProductFilter{Search: "CHARG"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, DefaultProductsLimit, res.Limit)

	res, err = env.catalog.ListProducts(ctx, domain.ProductFilter{Limit: 1000, Offset: -5})
	require.NoError(t, err)
	assert.Equal(t, MaxProductsLimit, res.Limit)
	assert.Zero(t, res.Offset)
	assert.Len(t, res.Products, 6)

	res, err = env.catalog.ListProducts(ctx, domain.ProductFilter{Search: "nothing like this"})
	require.NoError(t, err)
	assert.NotNil(t, res.Products)
	assert.Empty(t, res.Products)
}

func TestGetProductCacheWriteAfterCheckout(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	caller := env.customer()
	product := env.store.addProduct("Kettle", 2000, 5, nil)

	gate := make(chan struct{})
	env.cache.setGate = gate
	env.cache.setDone = make(chan struct{}, 1)

	// чтение из БД до оформления заказа, запись в кэш задержана
	got, err := env.catalog.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)

	env.mustAdd(t, caller, product, 5)
	_, err = env.orders.Checkout(ctx, caller, NewCheckoutReq("Main st. 1"))
	require.NoError(t, err)

	close(gate)
	select {
	case <-env.cache.setDone:
	case <-time.After(time.Second):
		t.Fatal("background cache write did not finish")
	}

	_, ok := env.cache.cachedProduct(product.ID)
	assert.False(t, ok, "stale card must not be cached")

	got, err = env.catalog.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
}

func TestGetProductCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	product := env.store.addProduct("Chair", 5000, 3, nil)

	got, err := env.catalog.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chair", got.Name)

	require.Eventually(t, func() bool {
		_, ok := env.cache.cachedProduct(product.ID)
		return ok
	}, time.Second, 5*time.Millisecond)

	price := int64(4500)
	_, err = env.catalog.UpdateProduct(ctx, product.ID, domain.ProductPatch{Price: &price})
	require.NoError(t, err)

	_, ok := env.cache.cachedProduct(product.ID)
	assert.False(t, ok, "update must evict product")

	got, err = env.catalog.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4500), got.Price)

	_, err = env.catalog.GetProduct(ctx, uuid.New())
	assert.ErrorIs(t, err, e.ErrProductNotFound)
}

func TestDeleteProduct(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	caller := env.customer()

	imageURL := fakeImagesURL + "products/old.png"
	sold := env.store.addProduct("Sold", 100, 5, nil)
	free, err := env.catalog.CreateProduct(ctx, NewCreateProductReq("Free", nil, 100, &imageURL, nil, 5))
	require.NoError(t, err)

	env.mustAdd(t, caller, sold, 1)
	_, err = env.orders.Checkout(ctx, caller, NewCheckoutReq("Main st. 1"))
	require.NoError(t, err)

	err = env.catalog.DeleteProduct(ctx, sold.ID)
	assert.ErrorIs(t, err, e.ErrProductReferenced)

	// строки корзины с удаляемым товаром удаляются вместе с ним
	env.mustAdd(t, caller, *free, 1)
	require.NoError(t, env.catalog.DeleteProduct(ctx, free.ID))
	assert.Equal(t, []string{"products/old.png"}, env.images.cleaned)

	cart, err := env.cart.GetCart(ctx, caller)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	err = env.catalog.DeleteProduct(ctx, free.ID)
	assert.ErrorIs(t, err, e.ErrProductNotFound)
}

func TestUploadProductImage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)

	oldURL := fakeImagesURL + "products/previous.png"
	product, err := env.catalog.CreateProduct(ctx, NewCreateProductReq("Vase", nil, 1200, &oldURL, nil, 2))
	require.NoError(t, err)

	image := NewProductImage([]byte{0x89, 'P', 'N', 'G'}, "image/png", 4, "vase.png")

	updated, err := env.catalog.UploadProductImage(ctx, NewUploadProductImageReq(product.ID, *image))
	require.NoError(t, err)
	require.NotNil(t, updated.ImageURL)
	assert.Contains(t, *updated.ImageURL, fakeImagesURL+"products/"+product.ID.String()+"/")

	require.Len(t, env.images.uploads, 1)
	assert.Equal(t, "products/"+product.ID.String(), env.images.uploads[0].Prefix)
	assert.Equal(t, []string{"products/previous.png"}, env.images.cleaned)

	_, err = env.catalog.UploadProductImage(ctx, NewUploadProductImageReq(product.ID, ProductImage{}))
	assert.ErrorIs(t, err, e.ErrNoImages)

	_, err = env.catalog.UploadProductImage(ctx, NewUploadProductImageReq(uuid.New(), *image))
	assert.ErrorIs(t, err, e.ErrProductNotFound)
}
