package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/auth"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const testMaxImageSize = 1 << 10

// stubShop отвечает за все usecase сразу. Состояние минимальное, только для проверки транспорта.
type stubShop struct {
	mu sync.Mutex

	users      map[uuid.UUID]*domain.User
	products   map[uuid.UUID]*domain.Product
	orders     map[uuid.UUID]*domain.Order
	cart       []domain.CartItem
	lastFilter domain.ProductFilter
	lastImage  *usecase.UploadProductImageReq
	lastPatch  domain.ProductPatch
	checkout   func(caller usecase.Caller, req *usecase.CheckoutReq) (*domain.Order, error)
}

func newStubShop() *stubShop {
	return &stubShop{
		users:    map[uuid.UUID]*domain.User{},
		products: map[uuid.UUID]*domain.Product{},
		orders:   map[uuid.UUID]*domain.Order{},
	}
}

// AUTH

func (s *stubShop) Register(_ context.Context, req *usecase.RegisterReq) (*usecase.AuthRes, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, e.NewValidationError("Email, password, and name are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == req.Email {
			return nil, e.ErrEmailTaken
		}
	}
	u := domain.NewUser(req.Email, "hash", req.Name)
	s.users[u.ID] = u
	return usecase.NewAuthRes(u, "token-"+u.ID.String()), nil
}

func (s *stubShop) Login(_ context.Context, _ *usecase.LoginReq) (*usecase.AuthRes, error) {
	return nil, e.ErrInvalidCredentials
}

func (s *stubShop) Me(_ context.Context, caller usecase.Caller) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[caller.ID]
	if !ok {
		return nil, e.ErrUserNotFound
	}
	return u, nil
}

// CATALOG

func (s *stubShop) ListCategories(context.Context) ([]domain.Category, error) {
	return []domain.Category{{ID: uuid.New(), Name: "Books", ProductCount: 2}}, nil
}

func (s *stubShop) GetCategory(context.Context, uuid.UUID) (*domain.Category, error) {
	return nil, e.ErrCategoryNotFound
}

func (s *stubShop) CreateCategory(_ context.Context, req *usecase.CreateCategoryReq) (*domain.Category, error) {
	return domain.NewCategory(req.Name, req.Description), nil
}

func (s *stubShop) UpdateCategory(context.Context, uuid.UUID, domain.CategoryPatch) (*domain.Category, error) {
	return nil, e.ErrCategoryNotFound
}

func (s *stubShop) DeleteCategory(context.Context, uuid.UUID) error {
	return e.ErrCategoryHasProducts
}

func (s *stubShop) ListProducts(_ context.Context, filter domain.ProductFilter) (*usecase.ListProductsRes, error) {
	s.mu.Lock()
	s.lastFilter = filter
	s.mu.Unlock()

	return usecase.NewListProductsRes(nil, 0, filter.Limit, filter.Offset), nil
}

func (s *stubShop) GetProduct(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	return p, nil
}

func (s *stubShop) CreateProduct(_ context.Context, req *usecase.CreateProductReq) (*domain.Product, error) {
	p := domain.NewProduct(req.Name, req.Description, req.Price, req.ImageURL, req.CategoryID, req.Stock)

	s.mu.Lock()
	s.products[p.ID] = p
	s.mu.Unlock()

	return p, nil
}

func (s *stubShop) UpdateProduct(_ context.Context, id uuid.UUID, patch domain.ProductPatch) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastPatch = patch
	p, ok := s.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	return p, nil
}

func (s *stubShop) DeleteProduct(context.Context, uuid.UUID) error {
	return nil
}

func (s *stubShop) UploadProductImage(_ context.Context, req *usecase.UploadProductImageReq) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastImage = req
	p, ok := s.products[req.ProductID]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	url := "http://images.test/" + req.Image.Name
	p.ImageURL = &url
	return p, nil
}

// CART

func (s *stubShop) GetCart(context.Context, usecase.Caller) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.NewCart(append([]domain.CartItem(nil), s.cart...)), nil
}

func (s *stubShop) AddItem(_ context.Context, caller usecase.Caller, req *usecase.AddCartItemReq) (*domain.Cart, error) {
	if req.ProductID == uuid.Nil {
		return nil, e.NewValidationError("Product ID is required")
	}
	if req.Quantity < 1 {
		return nil, e.ErrInvalidQuantity
	}

	s.mu.Lock()
	p, ok := s.products[req.ProductID]
	if !ok {
		s.mu.Unlock()
		return nil, e.ErrProductNotFound
	}
	s.cart = append(s.cart, domain.CartItem{
		ID:        uuid.New(),
		UserID:    caller.ID,
		ProductID: p.ID,
		Quantity:  req.Quantity,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
	})
	s.mu.Unlock()

	return s.GetCart(context.Background(), caller)
}

func (s *stubShop) UpdateItem(context.Context, usecase.Caller, *usecase.UpdateCartItemReq) (*domain.Cart, error) {
	return nil, e.ErrCartItemNotFound
}

func (s *stubShop) RemoveItem(ctx context.Context, caller usecase.Caller, _ uuid.UUID) (*domain.Cart, error) {
	return s.GetCart(ctx, caller)
}

func (s *stubShop) Clear(context.Context, usecase.Caller) (*domain.Cart, error) {
	s.mu.Lock()
	s.cart = nil
	s.mu.Unlock()

	return domain.NewCart(nil), nil
}

// ORDERS

func (s *stubShop) Checkout(_ context.Context, caller usecase.Caller, req *usecase.CheckoutReq) (*domain.Order, error) {
	if s.checkout != nil {
		return s.checkout(caller, req)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.cart) == 0 {
		return nil, e.ErrCartEmpty
	}
	order := domain.NewOrderFromCart(caller.ID, req.ShippingAddress, s.cart)
	order.CreatedAt = time.Now()
	s.orders[order.ID] = order
	s.cart = nil
	return order, nil
}

func (s *stubShop) ListOrders(_ context.Context, caller usecase.Caller) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := []domain.Order{}
	for _, o := range s.orders {
		if caller.IsAdmin() || o.UserID == caller.ID {
			res = append(res, *o)
		}
	}
	return res, nil
}

func (s *stubShop) GetOrder(_ context.Context, caller usecase.Caller, id uuid.UUID) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, e.ErrOrderNotFound
	}
	if !caller.IsAdmin() && o.UserID != caller.ID {
		return nil, e.ErrAccessDenied
	}
	return o, nil
}

func (s *stubShop) UpdateStatus(_ context.Context, req *usecase.UpdateOrderStatusReq) (*domain.Order, error) {
	if !req.Status.IsValid() {
		return nil, e.ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[req.OrderID]
	if !ok {
		return nil, e.ErrOrderNotFound
	}
	o.Status = req.Status
	return o, nil
}

// HARNESS

type testAPI struct {
	handler  http.Handler
	shop     *stubShop
	tokens   *auth.TokenManager
	registry *prometheus.Registry
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	shop := newStubShop()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	registry := prometheus.NewRegistry()

	mux := chi.NewRouter()
	router := NewRouter(mux, logger.NewNopLogger(), tokens, NewMetrics(registry), registry, nil)
	router.Init(UseCases{Auth: shop, Catalog: shop, Cart: shop, Order: shop}, testMaxImageSize)

	return &testAPI{handler: mux, shop: shop, tokens: tokens, registry: registry}
}

func (a *testAPI) token(t *testing.T, role domain.Role) (string, uuid.UUID) {
	t.Helper()

	id := uuid.New()
	token, err := a.tokens.Generate(id, string(role))
	require.NoError(t, err)
	return token, id
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
