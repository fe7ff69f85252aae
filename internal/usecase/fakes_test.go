package usecase

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/google/uuid"
)

// memStore хранит состояние всех фейковых репозиториев.
type memStore struct {
	mu         sync.Mutex
	clock      time.Time
	users      map[uuid.UUID]domain.User
	categories map[uuid.UUID]domain.Category
	products   map[uuid.UUID]domain.Product
	cart       map[uuid.UUID]domain.CartItem
	orders     map[uuid.UUID]domain.Order
	outbox     []OutboxEvent
}

func newMemStore() *memStore {
	return &memStore{
		clock:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		users:      map[uuid.UUID]domain.User{},
		categories: map[uuid.UUID]domain.Category{},
		products:   map[uuid.UUID]domain.Product{},
		cart:       map[uuid.UUID]domain.CartItem{},
		orders:     map[uuid.UUID]domain.Order{},
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

type snapshot struct {
	users      map[uuid.UUID]domain.User
	categories map[uuid.UUID]domain.Category
	products   map[uuid.UUID]domain.Product
	cart       map[uuid.UUID]domain.CartItem
	orders     map[uuid.UUID]domain.Order
	outbox     []OutboxEvent
}

func (s *memStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return snapshot{
		users:      maps.Clone(s.users),
		categories: maps.Clone(s.categories),
		products:   maps.Clone(s.products),
		cart:       maps.Clone(s.cart),
		orders:     maps.Clone(s.orders),
		outbox:     slices.Clone(s.outbox),
	}
}

func (s *memStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = snap.users
	s.categories = snap.categories
	s.products = snap.products
	s.cart = snap.cart
	s.orders = snap.orders
	s.outbox = snap.outbox
}

func (s *memStore) addUser(role domain.Role) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := domain.User{ID: uuid.New(), Email: uuid.NewString() + "@shop.test", Name: "user", Role: role, CreatedAt: s.tick()}
	s.users[u.ID] = u
	return u
}

func (s *memStore) addCategory(name string) domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := domain.Category{ID: uuid.New(), Name: name, CreatedAt: s.tick()}
	s.categories[c.ID] = c
	return c
}

func (s *memStore) addProduct(name string, price int64, stock int, categoryID *uuid.UUID) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := domain.Product{ID: uuid.New(), Name: name, Price: price, Stock: stock, CategoryID: categoryID, CreatedAt: s.tick()}
	s.products[p.ID] = p
	return p
}

func (s *memStore) product(id uuid.UUID) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id]
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *memStore) outboxEvents() []OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.outbox)
}

// fakeTxManager выполняет транзакции строго последовательно и откатывает состояние при ошибке.
type fakeTxManager struct {
	store *memStore
	mu    sync.Mutex
}

func (f *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := f.store.snapshot()
	if err := fn(ctx); err != nil {
		f.store.restore(snap)
		return err
	}

	return nil
}

type fakeUserRepo struct{ s *memStore }

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return nil, e.ErrEmailTaken
		}
	}

	u := *user
	u.CreatedAt = r.s.tick()
	r.s.users[u.ID] = u
	return &u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, e.ErrUserNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, e.ErrUserNotFound
	}
	return &u, nil
}

type fakeCategoryRepo struct{ s *memStore }

func (r *fakeCategoryRepo) List(context.Context) ([]domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res := make([]domain.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		for _, p := range r.s.products {
			if p.CategoryID != nil && *p.CategoryID == c.ID {
				c.ProductCount++
			}
		}
		res = append(res, c)
	}
	slices.SortFunc(res, func(a, b domain.Category) int { return strings.Compare(a.Name, b.Name) })
	return res, nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, e.ErrCategoryNotFound
	}
	return &c, nil
}

func (r *fakeCategoryRepo) Create(_ context.Context, category *domain.Category) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := *category
	c.CreatedAt = r.s.tick()
	r.s.categories[c.ID] = c
	return &c, nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, id uuid.UUID, patch domain.CategoryPatch) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, e.ErrCategoryNotFound
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Description != nil {
		c.Description = patch.Description
	}
	r.s.categories[id] = c
	return &c, nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[id]; !ok {
		return e.ErrCategoryNotFound
	}
	for _, p := range r.s.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			return e.ErrCategoryHasProducts
		}
	}
	delete(r.s.categories, id)
	return nil
}

type fakeProductRepo struct{ s *memStore }

func (r *fakeProductRepo) withCategory(p domain.Product) domain.Product {
	if p.CategoryID != nil {
		if c, ok := r.s.categories[*p.CategoryID]; ok {
			name := c.Name
			p.CategoryName = &name
		}
	}
	return p
}

func (r *fakeProductRepo) List(_ context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	search := strings.ToLower(filter.Search)
	matched := make([]domain.Product, 0)
	for _, p := range r.s.products {
		if filter.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *filter.CategoryID) {
			continue
		}
		if search != "" {
			desc := ""
			if p.Description != nil {
				desc = *p.Description
			}
			if !strings.Contains(strings.ToLower(p.Name), search) && !strings.Contains(strings.ToLower(desc), search) {
				continue
			}
		}
		matched = append(matched, r.withCategory(p))
	}
	slices.SortFunc(matched, func(a, b domain.Product) int { return b.CreatedAt.Compare(a.CreatedAt) })

	total := len(matched)
	start := min(filter.Offset, total)
	end := min(start+filter.Limit, total)
	return matched[start:end], total, nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	p = r.withCategory(p)
	return &p, nil
}

func (r *fakeProductRepo) Create(_ context.Context, product *domain.Product) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p := *product
	p.CreatedAt = r.s.tick()
	r.s.products[p.ID] = p
	p = r.withCategory(p)
	return &p, nil
}

func (r *fakeProductRepo) Update(_ context.Context, id uuid.UUID, patch domain.ProductPatch) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.ImageURL != nil {
		p.ImageURL = patch.ImageURL
	}
	if patch.CategoryID != nil {
		p.CategoryID = patch.CategoryID
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	r.s.products[id] = p
	p = r.withCategory(p)
	return &p, nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return e.ErrProductNotFound
	}
	for _, o := range r.s.orders {
		for _, item := range o.Items {
			if item.ProductID == id {
				return e.ErrProductReferenced
			}
		}
	}
	for itemID, item := range r.s.cart {
		if item.ProductID == id {
			delete(r.s.cart, itemID)
		}
	}
	delete(r.s.products, id)
	return nil
}

func (r *fakeProductRepo) DecrementStock(_ context.Context, id uuid.UUID, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok || p.Stock < quantity {
		return e.ErrInsufficientStock
	}
	p.Stock -= quantity
	r.s.products[id] = p
	return nil
}

// fakeCartRepo корзина в памяти. afterLock, если задан, вызывается после LockForCheckout.
type fakeCartRepo struct {
	s         *memStore
	afterLock func()
}

func (r *fakeCartRepo) join(item domain.CartItem) domain.CartItem {
	p := r.s.products[item.ProductID]
	item.Name = p.Name
	item.Price = p.Price
	item.ImageURL = p.ImageURL
	item.Stock = p.Stock
	return item
}

func (r *fakeCartRepo) GetItems(_ context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res := make([]domain.CartItem, 0)
	for _, item := range r.s.cart {
		if item.UserID == userID {
			res = append(res, r.join(item))
		}
	}
	slices.SortFunc(res, func(a, b domain.CartItem) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return res, nil
}

func (r *fakeCartRepo) GetItem(_ context.Context, userID, itemID uuid.UUID) (*domain.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.cart[itemID]
	if !ok || item.UserID != userID {
		return nil, e.ErrCartItemNotFound
	}
	item = r.join(item)
	return &item, nil
}

func (r *fakeCartRepo) AddQuantity(_ context.Context, item *domain.CartItem) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, existing := range r.s.cart {
		if existing.UserID == item.UserID && existing.ProductID == item.ProductID {
			existing.Quantity += item.Quantity
			r.s.cart[id] = existing
			return existing.Quantity, nil
		}
	}

	it := *item
	it.CreatedAt = r.s.tick()
	r.s.cart[it.ID] = it
	return it.Quantity, nil
}

func (r *fakeCartRepo) SetQuantity(_ context.Context, userID, itemID uuid.UUID, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.cart[itemID]
	if !ok || item.UserID != userID {
		return e.ErrCartItemNotFound
	}
	item.Quantity = quantity
	r.s.cart[itemID] = item
	return nil
}

func (r *fakeCartRepo) Delete(_ context.Context, userID, itemID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.cart[itemID]
	if !ok || item.UserID != userID {
		return false, nil
	}
	delete(r.s.cart, itemID)
	return true, nil
}

func (r *fakeCartRepo) Clear(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, item := range r.s.cart {
		if item.UserID == userID {
			delete(r.s.cart, id)
		}
	}
	return nil
}

func (r *fakeCartRepo) DeleteLines(_ context.Context, userID uuid.UUID, itemIDs []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range itemIDs {
		if item, ok := r.s.cart[id]; ok && item.UserID == userID {
			delete(r.s.cart, id)
		}
	}
	return nil
}

func (r *fakeCartRepo) LockForCheckout(_ context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	r.s.mu.Lock()
	res := make([]domain.CartItem, 0)
	for _, item := range r.s.cart {
		if item.UserID == userID {
			res = append(res, r.join(item))
		}
	}
	r.s.mu.Unlock()

	slices.SortFunc(res, func(a, b domain.CartItem) int { return strings.Compare(a.ProductID.String(), b.ProductID.String()) })
	if r.afterLock != nil {
		r.afterLock()
	}
	return res, nil
}

type fakeOrderRepo struct{ s *memStore }

func (r *fakeOrderRepo) Create(_ context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	order.CreatedAt = r.s.tick()
	o := *order
	o.Items = slices.Clone(order.Items)
	r.s.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, e.ErrOrderNotFound
	}
	return &o, nil
}

func (r *fakeOrderRepo) List(_ context.Context, userID *uuid.UUID) ([]domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res := make([]domain.Order, 0)
	for _, o := range r.s.orders {
		if userID == nil || o.UserID == *userID {
			res = append(res, o)
		}
	}
	slices.SortFunc(res, func(a, b domain.Order) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return res, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return e.ErrOrderNotFound
	}
	o.Status = status
	r.s.orders[id] = o
	return nil
}

type fakeOutboxRepo struct{ s *memStore }

func (r *fakeOutboxRepo) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ev := *event
	ev.ID = int64(len(r.s.outbox) + 1)
	r.s.outbox = append(r.s.outbox, ev)
	return &ev, nil
}

func (r *fakeOutboxRepo) GetAndMarkAsProcessing(context.Context, int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) MarkAsProcessed(context.Context, int64) error { return nil }

func (r *fakeOutboxRepo) ReturnToPending(context.Context, int64) error { return nil }

func (r *fakeOutboxRepo) MarkAsFailed(context.Context, int64, string) error { return nil }

func (r *fakeOutboxRepo) ResetStale(context.Context, time.Duration) (int64, error) { return 0, nil }

// fakeCache кэш в памяти со счётчиком инвалидаций и поколениями, как в Redis.
// setGate, если задан, задерживает SetProduct до закрытия канала; setDone получает сигнал после записи.
type fakeCache struct {
	mu                sync.Mutex
	products          map[uuid.UUID]domain.Product
	productVersions   map[uuid.UUID]int64
	flushVersion      int64
	categories        []domain.Category
	categoriesVersion int64
	deletedProducts   []uuid.UUID
	categoryEvictions int
	flushes           int

	setGate chan struct{}
	setDone chan struct{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		products:        map[uuid.UUID]domain.Product{},
		productVersions: map[uuid.UUID]int64{},
	}
}

func (c *fakeCache) GetProduct(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (c *fakeCache) ProductVersion(_ context.Context, id uuid.UUID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.productVersions[id] + c.flushVersion, nil
}

func (c *fakeCache) SetProduct(_ context.Context, product *domain.Product, version int64) error {
	if c.setGate != nil {
		<-c.setGate
	}
	if c.setDone != nil {
		defer func() { c.setDone <- struct{}{} }()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.productVersions[product.ID]+c.flushVersion != version {
		return nil
	}
	c.products[product.ID] = *product
	return nil
}

func (c *fakeCache) DeleteProducts(_ context.Context, ids []uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range ids {
		delete(c.products, id)
		c.productVersions[id]++
	}
	c.deletedProducts = append(c.deletedProducts, ids...)
	return nil
}

func (c *fakeCache) FlushProducts(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.products)
	c.flushVersion++
	c.flushes++
	return nil
}

func (c *fakeCache) GetCategories(context.Context) ([]domain.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.categories), nil
}

func (c *fakeCache) CategoriesVersion(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.categoriesVersion, nil
}

func (c *fakeCache) SetCategories(_ context.Context, categories []domain.Category, version int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.categoriesVersion != version {
		return nil
	}
	c.categories = slices.Clone(categories)
	return nil
}

func (c *fakeCache) DeleteCategories(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.categories = nil
	c.categoriesVersion++
	c.categoryEvictions++
	return nil
}

func (c *fakeCache) cachedProduct(id uuid.UUID) (domain.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.products[id]
	return p, ok
}

type fakeImages struct {
	mu      sync.Mutex
	uploads []UploadImageReq
	cleaned []string
}

const fakeImagesURL = "http://images.test/"

func (f *fakeImages) UploadImage(_ context.Context, req *UploadImageReq) (*UploadImageRes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.uploads = append(f.uploads, *req)
	key := req.Prefix + "/" + uuid.NewString() + ".png"
	return NewUploadImageRes(key, fakeImagesURL+key), nil
}

func (f *fakeImages) CleanupImages(keys []string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cleaned = append(f.cleaned, keys...)
}

func (f *fakeImages) KeyFromURL(url string) (string, bool) {
	return strings.CutPrefix(url, fakeImagesURL)
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Compare(hash, password string) (bool, error) {
	return hash == "hashed:"+password, nil
}

type fakeTokens struct{}

func (fakeTokens) Generate(userID uuid.UUID, role string) (string, error) {
	return "token:" + userID.String() + ":" + role, nil
}
