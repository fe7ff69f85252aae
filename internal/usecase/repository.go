package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.CategoryPatch) (*domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProductRepository interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DecrementStock уменьшает остаток только если его хватает, иначе e.ErrInsufficientStock.
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error
}

type CartRepository interface {
	GetItems(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error)
	GetItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.CartItem, error)
	// AddQuantity создаёт строку или увеличивает количество, возвращает итоговое количество.
	AddQuantity(ctx context.Context, item *domain.CartItem) (int, error)
	SetQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	Delete(ctx context.Context, userID, itemID uuid.UUID) (bool, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	DeleteLines(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) error
	// LockForCheckout возвращает строки корзины, блокируя их и строки товаров до конца транзакции.
	LockForCheckout(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// List возвращает заказы пользователя, а при userID == nil все заказы.
	List(ctx context.Context, userID *uuid.UUID) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	ReturnToPending(ctx context.Context, id int64) error
	// MarkAsFailed выводит событие из очереди с причиной ошибки.
	MarkAsFailed(ctx context.Context, id int64, reason string) error
	// ResetStale возвращает в очередь события, зависшие в обработке, и сообщает их число.
	ResetStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// CacheRepository кэш каталога. Промах возвращается как (nil, nil).
// Запись принимает поколение, прочитанное до похода в БД: если между чтением и записью
// данные инвалидировали, запись пропускается.
type CacheRepository interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ProductVersion(ctx context.Context, id uuid.UUID) (int64, error)
	SetProduct(ctx context.Context, product *domain.Product, version int64) error
	DeleteProducts(ctx context.Context, ids []uuid.UUID) error
	FlushProducts(ctx context.Context) error
	GetCategories(ctx context.Context) ([]domain.Category, error)
	CategoriesVersion(ctx context.Context) (int64, error)
	SetCategories(ctx context.Context, categories []domain.Category, version int64) error
	DeleteCategories(ctx context.Context) error
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Delete(ctx context.Context, key string) error
}
