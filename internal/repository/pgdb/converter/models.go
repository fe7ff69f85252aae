package converter

import (
	"time"

	"github.com/google/uuid"
)

// UserModel представляет запись таблицы users в PostgreSQL.
type UserModel struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Name         string    `db:"name"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

// CategoryModel представляет запись таблицы categories в PostgreSQL.
type CategoryModel struct {
	ID           uuid.UUID `db:"id"`
	Name         string    `db:"name"`
	Description  *string   `db:"description"`
	ProductCount int       `db:"product_count"`
	CreatedAt    time.Time `db:"created_at"`
}

// ProductModel представляет запись таблицы products вместе с названием категории.
type ProductModel struct {
	ID           uuid.UUID  `db:"id"`
	Name         string     `db:"name"`
	Description  *string    `db:"description"`
	Price        int64      `db:"price"`
	ImageURL     *string    `db:"image_url"`
	CategoryID   *uuid.UUID `db:"category_id"`
	CategoryName *string    `db:"category_name"`
	Stock        int        `db:"stock"`
	CreatedAt    time.Time  `db:"created_at"`
}

// CartItemModel строка cart_items, соединённая с products.
type CartItemModel struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	ProductID uuid.UUID `db:"product_id"`
	Quantity  int       `db:"quantity"`
	CreatedAt time.Time `db:"created_at"`
	Name      string    `db:"name"`
	Price     int64     `db:"price"`
	ImageURL  *string   `db:"image_url"`
	Stock     int       `db:"stock"`
}

type OrderModel struct {
	ID              uuid.UUID `db:"id"`
	UserID          uuid.UUID `db:"user_id"`
	Status          string    `db:"status"`
	Total           int64     `db:"total"`
	ShippingAddress string    `db:"shipping_address"`
	CreatedAt       time.Time `db:"created_at"`
}

// OrderItemModel позиция заказа. name и image_url берутся из products.
type OrderItemModel struct {
	ID        uuid.UUID `db:"id"`
	OrderID   uuid.UUID `db:"order_id"`
	ProductID uuid.UUID `db:"product_id"`
	Quantity  int       `db:"quantity"`
	Price     int64     `db:"price"`
	Name      string    `db:"name"`
	ImageURL  *string   `db:"image_url"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     uuid.UUID  `db:"event_id"`
	EventType   string     `db:"event_type"`
	AggregateID uuid.UUID  `db:"aggregate_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
