package domain

import (
	"time"

	"github.com/google/uuid"
)

// CartItem строка корзины вместе с актуальными данными товара.
type CartItem struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	CreatedAt time.Time

	Name     string
	Price    int64
	ImageURL *string
	Stock    int
}

// Cart корзина пользователя
type Cart struct {
	Items []CartItem
	Total int64 // сумма по текущим ценам, в копейках
}

func NewCart(items []CartItem) *Cart {
	if items == nil {
		items = []CartItem{}
	}

	var total int64
	for _, item := range items {
		total += item.Price * int64(item.Quantity)
	}

	return &Cart{Items: items, Total: total}
}
