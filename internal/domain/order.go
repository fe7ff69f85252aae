package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus статус заказа. Граф переходов не ограничен.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) IsValid() bool {
	for _, st := range OrderStatuses {
		if s == st {
			return true
		}
	}

	return false
}

// Order заказ. Total фиксируется при создании и не пересчитывается.
type Order struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Status          OrderStatus
	Total           int64
	ShippingAddress string
	CreatedAt       time.Time
	Items           []OrderItem
}

// OrderItem позиция заказа с ценой на момент покупки.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Price     int64

	Name     string
	ImageURL *string
}

// NewOrderFromCart собирает заказ из строк корзины, фиксируя текущие цены.
func NewOrderFromCart(userID uuid.UUID, shippingAddress string, lines []CartItem) *Order {
	order := &Order{
		ID:              uuid.New(),
		UserID:          userID,
		Status:          OrderStatusPending,
		ShippingAddress: shippingAddress,
		Items:           make([]OrderItem, 0, len(lines)),
	}

	for _, line := range lines {
		order.Items = append(order.Items, OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
			Name:      line.Name,
			ImageURL:  line.ImageURL,
		})
		order.Total += line.Price * int64(line.Quantity)
	}

	return order
}
