package usecase

import (
	"encoding/json"
	"time"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
	// Failed событие, которое брокер отверг без шанса на повтор; в очередь не возвращается
	Failed     OutboxStatus = "failed"
)

type OutboxEventType string

const (
	OrderCreated       OutboxEventType = "order.created"
	OrderStatusChanged OutboxEventType = "order.status_changed"
)

// OutboxEvent событие, записываемое в одной транзакции с изменением заказа.
type OutboxEvent struct {
	ID          int64
	EventID     uuid.UUID
	EventType   OutboxEventType
	AggregateID uuid.UUID
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// OrderEventPayload тело сообщения о заказе в Kafka.
type OrderEventPayload struct {
	EventID    uuid.UUID               `json:"event_id"`
	EventType  OutboxEventType         `json:"event_type"`
	OrderID    uuid.UUID               `json:"order_id"`
	UserID     uuid.UUID               `json:"user_id"`
	Status     domain.OrderStatus      `json:"status"`
	Total      decimal.Decimal         `json:"total"`
	Items      []OrderEventItemPayload `json:"items"`
	OccurredAt time.Time               `json:"occurred_at"`
}

type OrderEventItemPayload struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// NewOrderEvent формирует outbox-событие по текущему состоянию заказа.
func NewOrderEvent(eventType OutboxEventType, order *domain.Order, now time.Time) (*OutboxEvent, error) {
	eventID := uuid.New()

	items := make([]OrderEventItemPayload, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderEventItemPayload{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     decimal.New(item.Price, -2),
		})
	}

	payload, err := json.Marshal(OrderEventPayload{
		EventID:    eventID,
		EventType:  eventType,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     order.Status,
		Total:      decimal.New(order.Total, -2),
		Items:      items,
		OccurredAt: now.UTC(),
	})
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		EventID:     eventID,
		EventType:   eventType,
		AggregateID: order.ID,
		Payload:     payload,
		Status:      Pending,
		CreatedAt:   now.UTC(),
	}, nil
}
