package converter

import (
	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/internal/usecase"
)

// UserConverter преобразует сущности User между domain и моделью PostgreSQL.
type UserConverter interface {
	ToModel(entity *domain.User) *UserModel
	ToEntity(model *UserModel) *domain.User
}

// CategoryConverter преобразует сущности Category между domain и моделью PostgreSQL.
type CategoryConverter interface {
	ToEntity(model *CategoryModel) *domain.Category
	ToArrEntity(models []*CategoryModel) []domain.Category
}

// ProductConverter преобразует сущности Product между domain и моделью PostgreSQL.
type ProductConverter interface {
	ToEntity(model *ProductModel) *domain.Product
	ToArrEntity(models []*ProductModel) []domain.Product
}

type CartItemConverter interface {
	ToArrEntity(models []*CartItemModel) []domain.CartItem
}

// OrderConverter собирает заказ из строки orders и его позиций.
type OrderConverter interface {
	ToEntity(model *OrderModel, items []*OrderItemModel) *domain.Order
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

type UserConv struct{}

func (UserConv) ToModel(entity *domain.User) *UserModel {
	return &UserModel{
		ID:           entity.ID,
		Email:        entity.Email,
		PasswordHash: entity.PasswordHash,
		Name:         entity.Name,
		Role:         string(entity.Role),
		CreatedAt:    entity.CreatedAt,
	}
}

func (UserConv) ToEntity(model *UserModel) *domain.User {
	return &domain.User{
		ID:           model.ID,
		Email:        model.Email,
		PasswordHash: model.PasswordHash,
		Name:         model.Name,
		Role:         domain.Role(model.Role),
		CreatedAt:    model.CreatedAt,
	}
}

type CategoryConv struct{}

func (CategoryConv) ToEntity(model *CategoryModel) *domain.Category {
	return &domain.Category{
		ID:           model.ID,
		Name:         model.Name,
		Description:  model.Description,
		ProductCount: model.ProductCount,
		CreatedAt:    model.CreatedAt,
	}
}

func (c CategoryConv) ToArrEntity(models []*CategoryModel) []domain.Category {
	res := make([]domain.Category, 0, len(models))
	for _, m := range models {
		res = append(res, *c.ToEntity(m))
	}
	return res
}

type ProductConv struct{}

func (ProductConv) ToEntity(model *ProductModel) *domain.Product {
	return &domain.Product{
		ID:           model.ID,
		Name:         model.Name,
		Description:  model.Description,
		Price:        model.Price,
		ImageURL:     model.ImageURL,
		CategoryID:   model.CategoryID,
		CategoryName: model.CategoryName,
		Stock:        model.Stock,
		CreatedAt:    model.CreatedAt,
	}
}

func (c ProductConv) ToArrEntity(models []*ProductModel) []domain.Product {
	res := make([]domain.Product, 0, len(models))
	for _, m := range models {
		res = append(res, *c.ToEntity(m))
	}
	return res
}

type CartItemConv struct{}

func (CartItemConv) ToArrEntity(models []*CartItemModel) []domain.CartItem {
	res := make([]domain.CartItem, 0, len(models))
	for _, m := range models {
		res = append(res, domain.CartItem{
			ID:        m.ID,
			UserID:    m.UserID,
			ProductID: m.ProductID,
			Quantity:  m.Quantity,
			CreatedAt: m.CreatedAt,
			Name:      m.Name,
			Price:     m.Price,
			ImageURL:  m.ImageURL,
			Stock:     m.Stock,
		})
	}
	return res
}

type OrderConv struct{}

func (OrderConv) ToEntity(model *OrderModel, items []*OrderItemModel) *domain.Order {
	order := &domain.Order{
		ID:              model.ID,
		UserID:          model.UserID,
		Status:          domain.OrderStatus(model.Status),
		Total:           model.Total,
		ShippingAddress: model.ShippingAddress,
		CreatedAt:       model.CreatedAt,
		Items:           make([]domain.OrderItem, 0, len(items)),
	}

	for _, item := range items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Name:      item.Name,
			ImageURL:  item.ImageURL,
		})
	}

	return order
}

type OutboxEventConv struct{}

func (OutboxEventConv) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		AggregateID: entity.AggregateID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConv) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		AggregateID: model.AggregateID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConv) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	res := make([]*usecase.OutboxEvent, 0, len(models))
	for _, m := range models {
		res = append(res, c.ToEntity(m))
	}
	return res
}
