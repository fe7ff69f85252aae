package http

import (
	"time"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// REQUESTS

type RegisterRequest struct {
	Email    string `json:"email" validate:"omitempty,email,max=255"`
	Password string `json:"password" validate:"max=72"`
	Name     string `json:"name" validate:"max=255"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type ProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,max=255"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Price       *decimal.Decimal `json:"price"`
	ImageURL    *string          `json:"image_url" validate:"omitempty,url,max=2048"`
	CategoryID  *string          `json:"category_id" validate:"omitempty,uuid"`
	Stock       *int             `json:"stock" validate:"omitempty,lte=1000000"`
}

type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"omitempty,uuid"`
	Quantity  *int   `json:"quantity" validate:"omitempty,lte=1000000"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"omitempty,lte=1000000"`
}

type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address" validate:"max=1000"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// RESPONSES

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

type CategoryResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	ProductCount int       `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type ProductResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Description  *string    `json:"description"`
	Price        Price      `json:"price"`
	ImageURL     *string    `json:"image_url"`
	CategoryID   *uuid.UUID `json:"category_id"`
	CategoryName *string    `json:"category_name,omitempty"`
	Stock        int        `json:"stock"`
	CreatedAt    time.Time  `json:"created_at"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

type CartItemResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Name      string    `json:"name"`
	Price     Price     `json:"price"`
	ImageURL  *string   `json:"image_url"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total Price              `json:"total"`
}

type OrderItemResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Price     Price     `json:"price"`
	Name      string    `json:"name"`
	ImageURL  *string   `json:"image_url"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	UserID          uuid.UUID           `json:"user_id"`
	Status          string              `json:"status"`
	Total           Price               `json:"total"`
	ShippingAddress string              `json:"shipping_address"`
	CreatedAt       time.Time           `json:"created_at"`
	Items           []OrderItemResponse `json:"items"`
}

// MAPPERS

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

func toCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		ProductCount: c.ProductCount,
		CreatedAt:    c.CreatedAt,
	}
}

func toArrCategoryResponse(cats []domain.Category) []CategoryResponse {
	res := make([]CategoryResponse, len(cats))
	for i := range cats {
		res[i] = toCategoryResponse(&cats[i])
	}

	return res
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        Price(p.Price),
		ImageURL:     p.ImageURL,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		Stock:        p.Stock,
		CreatedAt:    p.CreatedAt,
	}
}

func toArrProductResponse(products []domain.Product) []ProductResponse {
	res := make([]ProductResponse, len(products))
	for i := range products {
		res[i] = toProductResponse(&products[i])
	}

	return res
}

func toCartResponse(c *domain.Cart) CartResponse {
	items := make([]CartItemResponse, len(c.Items))
	for i, it := range c.Items {
		items[i] = CartItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Name:      it.Name,
			Price:     Price(it.Price),
			ImageURL:  it.ImageURL,
			Stock:     it.Stock,
			CreatedAt: it.CreatedAt,
		}
	}

	return CartResponse{Items: items, Total: Price(c.Total)}
}

func toOrderResponse(o *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     Price(it.Price),
			Name:      it.Name,
			ImageURL:  it.ImageURL,
		}
	}

	return OrderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          string(o.Status),
		Total:           Price(o.Total),
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt,
		Items:           items,
	}
}

func toArrOrderResponse(orders []domain.Order) []OrderResponse {
	res := make([]OrderResponse, len(orders))
	for i := range orders {
		res[i] = toOrderResponse(&orders[i])
	}

	return res
}

func (r *CategoryRequest) toPatch() domain.CategoryPatch {
	return domain.CategoryPatch{Name: r.Name, Description: r.Description}
}

// toPatch переводит запрос в частичное обновление. Поля, которых нет в запросе, остаются nil.
func (r *ProductRequest) toPatch() (domain.ProductPatch, error) {
	patch := domain.ProductPatch{
		Name:        r.Name,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Stock:       r.Stock,
	}

	if r.Price != nil {
		cents, err := priceToCents(*r.Price)
		if err != nil {
			return domain.ProductPatch{}, err
		}
		patch.Price = &cents
	}

	categoryID, err := r.categoryID()
	if err != nil {
		return domain.ProductPatch{}, err
	}
	patch.CategoryID = categoryID

	return patch, nil
}

func (r *ProductRequest) categoryID() (*uuid.UUID, error) {
	if r.CategoryID == nil || *r.CategoryID == "" {
		return nil, nil
	}

	id, err := uuid.Parse(*r.CategoryID)
	if err != nil {
		return nil, e.NewValidationError("category_id must be a valid id")
	}

	return &id, nil
}
