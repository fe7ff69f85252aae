package usecase

import (
	"context"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/google/uuid"
)

type AuthUC interface {
	Register(ctx context.Context, req *RegisterReq) (*AuthRes, error)
	Login(ctx context.Context, req *LoginReq) (*AuthRes, error)
	Me(ctx context.Context, caller Caller) (*domain.User, error)
}

type CatalogUC interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	CreateCategory(ctx context.Context, req *CreateCategoryReq) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, patch domain.CategoryPatch) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListProducts(ctx context.Context, filter domain.ProductFilter) (*ListProductsRes, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	UploadProductImage(ctx context.Context, req *UploadProductImageReq) (*domain.Product, error)
}

type CartUC interface {
	GetCart(ctx context.Context, caller Caller) (*domain.Cart, error)
	AddItem(ctx context.Context, caller Caller, req *AddCartItemReq) (*domain.Cart, error)
	UpdateItem(ctx context.Context, caller Caller, req *UpdateCartItemReq) (*domain.Cart, error)
	RemoveItem(ctx context.Context, caller Caller, itemID uuid.UUID) (*domain.Cart, error)
	Clear(ctx context.Context, caller Caller) (*domain.Cart, error)
}

type OrderUC interface {
	Checkout(ctx context.Context, caller Caller, req *CheckoutReq) (*domain.Order, error)
	ListOrders(ctx context.Context, caller Caller) ([]domain.Order, error)
	GetOrder(ctx context.Context, caller Caller, id uuid.UUID) (*domain.Order, error)
	UpdateStatus(ctx context.Context, req *UpdateOrderStatusReq) (*domain.Order, error)
}
