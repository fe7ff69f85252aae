package usecase

import (
	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/google/uuid"
)

// Caller вызывающий пользователь, извлечённый из токена.
type Caller struct {
	ID   uuid.UUID
	Role domain.Role
}

func NewCaller(id uuid.UUID, role domain.Role) Caller {
	return Caller{ID: id, Role: role}
}

func (c Caller) IsAdmin() bool {
	return c.Role.IsAdmin()
}

// AUTH USECASE

type RegisterReq struct {
	Email    string
	Password string
	Name     string
}

type LoginReq struct {
	Email    string
	Password string
}

// AuthRes пользователь и выпущенный для него токен.
type AuthRes struct {
	User  *domain.User
	Token string
}

// CATALOG USECASE

type CreateCategoryReq struct {
	Name        string
	Description *string
}

type CreateProductReq struct {
	Name        string
	Description *string
	Price       int64
	ImageURL    *string
	CategoryID  *uuid.UUID
	Stock       int
}

// ListProductsRes страница каталога. Total считается без учёта пагинации.
type ListProductsRes struct {
	Products []domain.Product
	Total    int
	Limit    int
	Offset   int
}

// ProductImage представляет изображение, загруженное через multipart/form-data.
type ProductImage struct {
	Data     []byte // байты изображения
	MimeType string // определяется по содержимому
	Size     int64
	Name     string // оригинальное имя файла (для логов)
}

type UploadProductImageReq struct {
	ProductID uuid.UUID
	Image     ProductImage
}

// CART USECASE

type AddCartItemReq struct {
	ProductID uuid.UUID
	Quantity  int
}

type UpdateCartItemReq struct {
	ItemID   uuid.UUID
	Quantity int
}

// ORDER USECASE

type CheckoutReq struct {
	ShippingAddress string
}

type UpdateOrderStatusReq struct {
	OrderID uuid.UUID
	Status  domain.OrderStatus
}

// INFRASTRUCTURE

// UploadImageReq запрос на загрузку изображения в объектное хранилище.
type UploadImageReq struct {
	Prefix string
	Image  ProductImage
}

// UploadImageRes ключ объекта и публичный URL.
type UploadImageRes struct {
	Key string
	URL string
}

type WriteRawMessageReq struct {
	Key       string
	EventType OutboxEventType
	Payload   []byte
}

// MAPPERS

func NewRegisterReq(email, password, name string) *RegisterReq {
	return &RegisterReq{Email: email, Password: password, Name: name}
}

func NewLoginReq(email, password string) *LoginReq {
	return &LoginReq{Email: email, Password: password}
}

func NewAuthRes(user *domain.User, token string) *AuthRes {
	return &AuthRes{User: user, Token: token}
}

func NewCreateCategoryReq(name string, description *string) *CreateCategoryReq {
	return &CreateCategoryReq{Name: name, Description: description}
}

func NewCreateProductReq(name string, description *string, price int64, imageURL *string, categoryID *uuid.UUID, stock int) *CreateProductReq {
	return &CreateProductReq{
		Name:        name,
		Description: description,
		Price:       price,
		ImageURL:    imageURL,
		CategoryID:  categoryID,
		Stock:       stock,
	}
}

func NewListProductsRes(products []domain.Product, total, limit, offset int) *ListProductsRes {
	if products == nil {
		products = []domain.Product{}
	}

	return &ListProductsRes{
		Products: products,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}
}

func NewProductImage(data []byte, mimeType string, size int64, name string) *ProductImage {
	return &ProductImage{
		Data:     data,
		MimeType: mimeType,
		Size:     size,
		Name:     name,
	}
}

func NewUploadProductImageReq(productID uuid.UUID, image ProductImage) *UploadProductImageReq {
	return &UploadProductImageReq{ProductID: productID, Image: image}
}

func NewAddCartItemReq(productID uuid.UUID, quantity int) *AddCartItemReq {
	return &AddCartItemReq{ProductID: productID, Quantity: quantity}
}

func NewUpdateCartItemReq(itemID uuid.UUID, quantity int) *UpdateCartItemReq {
	return &UpdateCartItemReq{ItemID: itemID, Quantity: quantity}
}

func NewCheckoutReq(shippingAddress string) *CheckoutReq {
	return &CheckoutReq{ShippingAddress: shippingAddress}
}

func NewUpdateOrderStatusReq(orderID uuid.UUID, status domain.OrderStatus) *UpdateOrderStatusReq {
	return &UpdateOrderStatusReq{OrderID: orderID, Status: status}
}

func NewUploadImageReq(prefix string, image ProductImage) *UploadImageReq {
	return &UploadImageReq{Prefix: prefix, Image: image}
}

func NewUploadImageRes(key, url string) *UploadImageRes {
	return &UploadImageRes{Key: key, URL: url}
}

func NewWriteRawMessageReq(key string, eventType OutboxEventType, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{Key: key, EventType: eventType, Payload: payload}
}
