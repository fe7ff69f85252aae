package e

import (
	"errors"
	"fmt"
)

// Классы ошибок, определяющие ответ клиенту.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
)

var (
	// Внутренние ошибки
	ErrInternalServerError  = errors.New("Internal server error")
	ErrIncorrectEnvVariable = errors.New("incorrect environment variable")

	// 400 Bad Request
	ErrInvalidJSON          = New(ErrBadRequest, "Invalid JSON body")
	ErrExpectedMultipart    = New(ErrBadRequest, "Expected multipart/form-data")
	ErrInvalidPrice         = New(ErrBadRequest, "Price must be a non-negative number")
	ErrPricePrecision       = New(ErrBadRequest, "Price must have at most 2 decimal places")
	ErrInvalidStock         = New(ErrBadRequest, "Stock must be a non-negative integer")
	ErrInvalidQuantity      = New(ErrBadRequest, "Valid quantity is required")
	ErrInvalidPagination    = New(ErrBadRequest, "Limit and offset must be integers")
	ErrInvalidStatus        = New(ErrBadRequest, "Status must be one of: pending, processing, shipped, delivered, cancelled")
	ErrNoImages             = New(ErrBadRequest, "Image is required")
	ErrFileTooLarge         = New(ErrBadRequest, "File too large")
	ErrUnsupportedMediaType = New(ErrBadRequest, "Unsupported image type")
	ErrEmailTaken           = New(ErrBadRequest, "Email already registered")
	ErrCartEmpty            = New(ErrBadRequest, "Cart is empty")
	ErrInsufficientStock    = New(ErrBadRequest, "Not enough stock available")
	ErrCategoryNotExists    = New(ErrBadRequest, "Category does not exist")
	ErrCategoryHasProducts  = New(ErrBadRequest, "Category has products")
	ErrProductReferenced    = New(ErrBadRequest, "Product is referenced by orders")

	// 401 Unauthorized
	ErrUnauthorized       = New(ErrUnauthenticated, "Access token required")
	ErrInvalidToken       = New(ErrUnauthenticated, "Invalid or expired token")
	ErrInvalidCredentials = New(ErrUnauthenticated, "Invalid credentials")

	// 403 Forbidden
	ErrForbidden    = New(ErrPermissionDenied, "Admin access required")
	ErrAccessDenied = New(ErrPermissionDenied, "Access denied")

	// 404 Not Found
	ErrUserNotFound     = New(ErrNotFound, "User not found")
	ErrCategoryNotFound = New(ErrNotFound, "Category not found")
	ErrProductNotFound  = New(ErrNotFound, "Product not found")
	ErrCartItemNotFound = New(ErrNotFound, "Cart item not found")
	ErrOrderNotFound    = New(ErrNotFound, "Order not found")
	ErrRouteNotFound    = New(ErrNotFound, "Not found")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// ClientError ошибка, сообщение которой можно показать клиенту.
// Kind задаёт класс ошибки, Cause (если есть) доступна через errors.Is/As.
type ClientError struct {
	Msg   string
	Kind  error
	Cause error
}

func New(kind error, msg string) *ClientError {
	return &ClientError{Msg: msg, Kind: kind}
}

func (c *ClientError) Error() string {
	return c.Msg
}

func (c *ClientError) Is(target error) bool {
	return target == c.Kind
}

func (c *ClientError) Unwrap() error {
	return c.Cause
}

// NewValidationError ошибка валидации входных данных.
func NewValidationError(format string, args ...any) *ClientError {
	return New(ErrBadRequest, fmt.Sprintf(format, args...))
}

// NewStockError сообщает о нехватке остатка конкретного товара. errors.Is(err, ErrInsufficientStock) == true.
func NewStockError(productName string, available int) *ClientError {
	return &ClientError{
		Msg:   fmt.Sprintf("Not enough stock for %s. Available: %d", productName, available),
		Kind:  ErrBadRequest,
		Cause: ErrInsufficientStock,
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
