package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxStock верхняя граница остатка и количества в корзине, укладывается в INTEGER PostgreSQL.
const MaxStock = 1_000_000

// Product описывает товар каталога
type Product struct {
	ID           uuid.UUID
	Name         string
	Description  *string
	Price        int64 // Цена хранится в копейках
	ImageURL     *string
	CategoryID   *uuid.UUID
	CategoryName *string
	Stock        int
	CreatedAt    time.Time
}

func NewProduct(name string, description *string, price int64, imageURL *string, categoryID *uuid.UUID, stock int) *Product {
	return &Product{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Price:       price,
		ImageURL:    imageURL,
		CategoryID:  categoryID,
		Stock:       stock,
	}
}

// ProductPatch частичное обновление товара, nil-поля не меняются.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *int64
	ImageURL    *string
	CategoryID  *uuid.UUID
	Stock       *int
}

// ProductFilter параметры выборки каталога
type ProductFilter struct {
	CategoryID *uuid.UUID
	Search     string
	Limit      int
	Offset     int
}
