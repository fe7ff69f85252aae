package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category описывает категорию товаров
type Category struct {
	ID           uuid.UUID
	Name         string
	Description  *string
	ProductCount int // вычисляется при чтении списка
	CreatedAt    time.Time
}

func NewCategory(name string, description *string) *Category {
	return &Category{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
	}
}

// CategoryPatch частичное обновление категории, nil-поля не меняются.
type CategoryPatch struct {
	Name        *string
	Description *string
}
