package converter

import "time"

type ProductRedisModel struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	Price        int64     `json:"price"`
	ImageURL     *string   `json:"image_url,omitempty"`
	CategoryID   *string   `json:"category_id,omitempty"`
	CategoryName *string   `json:"category_name,omitempty"`
	Stock        int       `json:"stock"`
	CreatedAt    time.Time `json:"created_at"`
}

type CategoryRedisModel struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	ProductCount int       `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
}
