package dto

import "time"

// ProductRequest payload for product create/update. Omitted numeric fields
// are left unchanged on update rather than zeroed.
type ProductRequest struct {
	CategoryID  string `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  *int64 `json:"price_cents,omitempty"`
	Stock       *int   `json:"stock,omitempty"`
	ImageURL    string `json:"image_url"`
	Active      *bool  `json:"active,omitempty"`
}

// ProductResponse is the public view of a product.
type ProductResponse struct {
	ID          string    `json:"id"`
	CategoryID  string    `json:"category_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Stock       int       `json:"stock"`
	ImageURL    string    `json:"image_url"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// CategoryRequest payload for category create/update.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CategoryResponse is the public view of a category.
type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}
