package domain

import "time"

// Product models a catalog item sold on the storefront.
type Product struct {
	ID          string
	CategoryID  string
	Name        string
	Slug        string
	Description string
	PriceCents  int64
	Stock       int
	ImageURL    string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
