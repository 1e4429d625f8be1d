package dto

import "time"

// ProductRequest carries the writable product fields.
type ProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	BrandID     int64  `json:"brand_id"`
	CategoryID  int64  `json:"category_id"`
	Price       string `json:"price"`
	Stock       int    `json:"stock"`
}

// ModerateRequest sets the moderation status on a listing.
type ModerateRequest struct {
	Status string `json:"status"`
}

// VariantRequest adds a variant under a product.
type VariantRequest struct {
	SKU   string `json:"sku"`
	Label string `json:"label"`
	Price string `json:"price"`
	Stock int    `json:"stock"`
}

// NameRequest creates a brand or category.
type NameRequest struct {
	Name string `json:"name"`
}

// ProductResponse represents a product as exposed via transport layers.
type ProductResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description,omitempty"`
	BrandID     int64             `json:"brand_id,omitempty"`
	CategoryID  int64             `json:"category_id,omitempty"`
	Status      string            `json:"status"`
	Price       string            `json:"price"`
	Stock       int               `json:"stock"`
	ImageURL    string            `json:"image_url,omitempty"`
	Variants    []VariantResponse `json:"variants,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// VariantResponse represents a product variant.
type VariantResponse struct {
	ID    int64  `json:"id"`
	SKU   string `json:"sku"`
	Label string `json:"label"`
	Price string `json:"price"`
	Stock int    `json:"stock"`
}

// BrandResponse represents a brand.
type BrandResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Status string `json:"status"`
}

// CategoryResponse represents a category.
type CategoryResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Status string `json:"status"`
}
